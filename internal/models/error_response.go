package models

import "net/http"

// ErrorResponse описывает ошибку с кодом и сообщением.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"error"`
}

// Базовые ошибки, с которыми сравниваются ошибки сервисов через errors.Is.
var (
	ErrValidation             = &ErrorResponse{StatusCode: http.StatusBadRequest, Code: "validation_error", Message: "invalid request"}
	ErrInvalidCredentials     = &ErrorResponse{StatusCode: http.StatusUnauthorized, Code: "invalid_credentials", Message: "invalid username or password"}
	ErrUnauthenticated        = &ErrorResponse{StatusCode: http.StatusUnauthorized, Code: "unauthenticated", Message: "authentication required"}
	ErrInsufficientRole       = &ErrorResponse{StatusCode: http.StatusForbidden, Code: "insufficient_role", Message: "insufficient role"}
	ErrInsufficientPermission = &ErrorResponse{StatusCode: http.StatusForbidden, Code: "insufficient_permission", Message: "insufficient permission"}
	ErrNotFound               = &ErrorResponse{StatusCode: http.StatusNotFound, Code: "not_found", Message: "not found"}
	ErrRequestTimeout         = &ErrorResponse{StatusCode: http.StatusGatewayTimeout, Code: "request_timeout", Message: "request timed out"}
	ErrStore                  = &ErrorResponse{StatusCode: http.StatusInternalServerError, Code: "store_error", Message: "internal server error"}
)

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Code:       codeForStatus(statusCode),
		Message:    message}
}

// NewValidationError создает ошибку валидации с сообщением.
func NewValidationError(message string) *ErrorResponse {
	return ErrValidation.WithMessage(message)
}

// NewNotFoundError создает ошибку "не найдено" с сообщением.
func NewNotFoundError(message string) *ErrorResponse {
	return ErrNotFound.WithMessage(message)
}

// WithMessage возвращает копию ошибки с другим сообщением.
func (e *ErrorResponse) WithMessage(message string) *ErrorResponse {
	return &ErrorResponse{StatusCode: e.StatusCode, Code: e.Code, Message: message}
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}

// Is сравнивает ошибки по коду, сообщение не учитывается.
func (e *ErrorResponse) Is(target error) bool {
	t, ok := target.(*ErrorResponse)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func codeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return ErrValidation.Code
	case http.StatusUnauthorized:
		return ErrUnauthenticated.Code
	case http.StatusForbidden:
		return ErrInsufficientPermission.Code
	case http.StatusNotFound:
		return ErrNotFound.Code
	case http.StatusGatewayTimeout:
		return ErrRequestTimeout.Code
	default:
		return ErrStore.Code
	}
}
