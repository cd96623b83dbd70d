package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"

	"go.uber.org/zap"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// SendJSON отправляет ответ в формате JSON
func SendJSON(w http.ResponseWriter, logger *zap.Logger, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, logger *zap.Logger, errResp *models.ErrorResponse) {
	SendJSON(w, logger, errResp.StatusCode, errorBody{
		Success: false,
		Error:   errResp.Message,
		Code:    errResp.Code,
	})
}

// HandleError переводит ошибку сервиса в HTTP-ответ. Подробности ошибок
// хранилища пишутся в лог, клиент получает только общее сообщение.
func HandleError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, models.ErrRequestTimeout) {
		err = fmt.Errorf("%w: %v", models.ErrRequestTimeout, err)
	}

	var errResp *models.ErrorResponse
	if errors.As(err, &errResp) {
		if errResp.StatusCode >= http.StatusInternalServerError {
			logger.Error(fallback, zap.Error(err))
		} else {
			logger.Debug("request rejected", zap.String("code", errResp.Code), zap.String("reason", errResp.Message))
		}
		SendErrorResponse(w, logger, errResp)
		return
	}

	logger.Error(fallback, zap.Error(err))
	SendErrorResponse(w, logger, models.ErrStore.WithMessage(fallback))
}

// ParseTenderFilter разбирает параметры списка тендеров. Числа вне границ
// приводятся к ним, нечисловые значения дают ошибку валидации.
func ParseTenderFilter(query url.Values) (models.TenderFilter, error) {
	filter := models.TenderFilter{
		Search: query.Get("search"),
		Source: query.Get("source"),
		Status: models.TenderStatus(query.Get("status")),
		Page:   models.DefaultPage,
		Limit:  models.DefaultLimit,
	}

	var err error
	if pageStr := query.Get("page"); pageStr != "" {
		filter.Page, err = strconv.Atoi(pageStr)
		if err != nil {
			return filter, models.NewValidationError("invalid page parameter, must be an integer")
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		filter.Limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return filter, models.NewValidationError("invalid limit parameter, must be an integer")
		}
	}

	return filter.Normalize(), nil
}
