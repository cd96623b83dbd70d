package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/auth"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/utils"

	"go.uber.org/zap"
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

// TokenCookieName - имя cookie с токеном сессии.
const TokenCookieName = "token"

// TokenParser проверяет токен и возвращает сессию.
type TokenParser interface {
	Parse(token string) (*models.Session, error)
}

// SessionFromContext возвращает сессию запроса или nil.
func SessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionCtxKey).(*models.Session)
	return session
}

// WithSession кладёт сессию в контекст.
func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(TokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Authenticate извлекает токен из заголовка Authorization или cookie и,
// если он валиден, кладёт сессию в контекст. Запрос без валидного токена
// проходит дальше анонимно.
func Authenticate(tokens TokenParser, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := tokens.Parse(token)
			if err != nil {
				logger.Debug("ignoring invalid token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// Require пропускает запрос только при наличии сессии с нужной ролью и
// правом. Пустые role и permission не проверяются.
func Require(logger *zap.Logger, role models.Role, permission auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if err := auth.Authorize(session, role, permission); err != nil {
				var errResp *models.ErrorResponse
				if !errors.As(err, &errResp) {
					errResp = models.ErrUnauthenticated
				}
				username := ""
				if session != nil {
					username = session.Username
				}
				logger.Info("access denied",
					zap.String("path", r.URL.Path),
					zap.String("user", username),
					zap.String("reason", errResp.Code))
				utils.SendErrorResponse(w, logger, errResp)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
