package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/middleware"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/services"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/utils"

	"go.uber.org/zap"
)

// AuthHandler - обработчики входа, выхода и текущего пользователя.
type AuthHandler struct {
	Service  *services.AuthService
	Logger   *zap.Logger
	Timeout  time.Duration
	TokenTTL time.Duration
}

// NewAuthHandler создаёт новый экземпляр AuthHandler.
func NewAuthHandler(service *services.AuthService, logger *zap.Logger, timeout, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		Service:  service,
		Logger:   logger,
		Timeout:  timeout,
		TokenTTL: tokenTTL,
	}
}

// Login обрабатывает запросы на вход.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, h.Logger, models.NewValidationError("invalid request body"))
		return
	}

	session, token, err := h.Service.Login(ctx, req.Username, req.Password)
	if err != nil {
		utils.HandleError(w, h.Logger, err, "failed to log in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.TokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.Logger.Info("user logged in", zap.String("user", session.Username), zap.String("role", string(session.Role)))
	utils.SendJSON(w, h.Logger, http.StatusOK, models.LoginResponse{
		Success: true,
		User:    *session,
		Token:   token,
		Message: "login successful",
	})
}

// Logout сбрасывает cookie с токеном. Токен без состояния истекает сам.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	utils.SendJSON(w, h.Logger, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "logged out",
	})
}

// CurrentUser возвращает пользователя текущей сессии.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	user, err := h.Service.CurrentUser(ctx, middleware.SessionFromContext(ctx))
	if err != nil {
		utils.HandleError(w, h.Logger, err, "failed to fetch user")
		return
	}
	utils.SendJSON(w, h.Logger, http.StatusOK, user)
}

// ListUsers возвращает список пользователей.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	users, err := h.Service.ListUsers(ctx)
	if err != nil {
		utils.HandleError(w, h.Logger, err, "failed to fetch users")
		return
	}
	utils.SendJSON(w, h.Logger, http.StatusOK, users)
}
