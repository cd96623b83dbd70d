package handlers

import (
	"net/http"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/utils"

	"go.uber.org/zap"
)

// HealthHandler обрабатывает GET запрос к /api/health
func HealthHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.SendJSON(w, logger, http.StatusOK, map[string]string{"status": "OK"})
	}
}
