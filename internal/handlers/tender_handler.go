package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/services"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/utils"

	"go.uber.org/zap"
)

// TenderHandler - структура для обработки HTTP-запросов.
type TenderHandler struct {
	Service *services.TenderService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewTenderHandler создаёт новый экземпляр TenderHandler.
func NewTenderHandler(service *services.TenderService, logger *zap.Logger, timeout time.Duration) *TenderHandler {
	return &TenderHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetTenders обрабатывает запросы для получения списка тендеров.
func (h *TenderHandler) GetTenders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	filter, err := utils.ParseTenderFilter(r.URL.Query())
	if err != nil {
		utils.HandleError(w, h.Logger, err, "failed to fetch tenders")
		return
	}

	page, err := h.Service.ListTenders(ctx, filter)
	if err != nil {
		utils.HandleError(w, h.Logger, err, "failed to fetch tenders")
		return
	}
	utils.SendJSON(w, h.Logger, http.StatusOK, page)
}

// GetTender обрабатывает запросы для получения тендера по ID.
func (h *TenderHandler) GetTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tender, err := h.Service.GetTender(ctx, r.PathValue("tenderId"))
	if err != nil {
		utils.HandleError(w, h.Logger, err, "failed to fetch tender")
		return
	}
	utils.SendJSON(w, h.Logger, http.StatusOK, tender)
}

// CreateTender обрабатывает запросы для создания тендера.
func (h *TenderHandler) CreateTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var tenderReq models.TenderRequest
	if err := json.NewDecoder(r.Body).Decode(&tenderReq); err != nil {
		utils.SendErrorResponse(w, h.Logger, models.NewValidationError("invalid request body"))
		return
	}

	tender, err := h.Service.CreateTender(ctx, tenderReq)
	if err != nil {
		utils.HandleError(w, h.Logger, err, "failed to create tender")
		return
	}

	h.Logger.Info("tender created", zap.String("id", tender.ID), zap.String("title", tender.Title))
	utils.SendJSON(w, h.Logger, http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      tender.ID,
	})
}

// UpdateTender обрабатывает запросы PUT и PATCH для изменения тендера.
func (h *TenderHandler) UpdateTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var patch models.TenderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.SendErrorResponse(w, h.Logger, models.NewValidationError("invalid request body"))
		return
	}

	if _, err := h.Service.UpdateTender(ctx, r.PathValue("tenderId"), patch); err != nil {
		utils.HandleError(w, h.Logger, err, "failed to update tender")
		return
	}
	utils.SendJSON(w, h.Logger, http.StatusOK, map[string]bool{"success": true})
}

// DeleteTender обрабатывает запросы для удаления тендера.
func (h *TenderHandler) DeleteTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderID := r.PathValue("tenderId")
	if err := h.Service.DeleteTender(ctx, tenderID); err != nil {
		utils.HandleError(w, h.Logger, err, "failed to delete tender")
		return
	}

	h.Logger.Info("tender deleted", zap.String("id", tenderID))
	utils.SendJSON(w, h.Logger, http.StatusOK, map[string]bool{"success": true})
}

// AssignTender обрабатывает запросы для назначения тендера пользователю.
func (h *TenderHandler) AssignTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, h.Logger, models.NewValidationError("invalid request body"))
		return
	}

	if err := h.Service.AssignTender(ctx, r.PathValue("tenderId"), req.UserID); err != nil {
		utils.HandleError(w, h.Logger, err, "failed to assign tender")
		return
	}
	utils.SendJSON(w, h.Logger, http.StatusOK, map[string]bool{"success": true})
}
