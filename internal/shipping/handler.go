package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/shipflow-otel-demo/internal/domain"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type createShippingRequest struct {
	ShippingType string    `json:"shipping_type"`
	ProductIDs   []string  `json:"product_ids"`
	OrderID      string    `json:"order_id"`
	DueDate      time.Time `json:"due_date"`
}

type createShippingResponse struct {
	ShippingID string `json:"shipping_id"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.service.CreateShipping(r.Context(), req.ShippingType, req.ProductIDs, req.OrderID, req.DueDate)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			h.writeError(w, http.StatusUnprocessableEntity, validationErr.Reason)
			return
		}
		h.logger.Error("failed to create shipping", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, createShippingResponse{ShippingID: id})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing shipping id")
		return
	}

	shipping, err := h.service.store.GetShipping(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrShippingNotFound) {
			h.writeError(w, http.StatusNotFound, "shipping not found")
			return
		}
		h.logger.Error("failed to get shipping", "error", err, "shipping_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, shipping)
}

type statusResponse struct {
	ShippingID string                `json:"shipping_id"`
	Status     domain.ShippingStatus `json:"shipping_status"`
}

func (h *Handler) HandleCheckStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing shipping id")
		return
	}

	status, err := h.service.CheckStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrShippingNotFound) {
			h.writeError(w, http.StatusNotFound, "shipping not found")
			return
		}
		h.logger.Error("failed to check shipping status", "error", err, "shipping_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, statusResponse{ShippingID: id, Status: status})
}

func (h *Handler) HandleFail(w http.ResponseWriter, r *http.Request) {
	h.handleOverride(w, r, h.service.FailShipping, domain.ShippingStatusFailed)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.handleOverride(w, r, h.service.CompleteShipping, domain.ShippingStatusCompleted)
}

func (h *Handler) handleOverride(w http.ResponseWriter, r *http.Request, override func(ctx context.Context, id string) error, status domain.ShippingStatus) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing shipping id")
		return
	}

	if err := override(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrShippingNotFound) {
			h.writeError(w, http.StatusNotFound, "shipping not found")
			return
		}
		h.logger.Error("failed to override shipping status", "error", err, "shipping_id", id, "shipping_status", status)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, statusResponse{ShippingID: id, Status: status})
}

type processBatchResponse struct {
	Processed int `json:"processed"`
}

func (h *Handler) HandleProcessBatch(w http.ResponseWriter, r *http.Request) {
	processed, err := h.service.ProcessShippingBatch(r.Context())
	if err != nil {
		h.logger.Error("failed to process shipping batch", "error", err, "processed", processed)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, processBatchResponse{Processed: processed})
}

func (h *Handler) HandleListTypes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]string{"shipping_types": h.service.ListAvailableShippingTypes()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
