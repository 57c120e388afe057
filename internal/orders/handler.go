package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/shipflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shipflow-otel-demo/internal/eshop"
)

// Handler is the order placement facade over HTTP: it validates the cart,
// computes the total and delegates shipping creation to the lifecycle
// service.
type Handler struct {
	products *ProductRepository
	shipping eshop.ShippingCreator
	logger   *slog.Logger
}

func NewHandler(products *ProductRepository, shipping eshop.ShippingCreator, logger *slog.Logger) *Handler {
	return &Handler{
		products: products,
		shipping: shipping,
		logger:   logger,
	}
}

type orderItem struct {
	ProductID string `json:"product_id"`
	Amount    int    `json:"amount"`
}

type placeOrderRequest struct {
	ShippingType string      `json:"shipping_type"`
	DueDate      time.Time   `json:"due_date"`
	Items        []orderItem `json:"items"`
}

type placeOrderResponse struct {
	OrderID    string `json:"order_id"`
	ShippingID string `json:"shipping_id"`
	Total      int64  `json:"total"`
}

func (h *Handler) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Items) == 0 {
		h.writeError(w, http.StatusBadRequest, "order must contain at least one item")
		return
	}

	cart := eshop.NewShoppingCart()
	for _, item := range req.Items {
		product, err := h.products.GetProduct(r.Context(), item.ProductID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				h.writeError(w, http.StatusNotFound, "product not found: "+item.ProductID)
				return
			}
			h.logger.Error("failed to load product", "error", err, "product_id", item.ProductID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if err := cart.AddProduct(product, item.Amount); err != nil {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
	}

	total := cart.Total()

	order := eshop.NewOrder(cart, h.shipping)
	shippingID, err := order.PlaceOrder(r.Context(), req.ShippingType, req.DueDate)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			h.writeError(w, http.StatusUnprocessableEntity, validationErr.Reason)
			return
		}
		h.logger.Error("failed to place order", "error", err, "order_id", order.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	for _, item := range req.Items {
		if err := h.products.Deduct(r.Context(), item.ProductID, item.Amount); err != nil {
			// The shipping is already in flight; log the divergence instead
			// of failing the order.
			h.logger.Error("failed to deduct stock", "error", err, "order_id", order.ID, "product_id", item.ProductID)
		}
	}

	h.logger.Info("order placed", "order_id", order.ID, "shipping_id", shippingID, "total", total)
	h.writeJSON(w, http.StatusCreated, placeOrderResponse{
		OrderID:    order.ID,
		ShippingID: shippingID,
		Total:      total,
	})
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
