package domain

import "time"

type ShippingStatus string

const (
	ShippingStatusCreated    ShippingStatus = "created"
	ShippingStatusInProgress ShippingStatus = "in_progress"
	ShippingStatusCompleted  ShippingStatus = "completed"
	ShippingStatusFailed     ShippingStatus = "failed"
)

// IsTerminal reports whether automatic batch processing may still move the
// shipping; manual overrides ignore this.
func (s ShippingStatus) IsTerminal() bool {
	return s == ShippingStatusCompleted || s == ShippingStatusFailed
}

type Shipping struct {
	ID         string         `json:"shipping_id"`
	Type       string         `json:"shipping_type"`
	ProductIDs []string       `json:"product_ids"`
	OrderID    string         `json:"order_id"`
	Status     ShippingStatus `json:"shipping_status"`
	DueDate    time.Time      `json:"due_date"`
	CreatedAt  time.Time      `json:"created_at"`
}
