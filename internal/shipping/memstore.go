package shipping

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/shipflow-otel-demo/internal/domain"
)

// MemStore is the in-process Store: a mutex-guarded map that exclusively
// owns its records and hands out copies, so callers cannot mutate stored
// state behind the service's back.
type MemStore struct {
	mu        sync.Mutex
	shippings map[string]domain.Shipping
}

func NewMemStore() *MemStore {
	return &MemStore{
		shippings: make(map[string]domain.Shipping),
	}
}

func (m *MemStore) CreateShipping(_ context.Context, shippingType string, productIDs []string, orderID string, status domain.ShippingStatus, dueDate time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.shippings[id] = domain.Shipping{
		ID:         id,
		Type:       shippingType,
		ProductIDs: slices.Clone(productIDs),
		OrderID:    orderID,
		Status:     status,
		DueDate:    dueDate,
		CreatedAt:  time.Now().UTC(),
	}

	return id, nil
}

func (m *MemStore) GetShipping(_ context.Context, id string) (*domain.Shipping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	shipping, ok := m.shippings[id]
	if !ok {
		return nil, domain.ErrShippingNotFound
	}

	shipping.ProductIDs = slices.Clone(shipping.ProductIDs)
	return &shipping, nil
}

func (m *MemStore) UpdateStatus(_ context.Context, id string, status domain.ShippingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	shipping, ok := m.shippings[id]
	if !ok {
		return domain.ErrShippingNotFound
	}

	shipping.Status = status
	m.shippings[id] = shipping
	return nil
}
