package shipping

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joao-fontenele/shipflow-otel-demo/internal/domain"
)

func TestMemStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	dueDate := time.Now().UTC().Add(24 * time.Hour)

	id, err := store.CreateShipping(ctx, "Нова Пошта", []string{"prod1", "prod2"}, "ord-123", domain.ShippingStatusCreated, dueDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shipping, err := store.GetShipping(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if shipping.ID != id {
		t.Errorf("expected id %s, got %s", id, shipping.ID)
	}
	if shipping.Status != domain.ShippingStatusCreated {
		t.Errorf("expected status %s, got %s", domain.ShippingStatusCreated, shipping.Status)
	}
	if shipping.OrderID != "ord-123" {
		t.Errorf("expected order id ord-123, got %s", shipping.OrderID)
	}
	if !shipping.DueDate.Equal(dueDate) {
		t.Errorf("expected due date %v, got %v", dueDate, shipping.DueDate)
	}
}

func TestMemStore_GetReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	id, _ := store.CreateShipping(ctx, "Нова Пошта", []string{"prod1"}, "ord-1", domain.ShippingStatusInProgress, time.Now().Add(time.Hour))

	first, _ := store.GetShipping(ctx, id)
	first.Status = domain.ShippingStatusFailed
	first.ProductIDs[0] = "tampered"

	second, _ := store.GetShipping(ctx, id)
	if second.Status != domain.ShippingStatusInProgress {
		t.Errorf("mutating a snapshot changed stored status to %s", second.Status)
	}
	if second.ProductIDs[0] != "prod1" {
		t.Errorf("mutating a snapshot changed stored product ids to %v", second.ProductIDs)
	}
}

func TestMemStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	if _, err := store.GetShipping(ctx, "missing"); !errors.Is(err, domain.ErrShippingNotFound) {
		t.Errorf("expected ErrShippingNotFound, got %v", err)
	}

	if err := store.UpdateStatus(ctx, "missing", domain.ShippingStatusFailed); !errors.Is(err, domain.ErrShippingNotFound) {
		t.Errorf("expected ErrShippingNotFound, got %v", err)
	}
}

func TestMemStore_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	id, _ := store.CreateShipping(ctx, "Укр Пошта", []string{"p1"}, "ord-1", domain.ShippingStatusInProgress, time.Now().Add(time.Hour))

	if err := store.UpdateStatus(ctx, id, domain.ShippingStatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shipping, _ := store.GetShipping(ctx, id)
	if shipping.Status != domain.ShippingStatusCompleted {
		t.Errorf("expected %s, got %s", domain.ShippingStatusCompleted, shipping.Status)
	}
}

func TestMemStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.CreateShipping(ctx, "Нова Пошта", []string{"p1"}, "ord-1", domain.ShippingStatusInProgress, time.Now().Add(time.Hour))
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			ids[i] = id
			if err := store.UpdateStatus(ctx, id, domain.ShippingStatusCompleted); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true

		shipping, err := store.GetShipping(ctx, id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if shipping.Status != domain.ShippingStatusCompleted {
			t.Errorf("expected %s, got %s", domain.ShippingStatusCompleted, shipping.Status)
		}
	}
}
