package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joao-fontenele/shipflow-otel-demo/internal/domain"
)

func newTestMux(t *testing.T) (*http.ServeMux, *Service, *MemStore) {
	t.Helper()

	service, store, _ := newTestService(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	handler := NewHandler(service, testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /shippings", handler.HandleCreate)
	mux.HandleFunc("GET /shippings/{id}", handler.HandleGet)
	mux.HandleFunc("GET /shippings/{id}/status", handler.HandleCheckStatus)
	mux.HandleFunc("POST /shippings/{id}/fail", handler.HandleFail)
	mux.HandleFunc("POST /shippings/{id}/complete", handler.HandleComplete)
	mux.HandleFunc("POST /shippings/process", handler.HandleProcessBatch)
	mux.HandleFunc("GET /shipping-types", handler.HandleListTypes)

	return mux, service, store
}

func TestHandler_HandleCreate(t *testing.T) {
	t.Run("creates a shipping", func(t *testing.T) {
		mux, service, _ := newTestMux(t)

		body := `{"shipping_type": "Нова Пошта", "product_ids": ["prod1"], "order_id": "ord-123", "due_date": "2026-03-01T13:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/shippings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp createShippingResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.ShippingID == "" {
			t.Fatal("expected a shipping id")
		}

		status, err := service.CheckStatus(context.Background(), resp.ShippingID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != domain.ShippingStatusInProgress {
			t.Errorf("expected %s, got %s", domain.ShippingStatusInProgress, status)
		}
	})

	t.Run("rejects past due date with 422", func(t *testing.T) {
		mux, _, _ := newTestMux(t)

		body := `{"shipping_type": "Нова Пошта", "product_ids": ["prod1"], "order_id": "ord-1", "due_date": "2026-03-01T11:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/shippings", strings.NewReader(body))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects disallowed shipping type with 422", func(t *testing.T) {
		mux, _, _ := newTestMux(t)

		body := `{"shipping_type": "DHL International", "product_ids": ["prod1"], "order_id": "ord-1", "due_date": "2026-03-02T12:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/shippings", strings.NewReader(body))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects malformed body with 400", func(t *testing.T) {
		mux, _, _ := newTestMux(t)

		req := httptest.NewRequest(http.MethodPost, "/shippings", strings.NewReader("{"))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleGet(t *testing.T) {
	mux, _, store := newTestMux(t)

	id, _ := store.CreateShipping(context.Background(), "Укр Пошта", []string{"p1", "p2"}, "ord-9", domain.ShippingStatusCreated, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/shippings/"+id, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var shipping domain.Shipping
	if err := json.NewDecoder(rec.Body).Decode(&shipping); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if shipping.OrderID != "ord-9" {
		t.Errorf("expected order id ord-9, got %s", shipping.OrderID)
	}
	if shipping.Status != domain.ShippingStatusCreated {
		t.Errorf("expected %s, got %s", domain.ShippingStatusCreated, shipping.Status)
	}

	req = httptest.NewRequest(http.MethodGet, "/shippings/unknown", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_ManualOverrides(t *testing.T) {
	mux, service, store := newTestMux(t)
	ctx := context.Background()

	id, _ := store.CreateShipping(ctx, "Самовивіз", []string{"p1"}, "ord-status", domain.ShippingStatusCreated, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))

	for _, tc := range []struct {
		route  string
		status domain.ShippingStatus
	}{
		{route: "fail", status: domain.ShippingStatusFailed},
		{route: "complete", status: domain.ShippingStatusCompleted},
	} {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/shippings/%s/%s", id, tc.route), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d: %s", tc.route, rec.Code, rec.Body.String())
		}

		status, _ := service.CheckStatus(ctx, id)
		if status != tc.status {
			t.Errorf("%s: expected %s, got %s", tc.route, tc.status, status)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/shippings/unknown/fail", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_HandleProcessBatch(t *testing.T) {
	mux, service, _ := newTestMux(t)
	ctx := context.Background()

	id, err := service.CreateShipping(ctx, "Нова Пошта", []string{"p1"}, "ord-1", time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/shippings/process", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp processBatchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Processed != 1 {
		t.Errorf("expected 1 processed, got %d", resp.Processed)
	}

	status, _ := service.CheckStatus(ctx, id)
	if status != domain.ShippingStatusCompleted {
		t.Errorf("expected %s, got %s", domain.ShippingStatusCompleted, status)
	}
}

func TestHandler_HandleListTypes(t *testing.T) {
	mux, _, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/shipping-types", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	types := resp["shipping_types"]
	if len(types) == 0 {
		t.Fatal("expected shipping types")
	}

	found := false
	for _, shippingType := range types {
		if shippingType == "Укр Пошта" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected types to contain Укр Пошта, got %v", types)
	}
}
