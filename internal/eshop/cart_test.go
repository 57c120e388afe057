package eshop

import "testing"

func sampleProduct() *Product {
	return &Product{
		ID:              "PROD-001",
		Name:            "Test Phone",
		Price:           1000,
		AvailableAmount: 10,
	}
}

func TestShoppingCart_AddProduct(t *testing.T) {
	t.Run("accepts available amounts", func(t *testing.T) {
		cart := NewShoppingCart()

		if err := cart.AddProduct(sampleProduct(), 5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cart.Len() != 1 {
			t.Errorf("expected 1 entry, got %d", cart.Len())
		}
	})

	t.Run("rejects amounts exceeding availability", func(t *testing.T) {
		cart := NewShoppingCart()

		if err := cart.AddProduct(sampleProduct(), 11); err == nil {
			t.Error("expected an error for amount over availability")
		}
		if cart.Len() != 0 {
			t.Errorf("expected empty cart, got %d entries", cart.Len())
		}
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		cart := NewShoppingCart()

		if err := cart.AddProduct(sampleProduct(), 0); err == nil {
			t.Error("expected an error for zero amount")
		}
	})
}

func TestShoppingCart_Total(t *testing.T) {
	cart := NewShoppingCart()
	phone := sampleProduct()
	laptop := &Product{ID: "PROD-002", Name: "Test Laptop", Price: 4500, AvailableAmount: 3}

	if err := cart.AddProduct(phone, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cart.AddProduct(laptop, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if total := cart.Total(); total != 6500 {
		t.Errorf("expected total 6500, got %d", total)
	}
}

func TestShoppingCart_Submit(t *testing.T) {
	cart := NewShoppingCart()
	product := sampleProduct()

	if err := cart.AddProduct(product, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	initialAmount := product.AvailableAmount
	productIDs := cart.Submit()

	if product.AvailableAmount != initialAmount-5 {
		t.Errorf("expected availability %d, got %d", initialAmount-5, product.AvailableAmount)
	}
	if cart.Len() != 0 {
		t.Errorf("expected empty cart after submit, got %d entries", cart.Len())
	}
	if len(productIDs) != 1 || productIDs[0] != "PROD-001" {
		t.Errorf("expected [PROD-001], got %v", productIDs)
	}
}
