package eshop

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultDueDateOffset is how far in the future a shipping is due when the
// caller does not pick a due date.
const DefaultDueDateOffset = 24 * time.Hour

// ShippingCreator is the slice of the shipping lifecycle service the order
// facade needs.
type ShippingCreator interface {
	CreateShipping(ctx context.Context, shippingType string, productIDs []string, orderID string, dueDate time.Time) (string, error)
}

// Order is the thin placement facade: it submits the cart and hands the sold
// products over to the shipping subsystem.
type Order struct {
	ID       string
	cart     *ShoppingCart
	shipping ShippingCreator
}

func NewOrder(cart *ShoppingCart, shipping ShippingCreator) *Order {
	return &Order{
		ID:       uuid.New().String(),
		cart:     cart,
		shipping: shipping,
	}
}

// PlaceOrder submits the cart and creates the shipping record. A zero
// dueDate defaults to DefaultDueDateOffset from now. The cart is only
// submitted once shipping creation passes validation, so a rejected order
// leaves stock untouched.
func (o *Order) PlaceOrder(ctx context.Context, shippingType string, dueDate time.Time) (string, error) {
	if o.cart.Len() == 0 {
		return "", errors.New("cannot place an order with an empty cart")
	}

	if dueDate.IsZero() {
		dueDate = time.Now().UTC().Add(DefaultDueDateOffset)
	}

	productIDs := o.cart.productIDs()

	shippingID, err := o.shipping.CreateShipping(ctx, shippingType, productIDs, o.ID, dueDate)
	if err != nil {
		return "", err
	}

	o.cart.Submit()
	return shippingID, nil
}
