package eshop

import "fmt"

// Product is the catalog unit a cart holds. Price is in minor currency
// units.
type Product struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	AvailableAmount int    `json:"available_amount"`
}

// IsAvailable reports whether the requested amount can still be taken from
// stock.
func (p *Product) IsAvailable(amount int) bool {
	return amount > 0 && amount <= p.AvailableAmount
}

type cartEntry struct {
	product *Product
	amount  int
}

// ShoppingCart accumulates products until the order is submitted. It is not
// safe for concurrent use; each cart belongs to a single order in flight.
type ShoppingCart struct {
	entries []cartEntry
}

func NewShoppingCart() *ShoppingCart {
	return &ShoppingCart{}
}

// AddProduct stages the given amount of a product, rejecting amounts the
// product cannot cover.
func (c *ShoppingCart) AddProduct(product *Product, amount int) error {
	if !product.IsAvailable(amount) {
		return fmt.Errorf("product %s has only %d available, requested %d", product.Name, product.AvailableAmount, amount)
	}

	c.entries = append(c.entries, cartEntry{product: product, amount: amount})
	return nil
}

func (c *ShoppingCart) Len() int {
	return len(c.entries)
}

// Total sums price times amount over the staged entries.
func (c *ShoppingCart) Total() int64 {
	var total int64
	for _, entry := range c.entries {
		total += entry.product.Price * int64(entry.amount)
	}
	return total
}

func (c *ShoppingCart) productIDs() []string {
	ids := make([]string, 0, len(c.entries))
	for _, entry := range c.entries {
		ids = append(ids, entry.product.ID)
	}
	return ids
}

// Submit deducts the staged amounts from product availability, empties the
// cart and returns the ids of the products that were sold.
func (c *ShoppingCart) Submit() []string {
	productIDs := make([]string, 0, len(c.entries))
	for _, entry := range c.entries {
		entry.product.AvailableAmount -= entry.amount
		productIDs = append(productIDs, entry.product.ID)
	}

	c.entries = nil
	return productIDs
}
