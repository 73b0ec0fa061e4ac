// Package cart holds shopping carts between requests.
package cart

import (
	"github.com/google/uuid"
)

// Item is one cart line
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Cart is the set of lines a user intends to buy. Each product appears at most once.
type Cart struct {
	Items []Item `json:"items"`
}

// Add merges n units of productID into the cart
func (c *Cart) Add(productID uuid.UUID, n int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += n
			return
		}
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: n})
}

// Remove drops the line for productID. Removing an absent product is a no-op.
func (c *Cart) Remove(productID uuid.UUID) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Quantity returns the units of productID in the cart
func (c *Cart) Quantity(productID uuid.UUID) int {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
