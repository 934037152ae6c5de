package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a single line in a shopping cart. UnitPrice snapshots the
// catalog price at the time the line was last touched.
type CartItem struct {
	FoodID    string          `json:"food_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	AddedAt   time.Time       `json:"added_at"`
}

// LineTotal returns quantity times unit price.
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// Cart is the shopping cart aggregate, keyed by its owner.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart builds an empty cart for the given user.
func NewCart(userID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem adds quantity of a product at the given price. An existing
// line for the same product is merged: quantities sum and the unit
// price refreshes to the current one. Quantity zero removes the line.
func (c *Cart) AddItem(foodID string, quantity int32, unitPrice decimal.Decimal) {
	if quantity == 0 {
		c.RemoveItem(foodID)
		return
	}
	for i := range c.Items {
		if c.Items[i].FoodID == foodID {
			c.Items[i].Quantity += quantity
			c.Items[i].UnitPrice = unitPrice
			c.touch()
			return
		}
	}
	c.Items = append(c.Items, CartItem{
		FoodID:    foodID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		AddedAt:   time.Now().UTC(),
	})
	c.touch()
}

// UpdateItem sets the quantity of an existing line. Zero removes it.
// Returns false when the product is not in the cart.
func (c *Cart) UpdateItem(foodID string, quantity int32) bool {
	for i := range c.Items {
		if c.Items[i].FoodID == foodID {
			if quantity == 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			c.touch()
			return true
		}
	}
	return false
}

// RemoveItem drops the line for the given product. Returns false when
// no such line exists.
func (c *Cart) RemoveItem(foodID string) bool {
	for i := range c.Items {
		if c.Items[i].FoodID == foodID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return true
		}
	}
	return false
}

// Item returns the line for a product, or nil.
func (c *Cart) Item(foodID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].FoodID == foodID {
			return &c.Items[i]
		}
	}
	return nil
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.touch()
}

// ItemCount returns the sum of line quantities.
func (c *Cart) ItemCount() int32 {
	var total int32
	for i := range c.Items {
		total += c.Items[i].Quantity
	}
	return total
}

// Total returns the sum of line totals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].LineTotal())
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
