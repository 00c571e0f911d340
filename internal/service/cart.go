package service

import (
	"slices"

	"pos/internal/domain"
)

// CartLine выбранный товар и запрошенное количество
type CartLine struct {
	Product  domain.Product `json:"product"`
	Quantity int64          `json:"quantity"`
}

// Cart накапливает позиции текущей продажи в порядке добавления
type Cart struct {
	order []int64
	lines map[int64]CartLine
}

func NewCart() *Cart {
	return &Cart{lines: make(map[int64]CartLine)}
}

// AddItem inserts or replaces the line for p. A replaced line keeps its position.
func (c *Cart) AddItem(p domain.Product, quantity int64) error {
	if quantity <= 0 {
		return domain.Validationf("quantity must be positive, got %d", quantity)
	}
	if quantity > p.Stock {
		return domain.Validationf("quantity %d exceeds stock %d of %q", quantity, p.Stock, p.Name)
	}
	if _, ok := c.lines[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	c.lines[p.ID] = CartLine{Product: p, Quantity: quantity}
	return nil
}

// Remove drops the line for productID; it reports whether there was one.
func (c *Cart) Remove(productID int64) bool {
	if _, ok := c.lines[productID]; !ok {
		return false
	}
	delete(c.lines, productID)
	c.order = slices.DeleteFunc(c.order, func(id int64) bool { return id == productID })
	return true
}

func (c *Cart) Clear() {
	c.order = nil
	clear(c.lines)
}

func (c *Cart) Len() int { return len(c.order) }

// Snapshot returns the lines in insertion order. The slice is a copy.
func (c *Cart) Snapshot() []CartLine {
	out := make([]CartLine, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.lines[id])
	}
	return out
}
