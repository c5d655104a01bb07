package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Line is one cart entry, keyed by (ProductID, Size).
type Line struct {
	ProductID string
	Size      string
	Quantity  int
	Name      string
	Price     decimal.Decimal
	ImageURL  string
}

// State is a point-in-time copy of the cart.
type State struct {
	Items []Line
}

// Cart is the client-local cart. It never talks to the server; at checkout
// its lines are projected into order-line inputs, not moved. Operations
// cannot fail.
type Cart struct {
	mu     sync.RWMutex
	items  []Line
	notify func()
}

// New creates an empty cart. notify, if non-nil, is invoked after every
// mutation.
func New(notify func()) *Cart {
	return &Cart{notify: notify}
}

// AddLine merges the given line into the cart. If a line with the same
// (ProductID, Size) exists its quantity is incremented by line.Quantity,
// otherwise the line is appended. Non-positive quantities are ignored.
func (c *Cart) AddLine(line Line) {
	if line.Quantity < 1 {
		return
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ProductID == line.ProductID && c.items[i].Size == line.Size {
			c.items[i].Quantity += line.Quantity
			c.mu.Unlock()
			c.changed()
			return
		}
	}
	c.items = append(c.items, line)
	c.mu.Unlock()
	c.changed()
}

// SetLineQuantity replaces the quantity of the matching line. Quantities
// below 1 are clamped to 1: removal is always explicit via RemoveLine, and
// a zero-quantity line must never exist. No-op if the line is absent.
func (c *Cart) SetLineQuantity(productID, size string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].Size == size {
			c.items[i].Quantity = quantity
			c.mu.Unlock()
			c.changed()
			return
		}
	}
	c.mu.Unlock()
}

// RemoveLine deletes the matching line. No-op if absent.
func (c *Cart) RemoveLine(productID, size string) {
	c.mu.Lock()
	kept := c.items[:0]
	for _, item := range c.items {
		if !(item.ProductID == productID && item.Size == size) {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.mu.Unlock()
	c.changed()
}

// Clear empties the cart. Called by the checkout flow exactly once, after
// the order has been created.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	c.changed()
}

// Snapshot returns a copy of the cart state.
func (c *Cart) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]Line, len(c.items))
	copy(items, c.items)
	return State{Items: items}
}

// Subtotal is the sum of price times quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (c *Cart) changed() {
	if c.notify != nil {
		c.notify()
	}
}
