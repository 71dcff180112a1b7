// Package cart holds a storefront shopping cart: at most one line per menu
// item, every line with a positive quantity.
package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrItemNotInCart   = errors.New("item not in cart")
	ErrEmptyCart       = errors.New("cart is empty")
)

type Line struct {
	MenuItemID uint    `json:"menuItemId"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
	ImageURL   string  `json:"imageUrl,omitempty"`
}

type Cart struct {
	Lines []Line `json:"lines"`
}

func New() *Cart {
	return &Cart{Lines: []Line{}}
}

// Add merges item into the cart. An existing line for the same menu item
// has its quantity increased and its name/price refreshed.
func (c *Cart) Add(item Line, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("add item %d: %w", item.MenuItemID, ErrInvalidQuantity)
	}

	if i := c.index(item.MenuItemID); i >= 0 {
		c.Lines[i].Quantity += qty
		c.Lines[i].Name = item.Name
		c.Lines[i].UnitPrice = item.UnitPrice
		c.Lines[i].ImageURL = item.ImageURL
		return nil
	}

	item.Quantity = qty
	c.Lines = append(c.Lines, item)
	return nil
}

func (c *Cart) Remove(menuItemID uint) {
	if i := c.index(menuItemID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

// SetQuantity replaces the quantity of a line; qty <= 0 removes it.
func (c *Cart) SetQuantity(menuItemID uint, qty int) error {
	i := c.index(menuItemID)
	if i < 0 {
		return fmt.Errorf("set quantity of item %d: %w", menuItemID, ErrItemNotInCart)
	}
	if qty <= 0 {
		c.Remove(menuItemID)
		return nil
	}
	c.Lines[i].Quantity = qty
	return nil
}

func (c *Cart) Clear() {
	c.Lines = []Line{}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() float64 {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.InexactFloat64()
}

func (c *Cart) Line(menuItemID uint) (Line, bool) {
	if i := c.index(menuItemID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

func (c *Cart) index(menuItemID uint) int {
	for i, l := range c.Lines {
		if l.MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

// View is the wire shape of a cart. Totals are computed at read time.
type View struct {
	Lines     []Line  `json:"lines"`
	ItemCount int     `json:"itemCount"`
	Subtotal  float64 `json:"subtotal"`
}

func (c *Cart) View() View {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	return View{Lines: lines, ItemCount: c.ItemCount(), Subtotal: c.Subtotal()}
}
