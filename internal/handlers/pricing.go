package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/discount"
	"github.com/pryme0/vyb-q-admin/internal/models"
)

var (
	errMenuItemNotFound    = errors.New("menu item not found")
	errMenuItemUnavailable = errors.New("menu item is not available")
)

type OrderLine struct {
	MenuItemID uint `json:"menuItemId" binding:"required"`
	Quantity   uint `json:"quantity" binding:"required,min=1"`
}

// activeRules loads every discount that is switched on, with its item set.
// Window and scope are checked per item by the resolver.
func activeRules(tx *gorm.DB) ([]discount.Rule, error) {
	var ds []models.Discount
	if err := tx.Preload("MenuItems").Where("is_active = ?", true).Find(&ds).Error; err != nil {
		return nil, fmt.Errorf("load discounts: %w", err)
	}
	return models.Rules(ds), nil
}

func loadMenuItem(tx *gorm.DB, id uint) (models.MenuItem, error) {
	var item models.MenuItem
	if err := tx.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, fmt.Errorf("%w: %d", errMenuItemNotFound, id)
		}
		return item, err
	}
	if !item.IsAvailable {
		return item, fmt.Errorf("%w: %s", errMenuItemUnavailable, item.Name)
	}
	return item, nil
}

// priceOrder builds the order items for lines at today's menu prices with
// the best discount applied to each, and fills the order totals.
func priceOrder(tx *gorm.DB, lines []OrderLine, at time.Time) (models.Order, error) {
	rules, err := activeRules(tx)
	if err != nil {
		return models.Order{}, err
	}

	order := models.Order{Status: models.OrderPending}
	subtotal := decimal.Zero
	total := decimal.Zero
	for _, l := range lines {
		item, err := loadMenuItem(tx, l.MenuItemID)
		if err != nil {
			return models.Order{}, err
		}

		q := discount.Resolve(rules, item.ID, item.Price, at)
		qty := decimal.NewFromInt(int64(l.Quantity))
		subtotal = subtotal.Add(decimal.NewFromFloat(item.Price).Mul(qty))
		total = total.Add(decimal.NewFromFloat(q.DiscountedPrice).Mul(qty))

		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   l.Quantity,
			UnitPrice:  item.Price,
			Price:      q.DiscountedPrice,
			DiscountID: q.DiscountID,
		})
	}

	order.Subtotal = subtotal.Round(2).InexactFloat64()
	order.Total = total.Round(2).InexactFloat64()
	order.DiscountTotal = subtotal.Sub(total).Round(2).InexactFloat64()
	return order, nil
}

// mergeLines folds repeated menu items into one line each, keeping the
// order of first appearance.
func mergeLines(lines []OrderLine) []OrderLine {
	idx := map[uint]int{}
	out := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.MenuItemID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.MenuItemID] = len(out)
		out = append(out, l)
	}
	return out
}
