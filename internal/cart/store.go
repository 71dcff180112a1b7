package cart

import (
	"errors"
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pryme0/vyb-q-admin/internal/models"
)

// The cookie only holds the cart ID; lines live in the carts tables.
const sessionKey = "cart_id"

// Load restores the cart referenced by the session. A session without a
// cart, or one pointing at a cart that no longer exists, yields an empty
// cart.
func Load(sess sessions.Session, d *gorm.DB) (*Cart, error) {
	c := New()
	id, ok := sess.Get(sessionKey).(string)
	if !ok || id == "" {
		return c, nil
	}

	var row models.Cart
	err := d.Preload("Lines", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position")
	}).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", id, err)
	}

	for _, l := range row.Lines {
		c.Lines = append(c.Lines, Line{
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			UnitPrice:  l.UnitPrice,
			Quantity:   l.Quantity,
			ImageURL:   l.ImageURL,
		})
	}
	return c, nil
}

// Save replaces the stored lines of the session's cart, allocating a cart on
// first write, and flushes the session.
func Save(sess sessions.Session, d *gorm.DB, c *Cart) error {
	id, _ := sess.Get(sessionKey).(string)
	if id == "" {
		id = uuid.NewString()
	}

	err := d.Transaction(func(tx *gorm.DB) error {
		touch := clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}
		if err := tx.Clauses(touch).Create(&models.Cart{ID: id}).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		if len(c.Lines) == 0 {
			return nil
		}
		rows := make([]models.CartLine, 0, len(c.Lines))
		for i, l := range c.Lines {
			rows = append(rows, models.CartLine{
				CartID:     id,
				Position:   i,
				MenuItemID: l.MenuItemID,
				Name:       l.Name,
				UnitPrice:  l.UnitPrice,
				Quantity:   l.Quantity,
				ImageURL:   l.ImageURL,
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("store cart %s: %w", id, err)
	}

	sess.Set(sessionKey, id)
	if err := sess.Save(); err != nil {
		return fmt.Errorf("save cart session: %w", err)
	}
	return nil
}
