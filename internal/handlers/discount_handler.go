package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/discount"
	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/utils"
)

type DiscountRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Type        discount.Type  `json:"type" binding:"required"`
	Value       float64        `json:"value" binding:"gte=0"`
	Scope       discount.Scope `json:"scope" binding:"required"`
	IsActive    *bool          `json:"isActive"`
	StartDate   *time.Time     `json:"startDate"`
	EndDate     *time.Time     `json:"endDate"`
	MenuItemIDs []uint         `json:"menuItemIds"`
}

func (r DiscountRequest) validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("type must be %q or %q", discount.Percentage, discount.FixedAmount)
	}
	if !r.Scope.Valid() {
		return fmt.Errorf("scope must be %q or %q", discount.AllItems, discount.SpecificItems)
	}
	if r.Type == discount.Percentage && r.Value > 100 {
		return errors.New("percentage value cannot exceed 100")
	}
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return errors.New("endDate must not be before startDate")
	}
	if r.Scope == discount.SpecificItems && len(r.MenuItemIDs) == 0 {
		return errors.New("menuItemIds is required for specific_items discounts")
	}
	return nil
}

// withStatus fills the computed display class.
func withStatus(ds []models.Discount, at time.Time) []models.Discount {
	for i := range ds {
		ds[i].Status = ds[i].Rule().Classify(at)
	}
	return ds
}

func loadMenuItems(tx *gorm.DB, ids []uint) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return []models.MenuItem{}, nil
	}
	var items []models.MenuItem
	if err := tx.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	seen := map[uint]bool{}
	for _, it := range items {
		seen[it.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return nil, fmt.Errorf("%w: %d", errMenuItemNotFound, id)
		}
	}
	return items, nil
}

// GET /api/discounts
// ?status filters on the computed display class, so filtering happens after
// the rows are loaded.
func ListDiscounts(c *gin.Context) {
	page := utils.ParsePage(c)
	at := now()

	status := discount.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		respondError(c, http.StatusBadRequest, "invalid status")
		return
	}

	if status == "" {
		res, err := utils.Paginate[models.Discount](db.DB.Model(&models.Discount{}), page, utils.Preload("MenuItems"), utils.OrderBy("id"))
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		res.Data = withStatus(res.Data, at)
		c.JSON(http.StatusOK, res)
		return
	}

	var all []models.Discount
	if err := db.DB.Preload("MenuItems").Order("id").Find(&all).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	matched := []models.Discount{}
	for _, d := range withStatus(all, at) {
		if d.Status == status {
			matched = append(matched, d)
		}
	}

	res := utils.PageResult[models.Discount]{Data: []models.Discount{}, Total: int64(len(matched)), Page: page.Page, Limit: page.Limit}
	if start := page.Offset(); start < len(matched) {
		end := start + page.Limit
		if end > len(matched) {
			end = len(matched)
		}
		res.Data = matched[start:end]
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/discounts/:id
func GetDiscount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var d models.Discount
	if err := db.DB.Preload("MenuItems").First(&d, id).Error; err != nil {
		respondDBError(c, err, "discount")
		return
	}
	d.Status = d.Rule().Classify(now())
	c.JSON(http.StatusOK, d)
}

func saveDiscount(c *gin.Context, d *models.Discount, req DiscountRequest, create bool) bool {
	if err := req.validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return false
	}

	ids := req.MenuItemIDs
	if req.Scope == discount.AllItems {
		ids = nil
	}

	active := req.IsActive == nil || *req.IsActive
	d.Name = req.Name
	d.Description = req.Description
	d.Type = req.Type
	d.Value = req.Value
	d.Scope = req.Scope
	d.IsActive = active
	d.StartDate = req.StartDate
	d.EndDate = req.EndDate

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		items, err := loadMenuItems(tx, ids)
		if err != nil {
			return err
		}
		d.MenuItems = nil

		if create {
			if err := tx.Create(d).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Select("Name", "Description", "Type", "Value", "Scope", "StartDate", "EndDate").Save(d).Error; err != nil {
				return err
			}
		}
		// Written separately because a false bool is dropped in favour of
		// the column default on insert.
		if err := tx.Model(d).Update("is_active", active).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return tx.Model(d).Association("MenuItems").Clear()
		}
		return tx.Model(d).Association("MenuItems").Replace(items)
	})
	if err != nil {
		if errors.Is(err, errMenuItemNotFound) {
			respondError(c, http.StatusBadRequest, err.Error())
			return false
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return false
	}

	if err := db.DB.Preload("MenuItems").First(d, d.ID).Error; err != nil {
		respondDBError(c, err, "discount")
		return false
	}
	d.Status = d.Rule().Classify(now())
	return true
}

// POST /api/discounts
func CreateDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var d models.Discount
	if !saveDiscount(c, &d, req, true) {
		return
	}
	c.JSON(http.StatusCreated, d)
}

// PUT /api/discounts/:id
func UpdateDiscount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var d models.Discount
	if err := db.DB.First(&d, id).Error; err != nil {
		respondDBError(c, err, "discount")
		return
	}
	if !saveDiscount(c, &d, req, false) {
		return
	}
	c.JSON(http.StatusOK, d)
}

// DELETE /api/discounts/:id
func DeleteDiscount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var d models.Discount
	if err := db.DB.First(&d, id).Error; err != nil {
		respondDBError(c, err, "discount")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&d).Association("MenuItems").Clear(); err != nil {
			return err
		}
		return tx.Delete(&d).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/discounts/menu-item/:id
// Every discount applying to the item right now.
func ListMenuItemDiscounts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var item models.MenuItem
	if err := db.DB.First(&item, id).Error; err != nil {
		respondDBError(c, err, "menu item")
		return
	}

	var ds []models.Discount
	if err := db.DB.Preload("MenuItems").Where("is_active = ?", true).Order("id").Find(&ds).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	at := now()
	applicable := []models.Discount{}
	for _, d := range ds {
		if d.Rule().AppliesTo(item.ID, at) {
			d.Status = discount.StatusActive
			applicable = append(applicable, d)
		}
	}
	c.JSON(http.StatusOK, applicable)
}

// GET /api/discounts/menu-item/:id/best
// The single discount a customer gets on the item, as a price quote.
func BestMenuItemDiscount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var item models.MenuItem
	if err := db.DB.First(&item, id).Error; err != nil {
		respondDBError(c, err, "menu item")
		return
	}

	rules, err := activeRules(db.DB)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, discount.Resolve(rules, item.ID, item.Price, now()))
}
