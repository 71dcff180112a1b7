package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/discount"
	"github.com/pryme0/vyb-q-admin/internal/events"
	"github.com/pryme0/vyb-q-admin/internal/metrics"
	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/utils"
)

var (
	errOrderClosed    = errors.New("waitress order is closed")
	errLastItem       = errors.New("cannot remove the last item; delete the order instead")
	errItemNotInOrder = errors.New("item not found in this order")
	errWaitressAbsent = errors.New("waitress not found or inactive")
)

type WaitressOrderLine struct {
	MenuItemID uint   `json:"menuItemId" binding:"required"`
	Quantity   uint   `json:"quantity" binding:"required,min=1"`
	Notes      string `json:"notes"`
}

type CreateWaitressOrderRequest struct {
	WaitressID  uint                `json:"waitressId" binding:"required"`
	TableNumber string              `json:"tableNumber" binding:"required"`
	Items       []WaitressOrderLine `json:"items" binding:"required,min=1,dive"`
}

type WaitressOrderItemQuantityRequest struct {
	Quantity uint `json:"quantity" binding:"required,min=1"`
}

func respondWaitressOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errOrderClosed), errors.Is(err, errLastItem):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, errItemNotInOrder):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, errWaitressAbsent):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "waitress order not found")
	default:
		respondOrderError(c, err)
	}
}

// newWaitressItem prices one line at the current menu price with the best
// discount applied, the same charge a storefront customer would see.
func newWaitressItem(tx *gorm.DB, rules []discount.Rule, l WaitressOrderLine) (models.WaitressOrderItem, error) {
	item, err := loadMenuItem(tx, l.MenuItemID)
	if err != nil {
		return models.WaitressOrderItem{}, err
	}
	q := discount.Resolve(rules, item.ID, item.Price, now())
	return models.WaitressOrderItem{
		MenuItemID: item.ID,
		Name:       item.Name,
		Quantity:   l.Quantity,
		UnitPrice:  q.DiscountedPrice,
		Notes:      l.Notes,
	}, nil
}

func waitressOrderTotal(items []models.WaitressOrderItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}

// loadOpenOrder fetches the order with its items and refuses closed ones.
func loadOpenOrder(tx *gorm.DB, id uint) (models.WaitressOrder, error) {
	var o models.WaitressOrder
	if err := tx.Preload("Items").First(&o, id).Error; err != nil {
		return o, err
	}
	if o.Status == models.WaitressOrderClosed {
		return o, errOrderClosed
	}
	return o, nil
}

func refreshTotal(tx *gorm.DB, o *models.WaitressOrder) error {
	var items []models.WaitressOrderItem
	if err := tx.Where("waitress_order_id = ?", o.ID).Order("id").Find(&items).Error; err != nil {
		return err
	}
	o.Items = items
	o.Total = waitressOrderTotal(items)
	return tx.Model(o).Update("total", o.Total).Error
}

func reloadWaitressOrder(c *gin.Context, id uint, status int) {
	var o models.WaitressOrder
	if err := db.DB.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).Preload("Waitress").First(&o, id).Error; err != nil {
		respondDBError(c, err, "waitress order")
		return
	}
	c.JSON(status, o)
}

// GET /api/waitress-orders
func ListWaitressOrders(c *gin.Context) {
	q := db.DB.Model(&models.WaitressOrder{})

	if status := models.WaitressOrderStatus(c.Query("status")); status != "" {
		if status != models.WaitressOrderOpen && status != models.WaitressOrderClosed {
			respondError(c, http.StatusBadRequest, "invalid status")
			return
		}
		q = q.Where("status = ?", status)
	}
	waitressID, ok, err := queryUint(c, "waitressId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if ok {
		q = q.Where("waitress_id = ?", waitressID)
	}

	res, err := utils.Paginate[models.WaitressOrder](q, utils.ParsePage(c), utils.Preload("Items", "Waitress"), utils.OrderBy("created_at DESC, id DESC"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/waitress-orders/:id
func GetWaitressOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	reloadWaitressOrder(c, id, http.StatusOK)
}

// POST /api/waitress-orders
func CreateWaitressOrder(c *gin.Context) {
	var req CreateWaitressOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var order models.WaitressOrder
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var w models.Waitress
		if err := tx.First(&w, req.WaitressID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errWaitressAbsent
			}
			return err
		}
		if !w.IsActive {
			return errWaitressAbsent
		}

		rules, err := activeRules(tx)
		if err != nil {
			return err
		}

		order = models.WaitressOrder{
			WaitressID:  w.ID,
			TableNumber: req.TableNumber,
			Status:      models.WaitressOrderOpen,
		}
		for _, l := range req.Items {
			it, err := newWaitressItem(tx, rules, l)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, it)
		}
		order.Total = waitressOrderTotal(order.Items)
		return tx.Create(&order).Error
	})
	if err != nil {
		respondWaitressOrderError(c, err)
		return
	}

	reloadWaitressOrder(c, order.ID, http.StatusCreated)
}

// POST /api/waitress-orders/:id/items
// A line for the same menu item with the same notes is merged.
func AddWaitressOrderItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req WaitressOrderLine
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		o, err := loadOpenOrder(tx, id)
		if err != nil {
			return err
		}

		for _, existing := range o.Items {
			if existing.MenuItemID == req.MenuItemID && existing.Notes == req.Notes {
				if err := tx.Model(&existing).Update("quantity", existing.Quantity+req.Quantity).Error; err != nil {
					return err
				}
				return refreshTotal(tx, &o)
			}
		}

		rules, err := activeRules(tx)
		if err != nil {
			return err
		}
		it, err := newWaitressItem(tx, rules, req)
		if err != nil {
			return err
		}
		it.WaitressOrderID = o.ID
		if err := tx.Create(&it).Error; err != nil {
			return err
		}
		return refreshTotal(tx, &o)
	})
	if err != nil {
		respondWaitressOrderError(c, err)
		return
	}

	reloadWaitressOrder(c, id, http.StatusOK)
}

// PUT /api/waitress-orders/:id/items/:itemId
func UpdateWaitressOrderItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}

	var req WaitressOrderItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		o, err := loadOpenOrder(tx, id)
		if err != nil {
			return err
		}
		for _, it := range o.Items {
			if it.ID == itemID {
				if err := tx.Model(&it).Update("quantity", req.Quantity).Error; err != nil {
					return err
				}
				return refreshTotal(tx, &o)
			}
		}
		return errItemNotInOrder
	})
	if err != nil {
		respondWaitressOrderError(c, err)
		return
	}

	reloadWaitressOrder(c, id, http.StatusOK)
}

// DELETE /api/waitress-orders/:id/items/:itemId
// An order keeps at least one item; removing the last one is refused.
func RemoveWaitressOrderItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		o, err := loadOpenOrder(tx, id)
		if err != nil {
			return err
		}

		found := false
		for _, it := range o.Items {
			if it.ID == itemID {
				found = true
				break
			}
		}
		if !found {
			return errItemNotInOrder
		}
		if len(o.Items) == 1 {
			return errLastItem
		}

		if err := tx.Delete(&models.WaitressOrderItem{}, itemID).Error; err != nil {
			return err
		}
		return refreshTotal(tx, &o)
	})
	if err != nil {
		respondWaitressOrderError(c, err)
		return
	}

	reloadWaitressOrder(c, id, http.StatusOK)
}

// POST /api/waitress-orders/:id/close
func CloseWaitressOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var o models.WaitressOrder
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		o, err = loadOpenOrder(tx, id)
		if err != nil {
			return err
		}
		closedAt := now().UTC()
		o.Status = models.WaitressOrderClosed
		o.ClosedAt = &closedAt
		return tx.Model(&o).Updates(map[string]any{
			"status":    o.Status,
			"closed_at": closedAt,
		}).Error
	})
	if err != nil {
		respondWaitressOrderError(c, err)
		return
	}

	metrics.OrderPlaced("waitress")
	emit(c.Request.Context(), events.WaitressOrderClosed, o)
	reloadWaitressOrder(c, id, http.StatusOK)
}

// DELETE /api/waitress-orders/:id
// Only open orders can be deleted.
func DeleteWaitressOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		o, err := loadOpenOrder(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("waitress_order_id = ?", id).Delete(&models.WaitressOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&o).Error
	})
	if err != nil {
		respondWaitressOrderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
