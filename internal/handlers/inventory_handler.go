package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/events"
	"github.com/pryme0/vyb-q-admin/internal/logger"
	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/utils"
)

var errInsufficientStock = errors.New("adjustment would take stock below zero")

type InventoryRequest struct {
	Name         string  `json:"name" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"gte=0"`
	Unit         string  `json:"unit" binding:"required"`
	ReorderLevel float64 `json:"reorderLevel" binding:"gte=0"`
	CostPerUnit  float64 `json:"costPerUnit" binding:"gte=0"`
	Supplier     string  `json:"supplier"`
}

type AdjustInventoryRequest struct {
	Delta  *float64 `json:"delta" binding:"required"`
	Reason string   `json:"reason"`
}

// GET /api/inventory
func ListInventory(c *gin.Context) {
	q := db.DB.Model(&models.InventoryItem{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(supplier) LIKE ?", like, like)
	}

	res, err := utils.Paginate[models.InventoryItem](q, utils.ParsePage(c), utils.OrderBy("name"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/inventory/low-stock
func ListLowStock(c *gin.Context) {
	q := db.DB.Model(&models.InventoryItem{}).Where("quantity <= reorder_level")
	res, err := utils.Paginate[models.InventoryItem](q, utils.ParsePage(c), utils.OrderBy("name"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/inventory/:id
func GetInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var item models.InventoryItem
	if err := db.DB.First(&item, id).Error; err != nil {
		respondDBError(c, err, "inventory item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// POST /api/inventory
func CreateInventoryItem(c *gin.Context) {
	var req InventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	item := models.InventoryItem{
		Name:         req.Name,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		ReorderLevel: req.ReorderLevel,
		CostPerUnit:  req.CostPerUnit,
		Supplier:     req.Supplier,
	}
	if err := db.DB.Create(&item).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	item.LowStock = item.IsLowStock()
	c.JSON(http.StatusCreated, item)
}

// PUT /api/inventory/:id
func UpdateInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req InventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var item models.InventoryItem
	if err := db.DB.First(&item, id).Error; err != nil {
		respondDBError(c, err, "inventory item")
		return
	}
	wasLow := item.IsLowStock()

	item.Name = req.Name
	item.Quantity = req.Quantity
	item.Unit = req.Unit
	item.ReorderLevel = req.ReorderLevel
	item.CostPerUnit = req.CostPerUnit
	item.Supplier = req.Supplier
	if err := db.DB.Select("Name", "Quantity", "Unit", "ReorderLevel", "CostPerUnit", "Supplier").Save(&item).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	item.LowStock = item.IsLowStock()

	if !wasLow && item.LowStock {
		emit(c.Request.Context(), events.InventoryLowStock, item)
	}
	c.JSON(http.StatusOK, item)
}

// PATCH /api/inventory/:id/adjust
// Applies a signed delta. Stock never goes below zero; crossing the reorder
// level publishes a low-stock event.
func AdjustInventory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var item models.InventoryItem
	var wasLow bool
	delta := *req.Delta
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		// Relative update; the floor is checked against the committed quantity.
		res := tx.Model(&models.InventoryItem{}).
			Where("id = ? AND quantity + ? >= 0", id, delta).
			Update("quantity", gorm.Expr("quantity + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return errInsufficientStock
		}

		before := item
		before.Quantity -= delta
		wasLow = before.IsLowStock()
		return nil
	})
	if err != nil {
		if errors.Is(err, errInsufficientStock) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		respondDBError(c, err, "inventory item")
		return
	}
	item.LowStock = item.IsLowStock()

	logger.L().Info("inventory adjusted",
		zap.Uint("item_id", item.ID),
		zap.Float64("delta", delta),
		zap.Float64("quantity", item.Quantity),
		zap.String("reason", req.Reason))

	if !wasLow && item.LowStock {
		emit(c.Request.Context(), events.InventoryLowStock, item)
	}
	c.JSON(http.StatusOK, item)
}

// DELETE /api/inventory/:id
func DeleteInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var item models.InventoryItem
	if err := db.DB.First(&item, id).Error; err != nil {
		respondDBError(c, err, "inventory item")
		return
	}
	if err := db.DB.Delete(&item).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
