package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/events"
	"github.com/pryme0/vyb-q-admin/internal/logger"
	"github.com/pryme0/vyb-q-admin/internal/metrics"
	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/notifier"
	"github.com/pryme0/vyb-q-admin/internal/utils"
)

type CreateOrderRequest struct {
	CustomerID      *uint       `json:"customerId"`
	DeliveryAddress string      `json:"deliveryAddress"`
	Notes           string      `json:"notes"`
	Items           []OrderLine `json:"items" binding:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	DeliveryAddress string `json:"deliveryAddress"`
	Notes           string `json:"notes"`
}

type OrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// GET /api/orders
func ListOrders(c *gin.Context) {
	q := db.DB.Model(&models.Order{})

	if status := models.OrderStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			respondError(c, http.StatusBadRequest, "invalid status")
			return
		}
		q = q.Where("status = ?", status)
	}
	customerID, ok, err := queryUint(c, "customerId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if ok {
		q = q.Where("customer_id = ?", customerID)
	}

	res, err := utils.Paginate[models.Order](q, utils.ParsePage(c), utils.Preload("Items", "Customer"), utils.OrderBy("created_at DESC, id DESC"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/orders/:id
func GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var order models.Order
	if err := db.DB.Preload("Items").Preload("Customer").First(&order, id).Error; err != nil {
		respondDBError(c, err, "order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// placeOrder prices lines and stores the order with its items in one
// transaction.
func placeOrder(customerID *uint, address, notes string, lines []OrderLine) (models.Order, error) {
	var order models.Order
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		priced, err := priceOrder(tx, mergeLines(lines), now())
		if err != nil {
			return err
		}
		priced.CustomerID = customerID
		priced.DeliveryAddress = address
		priced.Notes = notes

		if err := tx.Create(&priced).Error; err != nil {
			return err
		}
		return tx.Preload("Items").Preload("Customer").First(&order, priced.ID).Error
	})
	return order, err
}

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errMenuItemNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, errMenuItemUnavailable):
		respondError(c, http.StatusConflict, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, err.Error())
	}
}

// notifyOrderPlaced sends the confirmation SMS and email in the background.
func notifyOrderPlaced(customer models.Customer, order models.Order) {
	if customer.Phone != "" {
		background("order sms", func(ctx context.Context) error {
			return notify.SendSMS(ctx, customer.Phone, notifier.OrderSMS(order))
		})
	}
	if customer.Email != "" {
		background("order email", func(ctx context.Context) error {
			return notify.SendEmail(ctx, notifier.OrderConfirmationEmail(customer, order))
		})
	}
}

// POST /api/orders
// Staff-entered order, optionally on behalf of a known customer.
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.CustomerID != nil {
		var customer models.Customer
		if err := db.DB.First(&customer, *req.CustomerID).Error; err != nil {
			respondDBError(c, err, "customer")
			return
		}
	}

	order, err := placeOrder(req.CustomerID, req.DeliveryAddress, req.Notes, req.Items)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	if order.Customer != nil {
		notifyOrderPlaced(*order.Customer, order)
	}
	metrics.OrderPlaced("staff")
	emit(c.Request.Context(), events.OrderCreated, order)

	c.JSON(http.StatusCreated, gin.H{"message": "order created successfully", "order": order})
}

// PUT /api/orders/:id
func UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var order models.Order
	if err := db.DB.First(&order, id).Error; err != nil {
		respondDBError(c, err, "order")
		return
	}

	err := db.DB.Model(&order).Updates(map[string]any{
		"delivery_address": req.DeliveryAddress,
		"notes":            req.Notes,
	}).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := db.DB.Preload("Items").Preload("Customer").First(&order, id).Error; err != nil {
		respondDBError(c, err, "order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// PATCH /api/orders/:id/status
func UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.Valid() {
		respondError(c, http.StatusBadRequest, "invalid status")
		return
	}

	var order models.Order
	if err := db.DB.Preload("Items").Preload("Customer").First(&order, id).Error; err != nil {
		respondDBError(c, err, "order")
		return
	}

	previous := order.Status
	if previous == req.Status {
		c.JSON(http.StatusOK, order)
		return
	}
	if err := db.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	order.Status = req.Status

	logger.L().Info("order status changed",
		zap.Uint("order_id", order.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(req.Status)))

	if order.Customer != nil && order.Customer.Phone != "" {
		phone := order.Customer.Phone
		snapshot := order
		background("order status sms", func(ctx context.Context) error {
			return notify.SendSMS(ctx, phone, notifier.OrderStatusSMS(snapshot))
		})
	}
	emit(c.Request.Context(), events.OrderStatusChanged, gin.H{"orderId": order.ID, "from": previous, "to": order.Status})

	c.JSON(http.StatusOK, order)
}

// DELETE /api/orders/:id
func DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var order models.Order
	if err := db.DB.First(&order, id).Error; err != nil {
		respondDBError(c, err, "order")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	emit(c.Request.Context(), events.OrderDeleted, gin.H{"orderId": id})
	c.Status(http.StatusNoContent)
}
