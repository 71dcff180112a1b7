package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pryme0/vyb-q-admin/internal/auth"
	"github.com/pryme0/vyb-q-admin/internal/cart"
	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/events"
	"github.com/pryme0/vyb-q-admin/internal/logger"
	"github.com/pryme0/vyb-q-admin/internal/metrics"
)

type AddCartItemRequest struct {
	MenuItemID uint `json:"menuItemId" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	// Zero or less removes the line.
	Quantity *int `json:"quantity" binding:"required"`
}

type CheckoutRequest struct {
	DeliveryAddress string `json:"deliveryAddress"`
	Notes           string `json:"notes"`
}

func loadCart(c *gin.Context, sess sessions.Session) (*cart.Cart, bool) {
	ct, err := cart.Load(sess, db.DB)
	if err != nil {
		logger.L().Error("load cart failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load cart")
		return nil, false
	}
	return ct, true
}

func saveCart(c *gin.Context, sess sessions.Session, ct *cart.Cart) bool {
	if err := cart.Save(sess, db.DB, ct); err != nil {
		logger.L().Error("save cart failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to save cart")
		return false
	}
	return true
}

// GET /api/cart
func GetCart(c *gin.Context) {
	ct, ok := loadCart(c, sessions.Default(c))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ct.View())
}

// POST /api/cart/items
func AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	item, err := loadMenuItem(db.DB, req.MenuItemID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	sess := sessions.Default(c)
	ct, ok := loadCart(c, sess)
	if !ok {
		return
	}
	line := cart.Line{MenuItemID: item.ID, Name: item.Name, UnitPrice: item.Price, ImageURL: item.ImageURL}
	if err := ct.Add(line, req.Quantity); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !saveCart(c, sess, ct) {
		return
	}
	c.JSON(http.StatusOK, ct.View())
}

// PUT /api/cart/items/:menuItemId
func UpdateCartItem(c *gin.Context) {
	id, ok := parseID(c, "menuItemId")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	sess := sessions.Default(c)
	ct, ok := loadCart(c, sess)
	if !ok {
		return
	}
	if err := ct.SetQuantity(id, *req.Quantity); err != nil {
		if errors.Is(err, cart.ErrItemNotInCart) {
			respondError(c, http.StatusNotFound, "item not in cart")
			return
		}
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !saveCart(c, sess, ct) {
		return
	}
	c.JSON(http.StatusOK, ct.View())
}

// DELETE /api/cart/items/:menuItemId
func RemoveCartItem(c *gin.Context) {
	id, ok := parseID(c, "menuItemId")
	if !ok {
		return
	}

	sess := sessions.Default(c)
	ct, ok := loadCart(c, sess)
	if !ok {
		return
	}
	if _, found := ct.Line(id); !found {
		respondError(c, http.StatusNotFound, "item not in cart")
		return
	}
	ct.Remove(id)
	if !saveCart(c, sess, ct) {
		return
	}
	c.JSON(http.StatusOK, ct.View())
}

// DELETE /api/cart
func ClearCart(c *gin.Context) {
	sess := sessions.Default(c)
	ct, ok := loadCart(c, sess)
	if !ok {
		return
	}
	ct.Clear()
	if !saveCart(c, sess, ct) {
		return
	}
	c.JSON(http.StatusOK, ct.View())
}

// POST /api/cart/checkout
// Turns the session cart into an order for the signed-in customer. Prices
// are re-read from the menu so a stale cart never sets the charge.
func Checkout(c *gin.Context) {
	customer := auth.CurrentCustomer(c)
	if customer == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	sess := sessions.Default(c)
	ct, ok := loadCart(c, sess)
	if !ok {
		return
	}
	if ct.IsEmpty() {
		respondError(c, http.StatusBadRequest, cart.ErrEmptyCart.Error())
		return
	}

	lines := make([]OrderLine, 0, len(ct.Lines))
	for _, l := range ct.Lines {
		lines = append(lines, OrderLine{MenuItemID: l.MenuItemID, Quantity: uint(l.Quantity)})
	}

	address := req.DeliveryAddress
	if address == "" {
		address = customer.Address
	}

	customerID := customer.ID
	order, err := placeOrder(&customerID, address, req.Notes, lines)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	// The order is committed; a cart that fails to clear must not turn
	// into an error the client would retry.
	ct.Clear()
	if err := cart.Save(sess, db.DB, ct); err != nil {
		logger.L().Error("clear cart after checkout failed",
			zap.Uint("orderId", order.ID), zap.Error(err))
	}

	notifyOrderPlaced(*customer, order)
	metrics.OrderPlaced("checkout")
	emit(c.Request.Context(), events.OrderCreated, order)

	c.JSON(http.StatusCreated, gin.H{"message": "order created successfully", "order": order})
}
