package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryme0/vyb-q-admin/internal/events"
	"github.com/pryme0/vyb-q-admin/internal/handlers"
	"github.com/pryme0/vyb-q-admin/internal/models"
)

func TestCreateOrderHandler(t *testing.T) {
	env := setupTestRouter(t)
	cashier := env.staff(t, models.RoleCashier)
	_, items := seedMenu(t, env.db)

	customer := models.Customer{Name: "Otieno", Email: "otieno@example.com", Phone: "+254700000002"}
	require.NoError(t, env.db.Create(&customer).Error)

	t.Run("Creates an order and merges repeated lines", func(t *testing.T) {
		w := cashier.do(http.MethodPost, "/api/orders", handlers.CreateOrderRequest{
			CustomerID: &customer.ID,
			Items: []handlers.OrderLine{
				{MenuItemID: items[0].ID, Quantity: 1},
				{MenuItemID: items[1].ID, Quantity: 2},
				{MenuItemID: items[0].ID, Quantity: 1},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		order := decode[placedOrder](t, w).Order
		require.Len(t, order.Items, 2)
		assert.Equal(t, uint(2), order.Items[0].Quantity)
		assert.Equal(t, 32.0, order.Subtotal)
		assert.Equal(t, 32.0, order.Total)
		assert.Equal(t, 0.0, order.DiscountTotal)
		require.NotNil(t, order.Customer)
		assert.Equal(t, "Otieno", order.Customer.Name)

		assert.Equal(t, []string{events.OrderCreated}, env.published.types())
		require.Eventually(t, func() bool { return env.notified.smsCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("Walk-in orders need no customer", func(t *testing.T) {
		w := cashier.do(http.MethodPost, "/api/orders", handlers.CreateOrderRequest{
			Items: []handlers.OrderLine{{MenuItemID: items[1].ID, Quantity: 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Nil(t, decode[placedOrder](t, w).Order.CustomerID)
	})

	t.Run("Rejects an empty item list", func(t *testing.T) {
		w := cashier.do(http.MethodPost, "/api/orders", handlers.CreateOrderRequest{Items: []handlers.OrderLine{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown menu item is 404 and nothing is stored", func(t *testing.T) {
		var before int64
		env.db.Model(&models.Order{}).Count(&before)

		w := cashier.do(http.MethodPost, "/api/orders", handlers.CreateOrderRequest{
			Items: []handlers.OrderLine{{MenuItemID: items[0].ID, Quantity: 1}, {MenuItemID: 999, Quantity: 1}},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)

		var after int64
		env.db.Model(&models.Order{}).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("Unavailable menu item is 409", func(t *testing.T) {
		w := cashier.do(http.MethodPost, "/api/orders", handlers.CreateOrderRequest{
			Items: []handlers.OrderLine{{MenuItemID: items[2].ID, Quantity: 1}},
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Unknown customer is 404", func(t *testing.T) {
		missing := uint(999)
		w := cashier.do(http.MethodPost, "/api/orders", handlers.CreateOrderRequest{
			CustomerID: &missing,
			Items:      []handlers.OrderLine{{MenuItemID: items[0].ID, Quantity: 1}},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "customer not found", errorMessage(t, w))
	})

	t.Run("Requires a staff token", func(t *testing.T) {
		w := env.guest().do(http.MethodPost, "/api/orders", handlers.CreateOrderRequest{
			Items: []handlers.OrderLine{{MenuItemID: items[0].ID, Quantity: 1}},
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOrderStatusAndDelete(t *testing.T) {
	env := setupTestRouter(t)
	cashier := env.staff(t, models.RoleCashier)
	_, items := seedMenu(t, env.db)

	customer := models.Customer{Name: "Achieng", Email: "achieng@example.com", Phone: "+254700000003"}
	require.NoError(t, env.db.Create(&customer).Error)

	w := cashier.do(http.MethodPost, "/api/orders", handlers.CreateOrderRequest{
		CustomerID: &customer.ID,
		Items:      []handlers.OrderLine{{MenuItemID: items[0].ID, Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[placedOrder](t, w).Order
	require.Eventually(t, func() bool { return env.notified.smsCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	statusPath := fmt.Sprintf("/api/orders/%d/status", order.ID)

	t.Run("Rejects an unknown status", func(t *testing.T) {
		w := cashier.do(http.MethodPatch, statusPath, handlers.OrderStatusRequest{Status: "eaten"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Moves the order along and tells the customer", func(t *testing.T) {
		w := cashier.do(http.MethodPatch, statusPath, handlers.OrderStatusRequest{Status: models.OrderOutForDelivery})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.OrderOutForDelivery, decode[models.Order](t, w).Status)

		assert.Contains(t, env.published.types(), events.OrderStatusChanged)
		require.Eventually(t, func() bool { return env.notified.smsCount() == 2 }, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("Setting the same status again is a no-op", func(t *testing.T) {
		before := len(env.published.types())
		w := cashier.do(http.MethodPatch, statusPath, handlers.OrderStatusRequest{Status: models.OrderOutForDelivery})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, env.published.types(), before)
	})

	t.Run("Lists by status", func(t *testing.T) {
		res := decode[page[models.Order]](t, cashier.do(http.MethodGet, "/api/orders?status=out-for-delivery", nil))
		require.Equal(t, int64(1), res.Total)
		assert.Len(t, res.Data[0].Items, 1)

		res = decode[page[models.Order]](t, cashier.do(http.MethodGet, "/api/orders?status=pending", nil))
		assert.Equal(t, int64(0), res.Total)
	})

	t.Run("Updates delivery details", func(t *testing.T) {
		w := cashier.do(http.MethodPut, fmt.Sprintf("/api/orders/%d", order.ID), handlers.UpdateOrderRequest{DeliveryAddress: "Kilimani", Notes: "gate B"})
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[models.Order](t, w)
		assert.Equal(t, "Kilimani", got.DeliveryAddress)
		assert.Equal(t, 10.0, got.Total)
	})

	t.Run("Only managers delete", func(t *testing.T) {
		path := fmt.Sprintf("/api/orders/%d", order.ID)
		assert.Equal(t, http.StatusForbidden, cashier.do(http.MethodDelete, path, nil).Code)

		w := env.staff(t, models.RoleManager).do(http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, env.published.types(), events.OrderDeleted)

		var items int64
		env.db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items)
		assert.Equal(t, int64(0), items)
		assert.Equal(t, http.StatusNotFound, cashier.do(http.MethodGet, path, nil).Code)
	})
}
