package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryme0/vyb-q-admin/internal/handlers"
	"github.com/pryme0/vyb-q-admin/internal/models"
)

func TestCustomerHandlers(t *testing.T) {
	env := setupTestRouter(t)
	cashier := env.staff(t, models.RoleCashier)
	manager := env.staff(t, models.RoleManager)

	w := cashier.do(http.MethodPost, "/api/customers", handlers.CustomerRequest{Name: "Halima", Email: "Halima@Example.com", Phone: "+254700000007"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	halima := decode[models.Customer](t, w)
	assert.Equal(t, "halima@example.com", halima.Email)

	t.Run("Emails are unique regardless of case", func(t *testing.T) {
		w := cashier.do(http.MethodPost, "/api/customers", handlers.CustomerRequest{Name: "Other", Email: "HALIMA@example.com", Phone: "1"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Search covers name, email and phone", func(t *testing.T) {
		for _, q := range []string{"hali", "example.com", "0007"} {
			res := decode[page[models.Customer]](t, cashier.do(http.MethodGet, "/api/customers?search="+q, nil))
			assert.Equal(t, int64(1), res.Total, q)
		}
	})

	t.Run("Updating requires a manager", func(t *testing.T) {
		path := fmt.Sprintf("/api/customers/%d", halima.ID)
		req := handlers.CustomerRequest{Name: "Halima A.", Email: "halima@example.com", Phone: "+254700000007", Address: "Westlands"}
		assert.Equal(t, http.StatusForbidden, cashier.do(http.MethodPut, path, req).Code)

		w := manager.do(http.MethodPut, path, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Westlands", decode[models.Customer](t, w).Address)
	})

	t.Run("Deleting keeps the order history", func(t *testing.T) {
		order := models.Order{CustomerID: &halima.ID, Status: models.OrderCompleted, Subtotal: 5, Total: 5}
		require.NoError(t, env.db.Create(&order).Error)

		w := manager.do(http.MethodDelete, fmt.Sprintf("/api/customers/%d", halima.ID), nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		var stored models.Order
		require.NoError(t, env.db.First(&stored, order.ID).Error)
		assert.Nil(t, stored.CustomerID)
	})
}
