package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pryme0/vyb-q-admin/internal/auth"
	"github.com/pryme0/vyb-q-admin/internal/events"
	"github.com/pryme0/vyb-q-admin/internal/handlers"
	"github.com/pryme0/vyb-q-admin/internal/models"
)

type Options struct {
	// Hub serves the live order feed at /ws/orders when set.
	Hub *events.Hub
	// UploadDir is served under /uploads when set.
	UploadDir string
}

// Register mounts every API route on r. Session middleware must already be
// installed.
func Register(r *gin.Engine, opts Options) {
	staff := auth.RequireStaff()
	managers := auth.RequireStaff(models.RoleAdmin, models.RoleManager)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}
	if opts.Hub != nil {
		r.GET("/ws/orders", staff, opts.Hub.ServeWS)
	}

	// ── auth ──
	r.GET("/auth/login", auth.Login)
	r.GET("/auth/callback", auth.Callback)
	r.GET("/auth/logout", auth.Logout)
	r.GET("/auth/me", auth.RequireAuth(), auth.Me)
	r.POST("/auth/staff/login", auth.StaffLogin)

	api := r.Group("/api")

	// ── storefront ──
	api.GET("/categories", handlers.ListCategories)
	api.GET("/categories/:id", handlers.GetCategory)
	api.GET("/menu-items", handlers.ListMenuItems)
	api.GET("/menu-items/average-price", handlers.GetAveragePrice)
	api.GET("/menu-items/:id", handlers.GetMenuItem)
	api.GET("/discounts/menu-item/:id/best", handlers.BestMenuItemDiscount)
	api.GET("/events", auth.OptionalStaff(), handlers.ListEvents)
	api.GET("/events/:id", auth.OptionalStaff(), handlers.GetEvent)
	api.POST("/reservations", handlers.CreateReservation)

	cartGroup := api.Group("/cart")
	{
		cartGroup.GET("", handlers.GetCart)
		cartGroup.DELETE("", handlers.ClearCart)
		cartGroup.POST("/items", handlers.AddCartItem)
		cartGroup.PUT("/items/:menuItemId", handlers.UpdateCartItem)
		cartGroup.DELETE("/items/:menuItemId", handlers.RemoveCartItem)
		cartGroup.POST("/checkout", auth.RequireAuth(), handlers.Checkout)
	}

	// ── floor staff ──
	{
		api.GET("/orders", staff, handlers.ListOrders)
		api.GET("/orders/:id", staff, handlers.GetOrder)
		api.POST("/orders", staff, handlers.CreateOrder)
		api.PUT("/orders/:id", staff, handlers.UpdateOrder)
		api.PATCH("/orders/:id/status", staff, handlers.UpdateOrderStatus)

		api.GET("/reservations", staff, handlers.ListReservations)
		api.GET("/reservations/:id", staff, handlers.GetReservation)
		api.PUT("/reservations/:id", staff, handlers.UpdateReservation)
		api.PATCH("/reservations/:id/status", staff, handlers.UpdateReservationStatus)

		api.GET("/customers", staff, handlers.ListCustomers)
		api.GET("/customers/:id", staff, handlers.GetCustomer)
		api.POST("/customers", staff, handlers.CreateCustomer)

		api.GET("/inventory", staff, handlers.ListInventory)
		api.GET("/inventory/low-stock", staff, handlers.ListLowStock)
		api.GET("/inventory/:id", staff, handlers.GetInventoryItem)
		api.PATCH("/inventory/:id/adjust", staff, handlers.AdjustInventory)

		api.GET("/discounts", staff, handlers.ListDiscounts)
		api.GET("/discounts/menu-item/:id", staff, handlers.ListMenuItemDiscounts)
		api.GET("/discounts/:id", staff, handlers.GetDiscount)

		api.GET("/waitresses", staff, handlers.ListWaitresses)
		api.GET("/waitresses/:id", staff, handlers.GetWaitress)

		api.GET("/waitress-orders", staff, handlers.ListWaitressOrders)
		api.GET("/waitress-orders/:id", staff, handlers.GetWaitressOrder)
		api.POST("/waitress-orders", staff, handlers.CreateWaitressOrder)
		api.DELETE("/waitress-orders/:id", staff, handlers.DeleteWaitressOrder)
		api.POST("/waitress-orders/:id/items", staff, handlers.AddWaitressOrderItem)
		api.PUT("/waitress-orders/:id/items/:itemId", staff, handlers.UpdateWaitressOrderItem)
		api.DELETE("/waitress-orders/:id/items/:itemId", staff, handlers.RemoveWaitressOrderItem)
		api.POST("/waitress-orders/:id/close", staff, handlers.CloseWaitressOrder)
	}

	// ── management ──
	{
		api.POST("/categories", managers, handlers.CreateCategory)
		api.PUT("/categories/:id", managers, handlers.UpdateCategory)
		api.DELETE("/categories/:id", managers, handlers.DeleteCategory)

		api.POST("/menu-items", managers, handlers.CreateMenuItem)
		api.PUT("/menu-items/:id", managers, handlers.UpdateMenuItem)
		api.DELETE("/menu-items/:id", managers, handlers.DeleteMenuItem)
		api.POST("/menu-items/:id/image", managers, handlers.UploadMenuItemImage)

		api.DELETE("/orders/:id", managers, handlers.DeleteOrder)
		api.DELETE("/reservations/:id", managers, handlers.DeleteReservation)

		api.PUT("/customers/:id", managers, handlers.UpdateCustomer)
		api.DELETE("/customers/:id", managers, handlers.DeleteCustomer)

		api.POST("/inventory", managers, handlers.CreateInventoryItem)
		api.PUT("/inventory/:id", managers, handlers.UpdateInventoryItem)
		api.DELETE("/inventory/:id", managers, handlers.DeleteInventoryItem)

		api.POST("/discounts", managers, handlers.CreateDiscount)
		api.PUT("/discounts/:id", managers, handlers.UpdateDiscount)
		api.DELETE("/discounts/:id", managers, handlers.DeleteDiscount)

		api.POST("/events", managers, handlers.CreateEvent)
		api.PUT("/events/:id", managers, handlers.UpdateEvent)
		api.DELETE("/events/:id", managers, handlers.DeleteEvent)

		api.POST("/waitresses", managers, handlers.CreateWaitress)
		api.PUT("/waitresses/:id", managers, handlers.UpdateWaitress)
		api.DELETE("/waitresses/:id", managers, handlers.DeleteWaitress)

		api.POST("/reports/generate", managers, handlers.GenerateReport)
	}
}
