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

func TestCreateCategoryHandler(t *testing.T) {
	env := setupTestRouter(t)
	admin := env.staff(t, models.RoleAdmin)

	t.Run("Successfully creates a top-level category", func(t *testing.T) {
		recorder := admin.do(http.MethodPost, "/api/categories", handlers.CategoryRequest{Name: "Drinks"})
		assert.Equal(t, http.StatusCreated, recorder.Code)

		responseCategory := decode[models.Category](t, recorder)
		assert.Greater(t, responseCategory.ID, uint(0))
		assert.Equal(t, "Drinks", responseCategory.Name)
		assert.Nil(t, responseCategory.ParentID)
		assert.Nil(t, responseCategory.Parent)

		var storedCategory models.Category
		env.db.First(&storedCategory, responseCategory.ID)
		assert.Equal(t, "Drinks", storedCategory.Name)
	})

	t.Run("Successfully creates a sub-category with a valid parent", func(t *testing.T) {
		parentCategory := models.Category{Name: "Desserts"}
		env.db.Create(&parentCategory)

		recorder := admin.do(http.MethodPost, "/api/categories", handlers.CategoryRequest{Name: "Ice cream", ParentID: &parentCategory.ID})
		assert.Equal(t, http.StatusCreated, recorder.Code)

		responseCategory := decode[models.Category](t, recorder)
		require.NotNil(t, responseCategory.ParentID)
		assert.Equal(t, parentCategory.ID, *responseCategory.ParentID)
		require.NotNil(t, responseCategory.Parent)
		assert.Equal(t, "Desserts", responseCategory.Parent.Name)
	})

	t.Run("Returns 400 for invalid JSON request", func(t *testing.T) {
		recorder := admin.do(http.MethodPost, "/api/categories", map[string]interface{}{"parentId": 1})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, errorMessage(t, recorder), "Key: 'CategoryRequest.Name' Error:Field validation for 'Name' failed on the 'required' tag")
	})

	t.Run("Returns 404 if parent category not found", func(t *testing.T) {
		nonExistentParentID := uint(999)
		recorder := admin.do(http.MethodPost, "/api/categories", handlers.CategoryRequest{Name: "Orphan", ParentID: &nonExistentParentID})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, fmt.Sprintf("Parent category not found with ID: %d", nonExistentParentID), errorMessage(t, recorder))

		var count int64
		env.db.Model(&models.Category{}).Where("name = ?", "Orphan").Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Requires a manager token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, env.guest().do(http.MethodPost, "/api/categories", handlers.CategoryRequest{Name: "X"}).Code)
		assert.Equal(t, http.StatusForbidden, env.staff(t, models.RoleWaitress).do(http.MethodPost, "/api/categories", handlers.CategoryRequest{Name: "X"}).Code)
	})
}

func TestCategoryTreeRules(t *testing.T) {
	env := setupTestRouter(t)
	admin := env.staff(t, models.RoleManager)

	root := models.Category{Name: "Drinks"}
	require.NoError(t, env.db.Create(&root).Error)
	hot := models.Category{Name: "Hot drinks", ParentID: &root.ID}
	require.NoError(t, env.db.Create(&hot).Error)

	t.Run("Refuses to move a category under its own subcategory", func(t *testing.T) {
		w := admin.do(http.MethodPut, fmt.Sprintf("/api/categories/%d", root.ID), handlers.CategoryRequest{Name: "Drinks", ParentID: &hot.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Refuses to delete a category with children", func(t *testing.T) {
		w := admin.do(http.MethodDelete, fmt.Sprintf("/api/categories/%d", root.ID), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Lists top-level categories publicly", func(t *testing.T) {
		w := env.guest().do(http.MethodGet, "/api/categories?root=true", nil)
		require.Equal(t, http.StatusOK, w.Code)

		res := decode[page[models.Category]](t, w)
		assert.Equal(t, int64(1), res.Total)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, 20, res.Limit)
		assert.Equal(t, "Drinks", res.Data[0].Name)
	})

	t.Run("Gets a category with its children", func(t *testing.T) {
		w := env.guest().do(http.MethodGet, fmt.Sprintf("/api/categories/%d", root.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[models.Category](t, w)
		require.Len(t, got.Children, 1)
		assert.Equal(t, "Hot drinks", got.Children[0].Name)
	})

	t.Run("Deletes an empty leaf", func(t *testing.T) {
		w := admin.do(http.MethodDelete, fmt.Sprintf("/api/categories/%d", hot.ID), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
