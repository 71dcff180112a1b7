package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/utils"
)

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parentId"`
}

// GET /api/categories
// ?parentId=<id> lists direct children, ?root=true lists top-level categories.
func ListCategories(c *gin.Context) {
	q := db.DB.Model(&models.Category{})

	parentID, ok, err := queryUint(c, "parentId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	switch {
	case ok:
		q = q.Where("parent_id = ?", parentID)
	case c.Query("root") == "true":
		q = q.Where("parent_id IS NULL")
	}

	res, err := utils.Paginate[models.Category](q, utils.ParsePage(c), utils.OrderBy("name"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/categories/:id
func GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var category models.Category
	if err := db.DB.Preload("Parent").Preload("Children").First(&category, id).Error; err != nil {
		respondDBError(c, err, "category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// POST /api/categories
func CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.ParentID != nil {
		var parentCategory models.Category
		if err := db.DB.First(&parentCategory, *req.ParentID).Error; err != nil {
			respondError(c, http.StatusNotFound, fmt.Sprintf("Parent category not found with ID: %d", *req.ParentID))
			return
		}
	}

	category := models.Category{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	}

	if err := db.DB.Create(&category).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := db.DB.Preload("Parent").First(&category, category.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to retrieve category with parent details")
		return
	}

	c.JSON(http.StatusCreated, category)
}

// PUT /api/categories/:id
func UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		respondDBError(c, err, "category")
		return
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			respondError(c, http.StatusBadRequest, "a category cannot be its own parent")
			return
		}
		var parentCategory models.Category
		if err := db.DB.First(&parentCategory, *req.ParentID).Error; err != nil {
			respondError(c, http.StatusNotFound, fmt.Sprintf("Parent category not found with ID: %d", *req.ParentID))
			return
		}
		cycle, err := utils.IsDescendant(db.DB, id, *req.ParentID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if cycle {
			respondError(c, http.StatusBadRequest, "parent cannot be a subcategory of this category")
			return
		}
	}

	category.Name = req.Name
	category.Description = req.Description
	category.ParentID = req.ParentID
	if err := db.DB.Select("Name", "Description", "ParentID").Save(&category).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := db.DB.Preload("Parent").First(&category, id).Error; err != nil {
		respondDBError(c, err, "category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DELETE /api/categories/:id
// Refused while menu items or subcategories still point at the category.
func DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		respondDBError(c, err, "category")
		return
	}

	var items, children int64
	if err := db.DB.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := db.DB.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if items > 0 || children > 0 {
		respondError(c, http.StatusConflict, "category still has menu items or subcategories")
		return
	}

	if err := db.DB.Delete(&category).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
