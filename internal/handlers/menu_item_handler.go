package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/utils"
)

const maxImageSize = 5 << 20

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type MenuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	CategoryID  uint    `json:"categoryId" binding:"required"`
	ImageURL    string  `json:"imageUrl"`
	IsAvailable *bool   `json:"isAvailable"`
}

// GET /api/menu-items
// Filters: categoryId (includes subcategories), available, search.
func ListMenuItems(c *gin.Context) {
	q := db.DB.Model(&models.MenuItem{})

	categoryID, ok, err := queryUint(c, "categoryId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if ok {
		categoryIDs, err := utils.GetAllCategoryIDs(db.DB, categoryID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		q = q.Where("category_id IN ?", categoryIDs)
	}

	if raw := c.Query("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid available")
			return
		}
		q = q.Where("is_available = ?", available)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	res, err := utils.Paginate[models.MenuItem](q, utils.ParsePage(c), utils.Preload("Category"), utils.OrderBy("name"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/menu-items/:id
func GetMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var item models.MenuItem
	if err := db.DB.Preload("Category").First(&item, id).Error; err != nil {
		respondDBError(c, err, "menu item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// POST /api/menu-items
func CreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var category models.Category
	if err := db.DB.First(&category, req.CategoryID).Error; err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("Category not found with ID: %d", req.CategoryID))
		return
	}

	available := req.IsAvailable == nil || *req.IsAvailable
	item := models.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		IsAvailable: available,
	}

	if err := db.DB.Create(&item).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	// gorm skips a false bool in favour of the column default on insert.
	if !available {
		if err := db.DB.Model(&item).Update("is_available", false).Error; err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if err := db.DB.Preload("Category").First(&item, item.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to retrieve menu item with category details")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// PUT /api/menu-items/:id
func UpdateMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var item models.MenuItem
	if err := db.DB.First(&item, id).Error; err != nil {
		respondDBError(c, err, "menu item")
		return
	}

	var category models.Category
	if err := db.DB.First(&category, req.CategoryID).Error; err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("Category not found with ID: %d", req.CategoryID))
		return
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price
	item.CategoryID = req.CategoryID
	if req.ImageURL != "" {
		item.ImageURL = req.ImageURL
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := db.DB.Select("Name", "Description", "Price", "CategoryID", "ImageURL", "IsAvailable").Save(&item).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := db.DB.Preload("Category").First(&item, id).Error; err != nil {
		respondDBError(c, err, "menu item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DELETE /api/menu-items/:id
func DeleteMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var item models.MenuItem
	if err := db.DB.First(&item, id).Error; err != nil {
		respondDBError(c, err, "menu item")
		return
	}

	// Order lines keep pointing at the dish they were sold as.
	var ordered, tabbed int64
	if err := db.DB.Model(&models.OrderItem{}).Where("menu_item_id = ?", item.ID).Count(&ordered).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := db.DB.Model(&models.WaitressOrderItem{}).Where("menu_item_id = ?", item.ID).Count(&tabbed).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if ordered > 0 || tabbed > 0 {
		respondError(c, http.StatusConflict, "menu item has order history; mark it unavailable instead")
		return
	}

	if err := db.DB.Exec("DELETE FROM discount_menu_items WHERE menu_item_id = ?", item.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := db.DB.Delete(&item).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/menu-items/:id/image
// Multipart upload, field "image". The stored file is served under /uploads.
func UploadMenuItemImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var item models.MenuItem
	if err := db.DB.First(&item, id).Error; err != nil {
		respondDBError(c, err, "menu item")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "image file is required")
		return
	}
	if file.Size > maxImageSize {
		respondError(c, http.StatusBadRequest, "image must be 5MB or smaller")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		respondError(c, http.StatusBadRequest, "unsupported image type")
		return
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to prepare upload directory")
		return
	}
	name := fmt.Sprintf("menu-%d-%s%s", item.ID, uuid.NewString(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, name)); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to store image")
		return
	}

	item.ImageURL = "/uploads/" + name
	if err := db.DB.Model(&item).Update("image_url", item.ImageURL).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, item)
}

// GET /api/menu-items/average-price?categoryId=<id>
// Average list price across a category and all its subcategories.
func GetAveragePrice(c *gin.Context) {
	categoryID, ok, err := queryUint(c, "categoryId")
	if err != nil || !ok {
		respondError(c, http.StatusBadRequest, "categoryId is required")
		return
	}

	categoryIDs, err := utils.GetAllCategoryIDs(db.DB, categoryID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var avg float64
	err = db.DB.
		Model(&models.MenuItem{}).
		Where("category_id IN ?", categoryIDs).
		Select("COALESCE(AVG(price), 0)").
		Scan(&avg).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"categoryId": categoryID, "averagePrice": avg})
}
