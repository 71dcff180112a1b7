package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/utils"
)

type WaitressRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	IsActive *bool  `json:"isActive"`
}

// GET /api/waitresses
func ListWaitresses(c *gin.Context) {
	q := db.DB.Model(&models.Waitress{})
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid active")
			return
		}
		q = q.Where("is_active = ?", active)
	}

	res, err := utils.Paginate[models.Waitress](q, utils.ParsePage(c), utils.OrderBy("name"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/waitresses/:id
func GetWaitress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var w models.Waitress
	if err := db.DB.First(&w, id).Error; err != nil {
		respondDBError(c, err, "waitress")
		return
	}
	c.JSON(http.StatusOK, w)
}

// POST /api/waitresses
func CreateWaitress(c *gin.Context) {
	var req WaitressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	active := req.IsActive == nil || *req.IsActive
	w := models.Waitress{Name: req.Name, Email: strings.ToLower(req.Email), Phone: req.Phone, IsActive: active}
	if err := db.DB.Create(&w).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !active {
		if err := db.DB.Model(&w).Update("is_active", false).Error; err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		w.IsActive = false
	}
	c.JSON(http.StatusCreated, w)
}

// PUT /api/waitresses/:id
func UpdateWaitress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req WaitressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var w models.Waitress
	if err := db.DB.First(&w, id).Error; err != nil {
		respondDBError(c, err, "waitress")
		return
	}

	w.Name = req.Name
	w.Email = strings.ToLower(req.Email)
	w.Phone = req.Phone
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	if err := db.DB.Select("Name", "Email", "Phone", "IsActive").Save(&w).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, w)
}

// DELETE /api/waitresses/:id
// Refused once the waitress has taken any order; deactivate them instead so
// their table orders keep their owner.
func DeleteWaitress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var w models.Waitress
	if err := db.DB.First(&w, id).Error; err != nil {
		respondDBError(c, err, "waitress")
		return
	}

	var open, total int64
	if err := db.DB.Model(&models.WaitressOrder{}).
		Where("waitress_id = ? AND status = ?", id, models.WaitressOrderOpen).
		Count(&open).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if open > 0 {
		respondError(c, http.StatusConflict, "waitress has open orders")
		return
	}
	if err := db.DB.Model(&models.WaitressOrder{}).Where("waitress_id = ?", id).Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if total > 0 {
		respondError(c, http.StatusConflict, "waitress has order history; deactivate instead")
		return
	}

	if err := db.DB.Delete(&w).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
