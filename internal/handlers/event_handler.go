package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pryme0/vyb-q-admin/internal/auth"
	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/utils"
)

type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	EndsAt      time.Time `json:"endsAt" binding:"required"`
	Capacity    int       `json:"capacity" binding:"gte=0"`
	ImageURL    string    `json:"imageUrl"`
	IsPublished bool      `json:"isPublished"`
}

// GET /api/events
// Guests see published events; staff tokens also see drafts. ?upcoming=true
// hides events that have already ended.
func ListEvents(c *gin.Context) {
	q := db.DB.Model(&models.Event{})
	if auth.CurrentStaff(c) == nil {
		q = q.Where("is_published = ?", true)
	}
	if upcoming, _ := strconv.ParseBool(c.Query("upcoming")); upcoming {
		q = q.Where("ends_at >= ?", now().UTC())
	}

	res, err := utils.Paginate[models.Event](q, utils.ParsePage(c), utils.OrderBy("starts_at, id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/events/:id
func GetEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var e models.Event
	if err := db.DB.First(&e, id).Error; err != nil {
		respondDBError(c, err, "event")
		return
	}
	if !e.IsPublished && auth.CurrentStaff(c) == nil {
		respondError(c, http.StatusNotFound, "event not found")
		return
	}
	c.JSON(http.StatusOK, e)
}

func (r EventRequest) apply(e *models.Event) {
	e.Title = r.Title
	e.Description = r.Description
	e.Location = r.Location
	e.StartsAt = r.StartsAt.UTC()
	e.EndsAt = r.EndsAt.UTC()
	e.Capacity = r.Capacity
	e.ImageURL = r.ImageURL
	e.IsPublished = r.IsPublished
}

func bindEvent(c *gin.Context) (EventRequest, bool) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return req, false
	}
	if !req.EndsAt.After(req.StartsAt) {
		respondError(c, http.StatusBadRequest, "endsAt must be after startsAt")
		return req, false
	}
	return req, true
}

// POST /api/events
func CreateEvent(c *gin.Context) {
	req, ok := bindEvent(c)
	if !ok {
		return
	}

	var e models.Event
	req.apply(&e)
	if err := db.DB.Create(&e).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, e)
}

// PUT /api/events/:id
func UpdateEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, ok := bindEvent(c)
	if !ok {
		return
	}

	var e models.Event
	if err := db.DB.First(&e, id).Error; err != nil {
		respondDBError(c, err, "event")
		return
	}
	req.apply(&e)
	if err := db.DB.Select("Title", "Description", "Location", "StartsAt", "EndsAt", "Capacity", "ImageURL", "IsPublished").Save(&e).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, e)
}

// DELETE /api/events/:id
func DeleteEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var e models.Event
	if err := db.DB.First(&e, id).Error; err != nil {
		respondDBError(c, err, "event")
		return
	}
	if err := db.DB.Delete(&e).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
