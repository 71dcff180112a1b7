package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pryme0/vyb-q-admin/internal/auth"
	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/events"
	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/notifier"
	"github.com/pryme0/vyb-q-admin/internal/utils"
)

type ReservationRequest struct {
	Name       string    `json:"name" binding:"required"`
	Email      string    `json:"email" binding:"omitempty,email"`
	Phone      string    `json:"phone" binding:"required"`
	PartySize  int       `json:"partySize" binding:"required,min=1,max=50"`
	ReservedAt time.Time `json:"reservedAt" binding:"required"`
	Notes      string    `json:"notes"`
}

type ReservationStatusRequest struct {
	Status models.ReservationStatus `json:"status" binding:"required"`
}

// GET /api/reservations
// Filters: status, date (YYYY-MM-DD, UTC day).
func ListReservations(c *gin.Context) {
	q := db.DB.Model(&models.Reservation{})

	if status := models.ReservationStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			respondError(c, http.StatusBadRequest, "invalid status")
			return
		}
		q = q.Where("status = ?", status)
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid date")
			return
		}
		q = q.Where("reserved_at >= ? AND reserved_at < ?", day, day.Add(24*time.Hour))
	}

	res, err := utils.Paginate[models.Reservation](q, utils.ParsePage(c), utils.OrderBy("reserved_at, id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/reservations/:id
func GetReservation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var r models.Reservation
	if err := db.DB.First(&r, id).Error; err != nil {
		respondDBError(c, err, "reservation")
		return
	}
	c.JSON(http.StatusOK, r)
}

// POST /api/reservations
// Open to guests; a signed-in customer's id is attached.
func CreateReservation(c *gin.Context) {
	var req ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.ReservedAt.After(now()) {
		respondError(c, http.StatusBadRequest, "reservedAt must be in the future")
		return
	}

	r := models.Reservation{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		PartySize:  req.PartySize,
		ReservedAt: req.ReservedAt.UTC(),
		Status:     models.ReservationPending,
		Notes:      req.Notes,
	}
	if id := auth.SessionCustomerID(c); id != 0 {
		r.CustomerID = &id
	}

	if err := db.DB.Create(&r).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	emit(c.Request.Context(), events.ReservationCreated, r)
	c.JSON(http.StatusCreated, r)
}

// PUT /api/reservations/:id
// Status is changed through PATCH /:id/status only.
func UpdateReservation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var r models.Reservation
	if err := db.DB.First(&r, id).Error; err != nil {
		respondDBError(c, err, "reservation")
		return
	}

	r.Name = req.Name
	r.Email = req.Email
	r.Phone = req.Phone
	r.PartySize = req.PartySize
	r.ReservedAt = req.ReservedAt.UTC()
	r.Notes = req.Notes
	if err := db.DB.Select("Name", "Email", "Phone", "PartySize", "ReservedAt", "Notes").Save(&r).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, r)
}

// PATCH /api/reservations/:id/status
// Guests are texted when their table is confirmed or cancelled.
func UpdateReservationStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReservationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.Valid() {
		respondError(c, http.StatusBadRequest, "invalid status")
		return
	}

	var r models.Reservation
	if err := db.DB.First(&r, id).Error; err != nil {
		respondDBError(c, err, "reservation")
		return
	}

	previous := r.Status
	if previous == req.Status {
		c.JSON(http.StatusOK, r)
		return
	}
	if err := db.DB.Model(&r).Update("status", req.Status).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	r.Status = req.Status

	if r.Status != models.ReservationPending && r.Phone != "" {
		snapshot := r
		background("reservation sms", func(ctx context.Context) error {
			return notify.SendSMS(ctx, snapshot.Phone, notifier.ReservationSMS(snapshot))
		})
	}
	emit(c.Request.Context(), events.ReservationStatusChanged, gin.H{"reservationId": r.ID, "from": previous, "to": r.Status})

	c.JSON(http.StatusOK, r)
}

// DELETE /api/reservations/:id
func DeleteReservation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var r models.Reservation
	if err := db.DB.First(&r, id).Error; err != nil {
		respondDBError(c, err, "reservation")
		return
	}
	if err := db.DB.Delete(&r).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
