package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/models"
	"github.com/pryme0/vyb-q-admin/internal/utils"
)

type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address"`
}

// GET /api/customers
func ListCustomers(c *gin.Context) {
	q := db.DB.Model(&models.Customer{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, "%"+search+"%")
	}

	res, err := utils.Paginate[models.Customer](q, utils.ParsePage(c), utils.OrderBy("name"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/customers/:id
func GetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := db.DB.First(&customer, id).Error; err != nil {
		respondDBError(c, err, "customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// POST /api/customers
// Staff may register a phone-in customer; the record links to their OIDC
// identity on first sign-in with the same email.
func CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(req.Email)
	var count int64
	if err := db.DB.Model(&models.Customer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "a customer with this email already exists")
		return
	}

	customer := models.Customer{Name: req.Name, Email: email, Phone: req.Phone, Address: req.Address}
	if err := db.DB.Create(&customer).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// PUT /api/customers/:id
func UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var customer models.Customer
	if err := db.DB.First(&customer, id).Error; err != nil {
		respondDBError(c, err, "customer")
		return
	}

	email := strings.ToLower(req.Email)
	var count int64
	if err := db.DB.Model(&models.Customer{}).Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "a customer with this email already exists")
		return
	}

	customer.Name = req.Name
	customer.Email = email
	customer.Phone = req.Phone
	customer.Address = req.Address
	if err := db.DB.Select("Name", "Email", "Phone", "Address").Save(&customer).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DELETE /api/customers/:id
// Past orders and reservations keep their rows with the customer link cleared.
func DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := db.DB.First(&customer, id).Error; err != nil {
		respondDBError(c, err, "customer")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("customer_id = ?", id).Update("customer_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Reservation{}).Where("customer_id = ?", id).Update("customer_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&customer).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
