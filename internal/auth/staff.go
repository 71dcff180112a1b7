package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/models"
)

var (
	staffSecret   []byte
	staffTokenTTL = 12 * time.Hour
)

var ErrInvalidToken = errors.New("invalid staff token")

const staffKey = "staff"

type StaffClaims struct {
	UserID uint        `json:"uid"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	jwt.StandardClaims
}

func InitStaff(secret string, ttl time.Duration) {
	staffSecret = []byte(secret)
	if ttl > 0 {
		staffTokenTTL = ttl
	}
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func IssueStaffToken(u models.User) (string, time.Time, error) {
	expires := time.Now().Add(staffTokenTTL)
	claims := StaffClaims{
		UserID: u.ID,
		Name:   u.Name,
		Role:   u.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   u.Email,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: expires.Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(staffSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign staff token: %w", err)
	}
	return signed, expires, nil
}

func ParseStaffToken(raw string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return staffSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type StaffLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/staff/login
func StaffLogin(c *gin.Context) {
	var req StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		return
	}

	token, expires, err := IssueStaffToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": expires, "user": user})
}

// bearerToken reads the staff token from the Authorization header, or from
// ?token= for websocket clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if raw := strings.TrimPrefix(header, "Bearer "); raw != header {
			return raw
		}
		return ""
	}
	return c.Query("token")
}

// RequireStaff admits requests carrying a valid staff bearer token. With
// roles given, the token's role must be one of them.
func RequireStaff(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authorization header required"})
			return
		}

		claims, err := ParseStaffToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
			return
		}

		c.Set(staffKey, claims)
		c.Next()
	}
}

// OptionalStaff records staff claims when a valid token is present and lets
// every request through.
func OptionalStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearerToken(c); raw != "" {
			if claims, err := ParseStaffToken(raw); err == nil {
				c.Set(staffKey, claims)
			}
		}
		c.Next()
	}
}

func CurrentStaff(c *gin.Context) *StaffClaims {
	v, ok := c.Get(staffKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*StaffClaims)
	return claims
}

func hasRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// EnsureAdmin creates the bootstrap admin account when no user with that
// email exists yet.
func EnsureAdmin(d *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	email = strings.ToLower(email)

	var existing models.User
	err := d.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{Name: "Administrator", Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := d.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
