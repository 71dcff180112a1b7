package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/configs"
	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/logger"
	"github.com/pryme0/vyb-q-admin/internal/models"
)

var (
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
)

const (
	SessionName = "gosess"

	customerKey = "customer_id"
	stateKey    = "oidc_state"
)

// Init sets up customer sign-in through the configured OIDC issuer. Without
// an issuer the storefront still works anonymously and /auth/login answers
// 503.
func Init(ctx context.Context, cfg config.AuthConfig) error {
	if cfg.OIDCIssuer == "" {
		logger.L().Warn("OIDC issuer not configured, customer login disabled")
		return nil
	}

	var err error
	provider, err = oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return err
	}

	verifier = provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})

	oauth2Config = &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "phone"},
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────────────────────────────────────

// GET /auth/login
func Login(c *gin.Context) {
	if oauth2Config == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "customer login is not configured"})
		return
	}

	state := uuid.NewString()
	sess := sessions.Default(c)
	sess.Set(stateKey, state)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to start login"})
		return
	}

	c.Redirect(http.StatusFound, oauth2Config.AuthCodeURL(state))
}

// GET /auth/callback
func Callback(c *gin.Context) {
	if oauth2Config == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "customer login is not configured"})
		return
	}

	sess := sessions.Default(c)
	if want, _ := sess.Get(stateKey).(string); want == "" || want != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid login state"})
		return
	}
	sess.Delete(stateKey)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "code missing"})
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "token exchange failed"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no id_token in token response"})
		return
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "token verification failed"})
		return
	}

	var claims idClaims
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "claims parse error"})
		return
	}

	cust, err := upsertCustomer(claims)
	if err != nil {
		logger.L().Error("customer upsert failed", zap.String("sub", claims.Sub), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to store customer"})
		return
	}

	sess.Set(customerKey, cust.ID)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to save session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged in", "customer": cust})
}

// GET /auth/logout
func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Delete(customerKey)
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GET /auth/me
func Me(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentCustomer(c))
}

type idClaims struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Phone         string `json:"phone_number"`
}

// upsertCustomer finds or creates the customer behind an ID token. An
// existing staff-created customer is only adopted when the issuer vouches
// for the email and the row is not already tied to another identity.
// Unverified addresses are not stored at all.
func upsertCustomer(claims idClaims) (models.Customer, error) {
	var cust models.Customer
	err := db.DB.Where("oidc_id = ?", claims.Sub).First(&cust).Error
	if err == nil {
		return cust, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return cust, err
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if !claims.EmailVerified {
		email = ""
	}

	if email != "" {
		var owner models.Customer
		err := db.DB.Where("email = ?", email).First(&owner).Error
		switch {
		case err == nil && owner.OIDCID == nil:
			owner.OIDCID = &claims.Sub
			return owner, db.DB.Save(&owner).Error
		case err == nil:
			// Taken by another sign-in identity.
			email = ""
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return cust, err
		}
	}

	cust = models.Customer{
		OIDCID: &claims.Sub,
		Name:   claims.Name,
		Email:  email,
		Phone:  claims.Phone,
	}
	return cust, db.DB.Create(&cust).Error
}

// SessionCustomerID returns the signed-in customer's id, or 0.
func SessionCustomerID(c *gin.Context) uint {
	id, _ := sessions.Default(c).Get(customerKey).(uint)
	return id
}

// Middleware: ensures user is logged in and injects *models.Customer into context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		custID := SessionCustomerID(c)
		if custID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}

		var cust models.Customer
		if err := db.DB.First(&cust, custID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "user not found"})
			return
		}
		// put on context for handlers
		c.Set("customer", &cust)
		c.Next()
	}
}

// CurrentCustomer returns the customer injected by RequireAuth.
func CurrentCustomer(c *gin.Context) *models.Customer {
	v, ok := c.Get("customer")
	if !ok {
		return nil
	}
	cust, _ := v.(*models.Customer)
	return cust
}
