package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/models"
)

func setupCustomerDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(&models.Customer{}))

	originalDB := db.DB
	db.SetTestDB(testDB)
	t.Cleanup(func() {
		db.SetTestDB(originalDB)
	})
	return testDB
}

func TestUpsertCustomer(t *testing.T) {
	testDB := setupCustomerDB(t)

	victim := models.Customer{Name: "Victim", Email: "victim@example.com", Phone: "+254700000010"}
	require.NoError(t, testDB.Create(&victim).Error)

	t.Run("Logins without an email get separate accounts", func(t *testing.T) {
		first, err := upsertCustomer(idClaims{Sub: "sub-no-email-1", Name: "First"})
		require.NoError(t, err)
		second, err := upsertCustomer(idClaims{Sub: "sub-no-email-2", Name: "Second"})
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Empty(t, first.Email)
		assert.Empty(t, second.Email)
	})

	t.Run("An unverified email never adopts an existing customer", func(t *testing.T) {
		cust, err := upsertCustomer(idClaims{Sub: "attacker", Name: "Mallory", Email: "victim@example.com"})
		require.NoError(t, err)
		assert.NotEqual(t, victim.ID, cust.ID)
		assert.Empty(t, cust.Email)

		var reloaded models.Customer
		require.NoError(t, testDB.First(&reloaded, victim.ID).Error)
		assert.Nil(t, reloaded.OIDCID)
	})

	t.Run("A verified email links the staff-created customer", func(t *testing.T) {
		cust, err := upsertCustomer(idClaims{Sub: "victim-sub", Name: "Victim", Email: " Victim@Example.COM ", EmailVerified: true})
		require.NoError(t, err)
		assert.Equal(t, victim.ID, cust.ID)
		require.NotNil(t, cust.OIDCID)
		assert.Equal(t, "victim-sub", *cust.OIDCID)
	})

	t.Run("A second identity cannot take over a linked customer", func(t *testing.T) {
		cust, err := upsertCustomer(idClaims{Sub: "other-sub", Name: "Other", Email: "victim@example.com", EmailVerified: true})
		require.NoError(t, err)
		assert.NotEqual(t, victim.ID, cust.ID)
		assert.Empty(t, cust.Email)
	})

	t.Run("Returning identities resolve by subject", func(t *testing.T) {
		cust, err := upsertCustomer(idClaims{Sub: "victim-sub"})
		require.NoError(t, err)
		assert.Equal(t, victim.ID, cust.ID)
	})

	t.Run("A new verified email is stored lower-cased", func(t *testing.T) {
		cust, err := upsertCustomer(idClaims{Sub: "new-sub", Name: "Akinyi", Email: "Akinyi@Example.com", EmailVerified: true})
		require.NoError(t, err)
		assert.Equal(t, "akinyi@example.com", cust.Email)
	})
}
