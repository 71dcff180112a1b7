package db

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/configs"
	"github.com/pryme0/vyb-q-admin/internal/logger"
	"github.com/pryme0/vyb-q-admin/internal/models"
)

var DB *gorm.DB

func Init(cfg config.DatabaseConfig) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logger.L().Fatal("failed to connect to DB", zap.String("host", cfg.Host), zap.Error(err))
	}

	if err := Migrate(DB); err != nil {
		logger.L().Fatal("failed to migrate DB", zap.Error(err))
	}

	logger.L().Info("database connected and migrated", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
}

// Migrate creates or updates every table the API reads or writes.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&models.Category{},
		&models.MenuItem{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.Reservation{},
		&models.InventoryItem{},
		&models.Discount{},
		&models.Event{},
		&models.Waitress{},
		&models.WaitressOrder{},
		&models.WaitressOrderItem{},
		&models.User{},
		&models.Cart{},
		&models.CartLine{},
	)
}

func SetTestDB(testDB *gorm.DB) {
	DB = testDB
}
