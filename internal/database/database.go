package database

import (
	"log"

	"github.com/aoacon/portal-api/internal/config"
	"github.com/aoacon/portal-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.Registration{},
		&models.RegistrationHistory{},
		&models.Coupon{},
		&models.PaymentRecord{},
		&models.Counter{},
		&models.AttendancePass{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}
