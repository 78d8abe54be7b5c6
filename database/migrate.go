package database

import (
	"github.com/yeremiapane/digital-menu/models"
	"github.com/yeremiapane/digital-menu/utils"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema. Tables come before orders because
// orders reference them; order items and customizations cascade from orders.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Category{},
		&models.MenuItem{},
		&models.CustomizationGroup{},
		&models.CustomizationOption{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemCustomization{},
		&models.Payment{},
		&models.QRCode{},
	)
	if err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
