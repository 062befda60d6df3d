package db

import (
	"yieldmarket/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Mint{},
		&models.TokenAccount{},
		&models.Pool{},
		&models.Strategy{},
		&models.UserDeposit{},
		&models.Listing{},
		&models.ListingNonce{},
		&models.LedgerEntry{},
		&models.SystemSetting{},
	)
}
