package models

import (
	"time"

	"yieldmarket/internal/address"
)

const (
	MintKindAsset = "asset"
	MintKindYield = "yield"
)

// Mint is a fungible token definition. Asset mints are registered by admins; yield mints are
// created per (pool, strategy) on first receipt issuance.
type Mint struct {
	ID      uint64          `gorm:"primaryKey;autoIncrement"`
	Address address.Address `gorm:"type:varchar(64);not null;uniqueIndex"`
	Symbol  string          `gorm:"type:varchar(32);not null;index"`
	Kind    string          `gorm:"type:varchar(16);not null;index"`

	Decimals  uint8           `gorm:"not null"`
	Authority address.Address `gorm:"type:varchar(64);not null"`
	Supply    uint64          `gorm:"not null;default:0"`

	// Set for yield mints only.
	Underlying address.Address `gorm:"type:varchar(64)"`
	Pool       address.Address `gorm:"type:varchar(64);index"`
	Strategy   address.Address `gorm:"type:varchar(64);index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Mint) TableName() string {
	return "mints"
}
