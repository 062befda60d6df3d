package models

import (
	"time"

	"yieldmarket/internal/address"
)

// TokenAccount holds one owner's balance of one mint. Its address is derived from (owner, mint).
type TokenAccount struct {
	ID      uint64          `gorm:"primaryKey;autoIncrement"`
	Address address.Address `gorm:"type:varchar(64);not null;uniqueIndex"`
	Owner   address.Address `gorm:"type:varchar(64);not null;index"`
	Mint    address.Address `gorm:"type:varchar(64);not null;index"`
	Balance uint64          `gorm:"not null;default:0"`
	// Custody accounts belong to a derived authority: a pool vault, a reward reserve or an escrow.
	Custody bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (TokenAccount) TableName() string {
	return "token_accounts"
}
