package models

import (
	"time"

	"yieldmarket/internal/address"
)

// Pool is one owner's lending pool. Vault holds principal only; accrued yield is paid out of
// RewardReserve, which the owner funds separately.
type Pool struct {
	ID      uint64          `gorm:"primaryKey;autoIncrement"`
	Address address.Address `gorm:"type:varchar(64);not null;uniqueIndex"`
	Owner   address.Address `gorm:"type:varchar(64);not null;uniqueIndex"`

	AssetMint     address.Address `gorm:"type:varchar(64);not null;index"`
	Authority     address.Address `gorm:"type:varchar(64);not null"`
	Vault         address.Address `gorm:"type:varchar(64);not null"`
	RewardReserve address.Address `gorm:"type:varchar(64);not null"`

	TotalDeposited uint64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Pool) TableName() string {
	return "pools"
}
