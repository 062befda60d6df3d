package models

import (
	"time"

	"yieldmarket/internal/address"
)

// UserDeposit is one user's position in one pool against one strategy. A zero Strategy is the
// default position: principal only, no yield, no receipts.
type UserDeposit struct {
	ID       uint64          `gorm:"primaryKey;autoIncrement"`
	Address  address.Address `gorm:"type:varchar(64);not null;uniqueIndex"`
	User     address.Address `gorm:"type:varchar(64);not null;index"`
	Pool     address.Address `gorm:"type:varchar(64);not null;index"`
	Strategy address.Address `gorm:"type:varchar(64);not null;index"`

	Principal   uint64 `gorm:"not null;default:0"`
	YieldEarned uint64 `gorm:"not null;default:0"`
	// YieldMinted is the amount of receipts issued against this position and not yet redeemed.
	YieldMinted uint64 `gorm:"not null;default:0"`

	DepositedAt   time.Time `gorm:"type:timestamptz;not null"`
	LastAccrualAt time.Time `gorm:"type:timestamptz;not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (UserDeposit) TableName() string {
	return "user_deposits"
}
