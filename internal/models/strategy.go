package models

import (
	"time"

	"yieldmarket/internal/address"
)

// Strategy is a yield offer against one asset, addressed by (asset, owner, sequence).
type Strategy struct {
	ID       uint64          `gorm:"primaryKey;autoIncrement"`
	Address  address.Address `gorm:"type:varchar(64);not null;uniqueIndex"`
	Owner    address.Address `gorm:"type:varchar(64);not null;index:idx_strategy_asset_owner"`
	Asset    address.Address `gorm:"type:varchar(64);not null;index:idx_strategy_asset_owner"`
	Sequence uint64          `gorm:"not null"`

	Name        string `gorm:"type:varchar(64);not null"`
	Description string `gorm:"type:text"`

	RewardAPYBps    uint64 `gorm:"column:reward_apy_bps;not null"`
	MaturitySeconds uint64 `gorm:"not null"`
	Active          bool   `gorm:"not null;default:true;index"`
	TotalDeposited  uint64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Strategy) TableName() string {
	return "strategies"
}

func (s Strategy) Maturity() time.Duration {
	return time.Duration(s.MaturitySeconds) * time.Second
}
