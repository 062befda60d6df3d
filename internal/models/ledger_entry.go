package models

import (
	"time"

	"gorm.io/datatypes"

	"yieldmarket/internal/address"
)

const (
	EntryKindTransfer = "transfer"
	EntryKindMint     = "mint"
	EntryKindBurn     = "burn"
)

// LedgerEntry journals a single token movement. Mint has a zero From; burn has a zero To.
type LedgerEntry struct {
	ID        string          `gorm:"type:varchar(36);primaryKey"`
	Operation string          `gorm:"type:varchar(40);not null;index"`
	Kind      string          `gorm:"type:varchar(16);not null"`
	Mint      address.Address `gorm:"type:varchar(64);not null;index"`
	From      address.Address `gorm:"column:from_account;type:varchar(64);index"`
	To        address.Address `gorm:"column:to_account;type:varchar(64);index"`
	Amount    uint64          `gorm:"not null"`
	Actor     address.Address `gorm:"type:varchar(64);index"`

	Details datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;index"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
