package models

import (
	"time"

	"yieldmarket/internal/address"
)

const (
	ListingStatusActive    = "active"
	ListingStatusSold      = "sold"
	ListingStatusCancelled = "cancelled"

	ListingCloseExpired = "expired"
)

// Listing is an offer to sell yield tokens held in escrow. EscrowAccount is owned by
// EscrowAuthority, which only this listing can move funds from.
type Listing struct {
	ID      uint64          `gorm:"primaryKey;autoIncrement"`
	Address address.Address `gorm:"type:varchar(64);not null;uniqueIndex"`
	Seller  address.Address `gorm:"type:varchar(64);not null;index"`
	Nonce   uint64          `gorm:"not null"`

	YieldMint       address.Address `gorm:"type:varchar(64);not null;index"`
	PaymentMint     address.Address `gorm:"type:varchar(64);not null"`
	EscrowAuthority address.Address `gorm:"type:varchar(64);not null"`
	EscrowAccount   address.Address `gorm:"type:varchar(64);not null"`

	Amount uint64 `gorm:"not null"`
	Price  uint64 `gorm:"not null"`

	Active      bool            `gorm:"not null;default:true;index"`
	Status      string          `gorm:"type:varchar(16);not null;index"`
	CloseReason string          `gorm:"type:varchar(32)"`
	Buyer       address.Address `gorm:"type:varchar(64)"`

	CreatedAt time.Time  `gorm:"type:timestamptz;not null;index"`
	ExpiresAt time.Time  `gorm:"type:timestamptz;not null;index"`
	SettledAt *time.Time `gorm:"type:timestamptz"`
	UpdatedAt time.Time  `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Listing) TableName() string {
	return "listings"
}

// Expired reports whether the listing is past its expiry. A listing is still buyable at ExpiresAt.
func (l Listing) Expired(now time.Time) bool {
	return !l.ExpiresAt.IsZero() && now.After(l.ExpiresAt)
}

// ListingNonce tracks the next listing sequence for a seller.
type ListingNonce struct {
	ID     uint64          `gorm:"primaryKey;autoIncrement"`
	Seller address.Address `gorm:"type:varchar(64);not null;uniqueIndex"`
	Next   uint64          `gorm:"not null;default:0"`
}

func (ListingNonce) TableName() string {
	return "listing_nonces"
}
