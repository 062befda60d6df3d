package repository

import (
	"context"
	"time"

	"yieldmarket/internal/address"
	"yieldmarket/internal/models"
)

// Repository is the ledger store. Get* methods return (nil, nil) when the row does not exist.
//
// InTx runs fn as one unit of work: either every write made through the tx repository is kept,
// or none is. Reads made through the tx repository lock the rows they return until fn finishes.
type Repository interface {
	InTx(ctx context.Context, fn func(tx Repository) error) error

	// Mints and token accounts.
	CreateMint(ctx context.Context, item *models.Mint) error
	SaveMint(ctx context.Context, item *models.Mint) error
	GetMint(ctx context.Context, addr address.Address) (*models.Mint, error)
	GetMintBySymbol(ctx context.Context, symbol string) (*models.Mint, error)
	ListMints(ctx context.Context, params ListMintsParams) ([]models.Mint, error)

	CreateTokenAccount(ctx context.Context, item *models.TokenAccount) error
	SaveTokenAccount(ctx context.Context, item *models.TokenAccount) error
	GetTokenAccount(ctx context.Context, addr address.Address) (*models.TokenAccount, error)
	ListTokenAccounts(ctx context.Context, params ListTokenAccountsParams) ([]models.TokenAccount, error)

	// Pools.
	CreatePool(ctx context.Context, item *models.Pool) error
	SavePool(ctx context.Context, item *models.Pool) error
	GetPool(ctx context.Context, addr address.Address) (*models.Pool, error)
	ListPools(ctx context.Context, params ListPoolsParams) ([]models.Pool, error)

	// Strategies.
	CreateStrategy(ctx context.Context, item *models.Strategy) error
	SaveStrategy(ctx context.Context, item *models.Strategy) error
	GetStrategy(ctx context.Context, addr address.Address) (*models.Strategy, error)
	ListStrategies(ctx context.Context, params ListStrategiesParams) ([]models.Strategy, error)
	MaxStrategySequence(ctx context.Context, asset, owner address.Address) (seq uint64, found bool, err error)

	// Deposits.
	CreateUserDeposit(ctx context.Context, item *models.UserDeposit) error
	SaveUserDeposit(ctx context.Context, item *models.UserDeposit) error
	GetUserDeposit(ctx context.Context, addr address.Address) (*models.UserDeposit, error)
	ListUserDeposits(ctx context.Context, params ListUserDepositsParams) ([]models.UserDeposit, error)

	// Marketplace.
	CreateListing(ctx context.Context, item *models.Listing) error
	SaveListing(ctx context.Context, item *models.Listing) error
	GetListing(ctx context.Context, addr address.Address) (*models.Listing, error)
	ListListings(ctx context.Context, params ListListingsParams) ([]models.Listing, error)
	CountListings(ctx context.Context, params ListListingsParams) (int64, error)
	// NextListingNonce returns the seller's current nonce and advances it.
	NextListingNonce(ctx context.Context, seller address.Address) (uint64, error)

	// Journal.
	InsertLedgerEntries(ctx context.Context, items []models.LedgerEntry) error
	ListLedgerEntries(ctx context.Context, params ListLedgerEntriesParams) ([]models.LedgerEntry, error)
	CountLedgerEntries(ctx context.Context, params ListLedgerEntriesParams) (int64, error)

	// System settings.
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	ListSystemSettings(ctx context.Context, params ListSystemSettingsParams) ([]models.SystemSetting, error)
	CountSystemSettings(ctx context.Context, params ListSystemSettingsParams) (int64, error)
}

// Scan params page by ascending row id: pass the last seen ID as AfterID.

type ListMintsParams struct {
	Kind    *string
	AfterID uint64
	Limit   int
}

type ListTokenAccountsParams struct {
	Owner   *address.Address
	Mint    *address.Address
	AfterID uint64
	Limit   int
}

type ListPoolsParams struct {
	AfterID uint64
	Limit   int
}

type ListStrategiesParams struct {
	Asset   *address.Address
	Owner   *address.Address
	Active  *bool
	AfterID uint64
	Limit   int
}

type ListUserDepositsParams struct {
	Pool     *address.Address
	User     *address.Address
	Strategy *address.Address
	AfterID  uint64
	Limit    int
}

type ListListingsParams struct {
	Seller        *address.Address
	YieldMint     *address.Address
	Active        *bool
	ExpiredBefore *time.Time
	AfterID       uint64
	Limit         int
	Offset        int
	OrderBy       string
	Asc           *bool
}

type ListLedgerEntriesParams struct {
	// Account matches either side of the movement.
	Account   *address.Address
	Mint      *address.Address
	Operation *string
	Limit     int
	Offset    int
	Asc       *bool
}

type ListSystemSettingsParams struct {
	Limit   int
	Offset  int
	Prefix  *string
	OrderBy string
	Asc     *bool
}
