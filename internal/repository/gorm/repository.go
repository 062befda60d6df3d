package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yieldmarket/internal/address"
	"yieldmarket/internal/models"
	"yieldmarket/internal/repository"
)

type Store struct {
	db *gorm.DB
	// locking is set on the tx-scoped store; reads then take row locks.
	locking bool
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Repository) error) error {
	if s == nil || s.db == nil {
		return errors.New("gorm store not initialized")
	}
	if s.locking {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, locking: true})
	})
}

func (s *Store) read(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	if s.locking {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func first[T any](q *gorm.DB) (*T, error) {
	var item T
	err := q.First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- mints & token accounts ---------------------------------------------------

func (s *Store) CreateMint(ctx context.Context, item *models.Mint) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveMint(ctx context.Context, item *models.Mint) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetMint(ctx context.Context, addr address.Address) (*models.Mint, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	return first[models.Mint](s.read(ctx).Where("address = ?", addr))
}

func (s *Store) GetMintBySymbol(ctx context.Context, symbol string) (*models.Mint, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, nil
	}
	return first[models.Mint](s.read(ctx).
		Where("kind = ?", models.MintKindAsset).
		Where("UPPER(symbol) = ?", strings.ToUpper(symbol)))
}

func (s *Store) ListMints(ctx context.Context, params repository.ListMintsParams) ([]models.Mint, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.read(ctx).Model(&models.Mint{})
	if params.Kind != nil && strings.TrimSpace(*params.Kind) != "" {
		query = query.Where("kind = ?", strings.TrimSpace(*params.Kind))
	}
	var items []models.Mint
	if err := scan(query, params.AfterID, params.Limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreateTokenAccount(ctx context.Context, item *models.TokenAccount) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveTokenAccount(ctx context.Context, item *models.TokenAccount) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetTokenAccount(ctx context.Context, addr address.Address) (*models.TokenAccount, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	return first[models.TokenAccount](s.read(ctx).Where("address = ?", addr))
}

func (s *Store) ListTokenAccounts(ctx context.Context, params repository.ListTokenAccountsParams) ([]models.TokenAccount, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.read(ctx).Model(&models.TokenAccount{})
	if params.Owner != nil {
		query = query.Where("owner = ?", *params.Owner)
	}
	if params.Mint != nil {
		query = query.Where("mint = ?", *params.Mint)
	}
	var items []models.TokenAccount
	if err := scan(query, params.AfterID, params.Limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- pools ----------------------------------------------------------------------

func (s *Store) CreatePool(ctx context.Context, item *models.Pool) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SavePool(ctx context.Context, item *models.Pool) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetPool(ctx context.Context, addr address.Address) (*models.Pool, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	return first[models.Pool](s.read(ctx).Where("address = ?", addr))
}

func (s *Store) ListPools(ctx context.Context, params repository.ListPoolsParams) ([]models.Pool, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Pool
	if err := scan(s.read(ctx).Model(&models.Pool{}), params.AfterID, params.Limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- strategies -----------------------------------------------------------------

func (s *Store) CreateStrategy(ctx context.Context, item *models.Strategy) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveStrategy(ctx context.Context, item *models.Strategy) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetStrategy(ctx context.Context, addr address.Address) (*models.Strategy, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	return first[models.Strategy](s.read(ctx).Where("address = ?", addr))
}

func (s *Store) ListStrategies(ctx context.Context, params repository.ListStrategiesParams) ([]models.Strategy, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.read(ctx).Model(&models.Strategy{})
	if params.Asset != nil {
		query = query.Where("asset = ?", *params.Asset)
	}
	if params.Owner != nil {
		query = query.Where("owner = ?", *params.Owner)
	}
	if params.Active != nil {
		query = query.Where("active = ?", *params.Active)
	}
	var items []models.Strategy
	if err := scan(query, params.AfterID, params.Limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) MaxStrategySequence(ctx context.Context, asset, owner address.Address) (uint64, bool, error) {
	if s == nil || s.db == nil {
		return 0, false, nil
	}
	var row struct {
		Seq   *uint64
		Count int64
	}
	err := s.db.WithContext(ctx).Model(&models.Strategy{}).
		Select("MAX(sequence) AS seq, COUNT(*) AS count").
		Where("asset = ? AND owner = ?", asset, owner).
		Scan(&row).Error
	if err != nil {
		return 0, false, err
	}
	if row.Count == 0 || row.Seq == nil {
		return 0, false, nil
	}
	return *row.Seq, true, nil
}

// --- deposits -------------------------------------------------------------------

func (s *Store) CreateUserDeposit(ctx context.Context, item *models.UserDeposit) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveUserDeposit(ctx context.Context, item *models.UserDeposit) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetUserDeposit(ctx context.Context, addr address.Address) (*models.UserDeposit, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	return first[models.UserDeposit](s.read(ctx).Where("address = ?", addr))
}

func (s *Store) ListUserDeposits(ctx context.Context, params repository.ListUserDepositsParams) ([]models.UserDeposit, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.read(ctx).Model(&models.UserDeposit{})
	if params.Pool != nil {
		query = query.Where("pool = ?", *params.Pool)
	}
	if params.User != nil {
		query = query.Where(clause.Eq{Column: clause.Column{Name: "user"}, Value: *params.User})
	}
	if params.Strategy != nil {
		query = query.Where("strategy = ?", *params.Strategy)
	}
	var items []models.UserDeposit
	if err := scan(query, params.AfterID, params.Limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- marketplace ----------------------------------------------------------------

func (s *Store) CreateListing(ctx context.Context, item *models.Listing) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveListing(ctx context.Context, item *models.Listing) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetListing(ctx context.Context, addr address.Address) (*models.Listing, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	return first[models.Listing](s.read(ctx).Where("address = ?", addr))
}

func (s *Store) listingsQuery(ctx context.Context, params repository.ListListingsParams) *gorm.DB {
	return filterListings(s.read(ctx).Model(&models.Listing{}), params)
}

func (s *Store) ListListings(ctx context.Context, params repository.ListListingsParams) ([]models.Listing, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.listingsQuery(ctx, params)
	if params.AfterID > 0 || params.OrderBy == "" {
		query = scan(query, params.AfterID, params.Limit)
	} else {
		query = applyOrder(query, params.OrderBy, params.Asc, "created_at").
			Limit(normalizeLimit(params.Limit, 200))
	}
	var items []models.Listing
	if err := query.Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountListings(ctx context.Context, params repository.ListListingsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	query := filterListings(s.db.WithContext(ctx).Model(&models.Listing{}), params)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func filterListings(query *gorm.DB, params repository.ListListingsParams) *gorm.DB {
	if params.Seller != nil {
		query = query.Where("seller = ?", *params.Seller)
	}
	if params.YieldMint != nil {
		query = query.Where("yield_mint = ?", *params.YieldMint)
	}
	if params.Active != nil {
		query = query.Where("active = ?", *params.Active)
	}
	if params.ExpiredBefore != nil && !params.ExpiredBefore.IsZero() {
		query = query.Where("expires_at < ?", *params.ExpiredBefore)
	}
	return query
}

func (s *Store) NextListingNonce(ctx context.Context, seller address.Address) (uint64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("gorm store not initialized")
	}
	row, err := first[models.ListingNonce](s.read(ctx).Where("seller = ?", seller))
	if err != nil {
		return 0, err
	}
	if row == nil {
		row = &models.ListingNonce{Seller: seller, Next: 1}
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			return 0, err
		}
		return 0, nil
	}
	n := row.Next
	row.Next++
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// --- journal --------------------------------------------------------------------

func (s *Store) InsertLedgerEntries(ctx context.Context, items []models.LedgerEntry) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(items, 200).Error
}

func (s *Store) ledgerEntriesQuery(ctx context.Context, params repository.ListLedgerEntriesParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.LedgerEntry{})
	if params.Account != nil {
		query = query.Where("from_account = ? OR to_account = ?", *params.Account, *params.Account)
	}
	if params.Mint != nil {
		query = query.Where("mint = ?", *params.Mint)
	}
	if params.Operation != nil && strings.TrimSpace(*params.Operation) != "" {
		query = query.Where("operation = ?", strings.TrimSpace(*params.Operation))
	}
	return query
}

func (s *Store) ListLedgerEntries(ctx context.Context, params repository.ListLedgerEntriesParams) ([]models.LedgerEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyOrder(s.ledgerEntriesQuery(ctx, params), "created_at", params.Asc, "created_at")
	var items []models.LedgerEntry
	if err := query.
		Limit(normalizeLimit(params.Limit, 200)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountLedgerEntries(ctx context.Context, params repository.ListLedgerEntriesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.ledgerEntriesQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// --- system settings ------------------------------------------------------------

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Key = strings.TrimSpace(item.Key)
	if item.Key == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	return first[models.SystemSetting](s.db.WithContext(ctx).Model(&models.SystemSetting{}).Where("key = ?", key))
}

func (s *Store) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if params.Prefix != nil && strings.TrimSpace(*params.Prefix) != "" {
		pattern := strings.TrimSpace(*params.Prefix) + "%"
		query = query.Where("key LIKE ?", pattern)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "key")
	limit := normalizeLimit(params.Limit, 500)
	offset := normalizeOffset(params.Offset)
	var items []models.SystemSetting
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if params.Prefix != nil && strings.TrimSpace(*params.Prefix) != "" {
		pattern := strings.TrimSpace(*params.Prefix) + "%"
		query = query.Where("key LIKE ?", pattern)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// --- helpers --------------------------------------------------------------------

func scan(query *gorm.DB, afterID uint64, limit int) *gorm.DB {
	if afterID > 0 {
		query = query.Where("id > ?", afterID)
	}
	return query.Order("id asc").Limit(normalizeLimit(limit, 200))
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
