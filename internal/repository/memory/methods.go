package memoryrepository

import (
	"context"
	"sort"
	"strings"
	"time"

	"yieldmarket/internal/address"
	"yieldmarket/internal/models"
	"yieldmarket/internal/repository"
)

// --- mints & token accounts ---------------------------------------------------

func (s *Store) CreateMint(ctx context.Context, item *models.Mint) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error {
		return create(&st.mints, item.Address, item, func(id uint64) { item.ID = id })
	})
}

func (s *Store) SaveMint(ctx context.Context, item *models.Mint) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error { return save(&st.mints, item.Address, item) })
}

func (s *Store) GetMint(ctx context.Context, addr address.Address) (out *models.Mint, err error) {
	s.read(func(st *state) { out = get(&st.mints, addr) })
	return out, nil
}

func (s *Store) GetMintBySymbol(ctx context.Context, symbol string) (out *models.Mint, err error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, nil
	}
	s.read(func(st *state) {
		items := all(&st.mints, mintID, func(m *models.Mint) bool {
			return m.Kind == models.MintKindAsset && strings.EqualFold(m.Symbol, symbol)
		}, 0)
		if len(items) > 0 {
			out = &items[0]
		}
	})
	return out, nil
}

func (s *Store) ListMints(ctx context.Context, params repository.ListMintsParams) (out []models.Mint, err error) {
	s.read(func(st *state) {
		out = list(&st.mints, mintID, func(m *models.Mint) bool {
			return params.Kind == nil || strings.TrimSpace(*params.Kind) == "" || m.Kind == strings.TrimSpace(*params.Kind)
		}, params.AfterID, params.Limit)
	})
	return out, nil
}

func (s *Store) CreateTokenAccount(ctx context.Context, item *models.TokenAccount) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error {
		return create(&st.accounts, item.Address, item, func(id uint64) { item.ID = id })
	})
}

func (s *Store) SaveTokenAccount(ctx context.Context, item *models.TokenAccount) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error { return save(&st.accounts, item.Address, item) })
}

func (s *Store) GetTokenAccount(ctx context.Context, addr address.Address) (out *models.TokenAccount, err error) {
	s.read(func(st *state) { out = get(&st.accounts, addr) })
	return out, nil
}

func (s *Store) ListTokenAccounts(ctx context.Context, params repository.ListTokenAccountsParams) (out []models.TokenAccount, err error) {
	s.read(func(st *state) {
		out = list(&st.accounts, accountID, func(a *models.TokenAccount) bool {
			return eqPtr(params.Owner, a.Owner) && eqPtr(params.Mint, a.Mint)
		}, params.AfterID, params.Limit)
	})
	return out, nil
}

// --- pools ----------------------------------------------------------------------

func (s *Store) CreatePool(ctx context.Context, item *models.Pool) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error {
		return create(&st.pools, item.Address, item, func(id uint64) { item.ID = id })
	})
}

func (s *Store) SavePool(ctx context.Context, item *models.Pool) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error { return save(&st.pools, item.Address, item) })
}

func (s *Store) GetPool(ctx context.Context, addr address.Address) (out *models.Pool, err error) {
	s.read(func(st *state) { out = get(&st.pools, addr) })
	return out, nil
}

func (s *Store) ListPools(ctx context.Context, params repository.ListPoolsParams) (out []models.Pool, err error) {
	s.read(func(st *state) {
		out = list(&st.pools, poolID, nil, params.AfterID, params.Limit)
	})
	return out, nil
}

// --- strategies -----------------------------------------------------------------

func (s *Store) CreateStrategy(ctx context.Context, item *models.Strategy) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error {
		return create(&st.strats, item.Address, item, func(id uint64) { item.ID = id })
	})
}

func (s *Store) SaveStrategy(ctx context.Context, item *models.Strategy) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error { return save(&st.strats, item.Address, item) })
}

func (s *Store) GetStrategy(ctx context.Context, addr address.Address) (out *models.Strategy, err error) {
	s.read(func(st *state) { out = get(&st.strats, addr) })
	return out, nil
}

func (s *Store) ListStrategies(ctx context.Context, params repository.ListStrategiesParams) (out []models.Strategy, err error) {
	s.read(func(st *state) {
		out = list(&st.strats, strategyID, func(v *models.Strategy) bool {
			if params.Active != nil && v.Active != *params.Active {
				return false
			}
			return eqPtr(params.Asset, v.Asset) && eqPtr(params.Owner, v.Owner)
		}, params.AfterID, params.Limit)
	})
	return out, nil
}

func (s *Store) MaxStrategySequence(ctx context.Context, asset, owner address.Address) (seq uint64, found bool, err error) {
	s.read(func(st *state) {
		for _, v := range st.strats.rows {
			if v.Asset != asset || v.Owner != owner {
				continue
			}
			if !found || v.Sequence > seq {
				seq = v.Sequence
			}
			found = true
		}
	})
	return seq, found, nil
}

// --- deposits -------------------------------------------------------------------

func (s *Store) CreateUserDeposit(ctx context.Context, item *models.UserDeposit) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error {
		return create(&st.deposits, item.Address, item, func(id uint64) { item.ID = id })
	})
}

func (s *Store) SaveUserDeposit(ctx context.Context, item *models.UserDeposit) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error { return save(&st.deposits, item.Address, item) })
}

func (s *Store) GetUserDeposit(ctx context.Context, addr address.Address) (out *models.UserDeposit, err error) {
	s.read(func(st *state) { out = get(&st.deposits, addr) })
	return out, nil
}

func (s *Store) ListUserDeposits(ctx context.Context, params repository.ListUserDepositsParams) (out []models.UserDeposit, err error) {
	s.read(func(st *state) {
		out = list(&st.deposits, depositID, func(v *models.UserDeposit) bool {
			return eqPtr(params.Pool, v.Pool) && eqPtr(params.User, v.User) && eqPtr(params.Strategy, v.Strategy)
		}, params.AfterID, params.Limit)
	})
	return out, nil
}

// --- marketplace ----------------------------------------------------------------

func (s *Store) CreateListing(ctx context.Context, item *models.Listing) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error {
		return create(&st.listings, item.Address, item, func(id uint64) { item.ID = id })
	})
}

func (s *Store) SaveListing(ctx context.Context, item *models.Listing) error {
	if item == nil {
		return nil
	}
	return s.write(func(st *state) error { return save(&st.listings, item.Address, item) })
}

func (s *Store) GetListing(ctx context.Context, addr address.Address) (out *models.Listing, err error) {
	s.read(func(st *state) { out = get(&st.listings, addr) })
	return out, nil
}

func listingFilter(params repository.ListListingsParams) func(*models.Listing) bool {
	return func(v *models.Listing) bool {
		if params.Active != nil && v.Active != *params.Active {
			return false
		}
		if params.ExpiredBefore != nil && !params.ExpiredBefore.IsZero() && !v.ExpiresAt.Before(*params.ExpiredBefore) {
			return false
		}
		return eqPtr(params.Seller, v.Seller) && eqPtr(params.YieldMint, v.YieldMint)
	}
}

func (s *Store) ListListings(ctx context.Context, params repository.ListListingsParams) (out []models.Listing, err error) {
	s.read(func(st *state) {
		items := all(&st.listings, listingID, listingFilter(params), params.AfterID)
		if params.AfterID == 0 && params.OrderBy != "" {
			sortListings(items, params.OrderBy, params.Asc != nil && *params.Asc)
		}
		out = page(items, params.Offset, params.Limit)
	})
	return out, nil
}

// sortListings mirrors the gorm store: order by the column, ties broken by row id.
func sortListings(items []models.Listing, orderBy string, asc bool) {
	key := func(l *models.Listing) int64 {
		switch orderBy {
		case "price":
			return int64(l.Price)
		case "amount":
			return int64(l.Amount)
		case "expires_at":
			return l.ExpiresAt.UnixNano()
		default:
			return l.CreatedAt.UnixNano()
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := key(&items[i]), key(&items[j])
		if a == b {
			a, b = int64(items[i].ID), int64(items[j].ID)
		}
		if asc {
			return a < b
		}
		return a > b
	})
}

func (s *Store) CountListings(ctx context.Context, params repository.ListListingsParams) (total int64, err error) {
	s.read(func(st *state) {
		total = int64(len(all(&st.listings, listingID, listingFilter(params), 0)))
	})
	return total, nil
}

func (s *Store) NextListingNonce(ctx context.Context, seller address.Address) (n uint64, err error) {
	err = s.write(func(st *state) error {
		n = st.nonces[seller]
		st.nonces[seller] = n + 1
		return nil
	})
	return n, err
}

// --- journal --------------------------------------------------------------------

func (s *Store) InsertLedgerEntries(ctx context.Context, items []models.LedgerEntry) error {
	if len(items) == 0 {
		return nil
	}
	return s.write(func(st *state) error {
		st.entries = append(st.entries, items...)
		return nil
	})
}

func ledgerFilter(params repository.ListLedgerEntriesParams) func(models.LedgerEntry) bool {
	return func(e models.LedgerEntry) bool {
		if params.Account != nil && e.From != *params.Account && e.To != *params.Account {
			return false
		}
		if params.Mint != nil && e.Mint != *params.Mint {
			return false
		}
		if params.Operation != nil && strings.TrimSpace(*params.Operation) != "" && e.Operation != strings.TrimSpace(*params.Operation) {
			return false
		}
		return true
	}
}

func (s *Store) ListLedgerEntries(ctx context.Context, params repository.ListLedgerEntriesParams) (out []models.LedgerEntry, err error) {
	s.read(func(st *state) {
		keep := ledgerFilter(params)
		items := make([]models.LedgerEntry, 0)
		for _, e := range st.entries {
			if keep(e) {
				items = append(items, e)
			}
		}
		// entries are appended in commit order; newest first unless asked otherwise.
		if params.Asc == nil || !*params.Asc {
			for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
				items[i], items[j] = items[j], items[i]
			}
		}
		out = page(items, params.Offset, params.Limit)
	})
	return out, nil
}

func (s *Store) CountLedgerEntries(ctx context.Context, params repository.ListLedgerEntriesParams) (total int64, err error) {
	s.read(func(st *state) {
		keep := ledgerFilter(params)
		for _, e := range st.entries {
			if keep(e) {
				total++
			}
		}
	})
	return total, nil
}

// --- system settings ------------------------------------------------------------

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if item == nil {
		return nil
	}
	item.Key = trimKey(item.Key)
	if item.Key == "" {
		return nil
	}
	return s.write(func(st *state) error {
		now := time.Now().UTC()
		if existing, ok := st.settings[item.Key]; ok {
			existing.Value = item.Value
			existing.Description = item.Description
			existing.UpdatedAt = now
			st.settings[item.Key] = existing
			return nil
		}
		st.settingID++
		cp := *item
		cp.ID = st.settingID
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = now
		}
		cp.UpdatedAt = now
		st.settings[item.Key] = cp
		return nil
	})
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (out *models.SystemSetting, err error) {
	key = trimKey(key)
	s.read(func(st *state) {
		if v, ok := st.settings[key]; ok {
			out = &v
		}
	})
	return out, nil
}

func (s *Store) filterSettings(params repository.ListSystemSettingsParams) []models.SystemSetting {
	var prefix string
	if params.Prefix != nil {
		prefix = strings.TrimSpace(*params.Prefix)
	}
	var items []models.SystemSetting
	s.read(func(st *state) {
		for k, v := range st.settings {
			if strings.HasPrefix(k, prefix) {
				items = append(items, v)
			}
		}
	})
	asc := params.Asc != nil && *params.Asc
	sort.Slice(items, func(i, j int) bool {
		if asc {
			return items[i].Key < items[j].Key
		}
		return items[i].Key > items[j].Key
	})
	return items
}

func (s *Store) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	items := s.filterSettings(params)
	return page(items, params.Offset, normalizeLimit(params.Limit, 500)), nil
}

func (s *Store) CountSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) (int64, error) {
	return int64(len(s.filterSettings(params))), nil
}

func mintID(v *models.Mint) uint64 { return v.ID }
func accountID(v *models.TokenAccount) uint64 { return v.ID }
func poolID(v *models.Pool) uint64 { return v.ID }
func strategyID(v *models.Strategy) uint64 { return v.ID }
func depositID(v *models.UserDeposit) uint64 { return v.ID }
func listingID(v *models.Listing) uint64 { return v.ID }
