// Package memoryrepository is an in-process repository.Repository. Transactions are serialized
// and work on a private copy that is published only on commit.
package memoryrepository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"yieldmarket/internal/address"
	"yieldmarket/internal/models"
	"yieldmarket/internal/repository"
)

type Store struct {
	core *core
	// work is the transaction's private copy of the state; nil outside InTx.
	work *state
}

type core struct {
	// txMu serializes writers; mu guards st for readers.
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

func New() *Store {
	return &Store{core: &core{st: newState()}}
}

// InTx runs fn against a copy of the committed state. The copy replaces the committed state only
// when fn succeeds, so readers outside the transaction never observe its writes.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Repository) error) error {
	if s.work != nil {
		return fn(s)
	}
	c := s.core
	c.txMu.Lock()
	defer c.txMu.Unlock()

	c.mu.RLock()
	work := c.st.clone()
	c.mu.RUnlock()

	if err := fn(&Store{core: c, work: work}); err != nil {
		return err
	}
	c.mu.Lock()
	c.st = work
	c.mu.Unlock()
	return nil
}

func (s *Store) write(fn func(st *state) error) error {
	if s.work != nil {
		return fn(s.work)
	}
	s.core.txMu.Lock()
	defer s.core.txMu.Unlock()
	s.core.mu.Lock()
	defer s.core.mu.Unlock()
	return fn(s.core.st)
}

func (s *Store) read(fn func(st *state)) {
	if s.work != nil {
		fn(s.work)
		return
	}
	s.core.mu.RLock()
	defer s.core.mu.RUnlock()
	fn(s.core.st)
}

type table[T any] struct {
	rows   map[address.Address]*T
	nextID uint64
}

type state struct {
	mints     table[models.Mint]
	accounts  table[models.TokenAccount]
	pools     table[models.Pool]
	strats    table[models.Strategy]
	deposits  table[models.UserDeposit]
	listings  table[models.Listing]
	nonces    map[address.Address]uint64
	entries   []models.LedgerEntry
	settings  map[string]models.SystemSetting
	settingID uint64
}

func newTable[T any]() table[T] {
	return table[T]{rows: map[address.Address]*T{}}
}

func newState() *state {
	return &state{
		mints:    newTable[models.Mint](),
		accounts: newTable[models.TokenAccount](),
		pools:    newTable[models.Pool](),
		strats:   newTable[models.Strategy](),
		deposits: newTable[models.UserDeposit](),
		listings: newTable[models.Listing](),
		nonces:   map[address.Address]uint64{},
		settings: map[string]models.SystemSetting{},
	}
}

func (t table[T]) clone() table[T] {
	out := table[T]{rows: make(map[address.Address]*T, len(t.rows)), nextID: t.nextID}
	for k, v := range t.rows {
		cp := *v
		out.rows[k] = &cp
	}
	return out
}

func (st *state) clone() *state {
	out := &state{
		mints:     st.mints.clone(),
		accounts:  st.accounts.clone(),
		pools:     st.pools.clone(),
		strats:    st.strats.clone(),
		deposits:  st.deposits.clone(),
		listings:  st.listings.clone(),
		nonces:    make(map[address.Address]uint64, len(st.nonces)),
		entries:   append([]models.LedgerEntry(nil), st.entries...),
		settings:  make(map[string]models.SystemSetting, len(st.settings)),
		settingID: st.settingID,
	}
	for k, v := range st.nonces {
		out.nonces[k] = v
	}
	for k, v := range st.settings {
		out.settings[k] = v
	}
	return out
}

func create[T any](t *table[T], key address.Address, item *T, setID func(uint64)) error {
	if _, ok := t.rows[key]; ok {
		return fmt.Errorf("duplicate key %s", key)
	}
	t.nextID++
	setID(t.nextID)
	cp := *item
	t.rows[key] = &cp
	return nil
}

func save[T any](t *table[T], key address.Address, item *T) error {
	if _, ok := t.rows[key]; !ok {
		return fmt.Errorf("row %s does not exist", key)
	}
	cp := *item
	t.rows[key] = &cp
	return nil
}

func get[T any](t *table[T], key address.Address) *T {
	v, ok := t.rows[key]
	if !ok {
		return nil
	}
	cp := *v
	return &cp
}

// all returns copies matching keep, ordered by row id, starting after afterID.
func all[T any](t *table[T], id func(*T) uint64, keep func(*T) bool, afterID uint64) []T {
	out := make([]T, 0)
	for _, v := range t.rows {
		if id(v) <= afterID {
			continue
		}
		if keep != nil && !keep(v) {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return id(&out[i]) < id(&out[j]) })
	return out
}

func list[T any](t *table[T], id func(*T) uint64, keep func(*T) bool, afterID uint64, limit int) []T {
	return page(all(t, id, keep, afterID), 0, limit)
}

func eqPtr(want *address.Address, got address.Address) bool {
	return want == nil || *want == got
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

func page[T any](items []T, offset, limit int) []T {
	offset = normalizeOffset(offset)
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit = normalizeLimit(limit, 200); len(items) > limit {
		items = items[:limit]
	}
	return items
}

func trimKey(key string) string { return strings.TrimSpace(key) }
