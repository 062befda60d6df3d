package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"yieldmarket/internal/address"
	"yieldmarket/internal/ledger"
	"yieldmarket/internal/models"
	"yieldmarket/internal/repository"
)

// tokenLedger moves balances inside one unit of work and journals every movement.
// Callers validate first; the balance checks here only back those validations up.
type tokenLedger struct {
	repo    repository.Repository
	addr    address.Deriver
	now     time.Time
	op      string
	actor   address.Address
	details map[string]any
	entries []models.LedgerEntry
}

// with tags every later journal entry of this unit of work with key.
func (t *tokenLedger) with(key string, value any) *tokenLedger {
	if t.details == nil {
		t.details = map[string]any{}
	}
	t.details[key] = value
	return t
}

// account returns the caller-held (owner, mint) token account, or nil if it was never opened.
// Custody accounts are refused: a caller never acts through a vault, reserve or escrow.
func (t *tokenLedger) account(ctx context.Context, owner, mint address.Address) (*models.TokenAccount, error) {
	acc, err := t.repo.GetTokenAccount(ctx, t.addr.TokenAccount(owner, mint))
	if err != nil {
		return nil, fmt.Errorf("load token account: %w", err)
	}
	if acc != nil && acc.Custody {
		return nil, errCustodyAccount(acc.Address)
	}
	return acc, nil
}

func errCustodyAccount(addr address.Address) error {
	return ledger.Newf(ledger.CodeUnauthorized, "token account %s is held in custody", addr)
}

func (t *tokenLedger) balance(ctx context.Context, owner, mint address.Address) (uint64, error) {
	acc, err := t.account(ctx, owner, mint)
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.Balance, nil
}

// open returns the caller-held (owner, mint) account, creating an empty one if needed.
func (t *tokenLedger) open(ctx context.Context, owner, mint address.Address) (*models.TokenAccount, error) {
	acc, err := t.account(ctx, owner, mint)
	if err != nil {
		return nil, err
	}
	if acc != nil {
		return acc, nil
	}
	return t.create(ctx, owner, mint, false)
}

// openCustody creates the account of a derived authority. An account already opened at that
// address by a caller, or one that holds a balance, means the derivation was front-run.
func (t *tokenLedger) openCustody(ctx context.Context, authority, mint address.Address) (*models.TokenAccount, error) {
	acc, err := t.repo.GetTokenAccount(ctx, t.addr.TokenAccount(authority, mint))
	if err != nil {
		return nil, fmt.Errorf("load token account: %w", err)
	}
	if acc == nil {
		return t.create(ctx, authority, mint, true)
	}
	if !acc.Custody || acc.Balance != 0 {
		return nil, ledger.Newf(ledger.CodeInconsistentState, "custody account %s already in use", acc.Address)
	}
	return acc, nil
}

func (t *tokenLedger) create(ctx context.Context, owner, mint address.Address, custody bool) (*models.TokenAccount, error) {
	acc := &models.TokenAccount{
		Address:   t.addr.TokenAccount(owner, mint),
		Owner:     owner,
		Mint:      mint,
		Custody:   custody,
		CreatedAt: t.now,
		UpdatedAt: t.now,
	}
	if err := t.repo.CreateTokenAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("open token account: %w", err)
	}
	return acc, nil
}

// byAddress loads an account that must exist, such as a pool vault.
func (t *tokenLedger) byAddress(ctx context.Context, addr address.Address) (*models.TokenAccount, error) {
	acc, err := t.repo.GetTokenAccount(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("load token account: %w", err)
	}
	if acc == nil {
		return nil, ledger.Newf(ledger.CodeInconsistentState, "token account %s missing", addr)
	}
	return acc, nil
}

func (t *tokenLedger) transfer(ctx context.Context, from, to *models.TokenAccount, amount uint64) error {
	if from.Address == to.Address {
		return ledger.Newf(ledger.CodeInconsistentState, "transfer from %s to itself", from.Address)
	}
	if amount == 0 {
		return nil
	}
	if from.Mint != to.Mint {
		return ledger.Newf(ledger.CodeInconsistentState, "transfer between mints %s and %s", from.Mint, to.Mint)
	}
	if from.Balance < amount {
		return ledger.Newf(ledger.CodeInsufficientBalance, "account %s holds %d, needs %d", from.Address, from.Balance, amount)
	}
	credited, err := ledger.Add(to.Balance, amount)
	if err != nil {
		return err
	}
	from.Balance -= amount
	to.Balance = credited
	from.UpdatedAt, to.UpdatedAt = t.now, t.now
	if err := t.repo.SaveTokenAccount(ctx, from); err != nil {
		return fmt.Errorf("save token account: %w", err)
	}
	if err := t.repo.SaveTokenAccount(ctx, to); err != nil {
		return fmt.Errorf("save token account: %w", err)
	}
	t.journal(models.EntryKindTransfer, from.Mint, from.Address, to.Address, amount)
	return nil
}

func (t *tokenLedger) mintTo(ctx context.Context, mint *models.Mint, to *models.TokenAccount, amount uint64) error {
	if amount == 0 {
		return nil
	}
	supply, err := ledger.Add(mint.Supply, amount)
	if err != nil {
		return err
	}
	credited, err := ledger.Add(to.Balance, amount)
	if err != nil {
		return err
	}
	mint.Supply = supply
	mint.UpdatedAt = t.now
	to.Balance = credited
	to.UpdatedAt = t.now
	if err := t.repo.SaveMint(ctx, mint); err != nil {
		return fmt.Errorf("save mint: %w", err)
	}
	if err := t.repo.SaveTokenAccount(ctx, to); err != nil {
		return fmt.Errorf("save token account: %w", err)
	}
	t.journal(models.EntryKindMint, mint.Address, address.Zero, to.Address, amount)
	return nil
}

func (t *tokenLedger) burn(ctx context.Context, mint *models.Mint, from *models.TokenAccount, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if from.Balance < amount {
		return ledger.Newf(ledger.CodeInsufficientBalance, "account %s holds %d, needs %d", from.Address, from.Balance, amount)
	}
	if mint.Supply < amount {
		return ledger.Newf(ledger.CodeInconsistentState, "mint %s supply %d below burn %d", mint.Address, mint.Supply, amount)
	}
	mint.Supply -= amount
	mint.UpdatedAt = t.now
	from.Balance -= amount
	from.UpdatedAt = t.now
	if err := t.repo.SaveMint(ctx, mint); err != nil {
		return fmt.Errorf("save mint: %w", err)
	}
	if err := t.repo.SaveTokenAccount(ctx, from); err != nil {
		return fmt.Errorf("save token account: %w", err)
	}
	t.journal(models.EntryKindBurn, mint.Address, from.Address, address.Zero, amount)
	return nil
}

func (t *tokenLedger) journal(kind string, mint, from, to address.Address, amount uint64) {
	var details datatypes.JSON
	if len(t.details) > 0 {
		raw, _ := json.Marshal(t.details)
		details = datatypes.JSON(raw)
	}
	t.entries = append(t.entries, models.LedgerEntry{
		ID:        uuid.NewString(),
		Operation: t.op,
		Kind:      kind,
		Mint:      mint,
		From:      from,
		To:        to,
		Amount:    amount,
		Actor:     t.actor,
		Details:   details,
		CreatedAt: t.now,
	})
}

// flush writes the journal. Call it last inside the unit of work.
func (t *tokenLedger) flush(ctx context.Context) error {
	if len(t.entries) == 0 {
		return nil
	}
	if err := t.repo.InsertLedgerEntries(ctx, t.entries); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	t.entries = nil
	return nil
}
