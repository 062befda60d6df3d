package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"yieldmarket/internal/address"
	"yieldmarket/internal/events"
	"yieldmarket/internal/ledger"
	"yieldmarket/internal/models"
	"yieldmarket/internal/repository"
)

// Publisher receives events after their unit of work commits.
type Publisher interface {
	Publish(ev events.Event)
}

// Admins is the configured set of privileged actors.
type Admins map[address.Address]struct{}

func ParseAdmins(raw []string) (Admins, error) {
	out := Admins{}
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		a, err := address.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("admin %q: %w", v, err)
		}
		out[a] = struct{}{}
	}
	return out, nil
}

func (a Admins) Has(actor address.Address) bool {
	if a == nil {
		return false
	}
	_, ok := a[actor]
	return ok
}

// CatalogInvalidator drops cached strategy views after a strategy total changes.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

func invalidateCatalog(ctx context.Context, c CatalogInvalidator, strategy address.Address) {
	if c == nil || strategy.IsZero() {
		return
	}
	c.Invalidate(ctx)
}

// Core carries the dependencies every ledger service shares.
type Core struct {
	Repo      repository.Repository
	Logger    *zap.Logger
	Clock     ledger.Clock
	Addresses address.Deriver
	Events    Publisher
	Admins    Admins
}

func (c Core) now() time.Time {
	return ledger.Now(c.Clock)
}

func (c Core) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c Core) publish(typ string, subject, actor address.Address, at time.Time, data map[string]any) {
	if c.Events == nil {
		return
	}
	ev := events.Event{Type: typ, Subject: subject.String(), Data: data, At: at}
	if !actor.IsZero() {
		ev.Actor = actor.String()
	}
	c.Events.Publish(ev)
}

func (c Core) tokens(tx repository.Repository, now time.Time, op string, actor address.Address) *tokenLedger {
	return &tokenLedger{repo: tx, addr: c.Addresses, now: now, op: op, actor: actor}
}

// reportInconsistent logs a broken invariant before returning it.
func (c Core) reportInconsistent(op string, err error, fields ...zap.Field) error {
	c.logger().Error("ledger invariant violated", append(fields, zap.String("op", op), zap.Error(err))...)
	return err
}

// checkCaller refuses the pool's derived authorities as callers. Their asset accounts are the
// vault and the reward reserve.
func (c Core) checkCaller(actor address.Address, pool *models.Pool) error {
	if actor == pool.Authority || actor == c.Addresses.RewardReserveAuthority(pool.Address) {
		return ledger.Newf(ledger.CodeUnauthorized, "%s is a derived authority of pool %s", actor, pool.Address)
	}
	return nil
}

func notFound(kind string, addr address.Address) error {
	return ledger.Newf(ledger.CodeNotFound, "%s %s not found", kind, addr)
}

func loadPool(ctx context.Context, repo repository.Repository, addr address.Address) (*models.Pool, error) {
	p, err := repo.GetPool(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	if p == nil {
		return nil, notFound("pool", addr)
	}
	return p, nil
}

func loadStrategy(ctx context.Context, repo repository.Repository, addr address.Address) (*models.Strategy, error) {
	st, err := repo.GetStrategy(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	if st == nil {
		return nil, notFound("strategy", addr)
	}
	return st, nil
}

func loadDeposit(ctx context.Context, repo repository.Repository, addr address.Address) (*models.UserDeposit, error) {
	d, err := repo.GetUserDeposit(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("load deposit: %w", err)
	}
	if d == nil {
		return nil, notFound("deposit", addr)
	}
	return d, nil
}

func loadMint(ctx context.Context, repo repository.Repository, addr address.Address) (*models.Mint, error) {
	m, err := repo.GetMint(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("load mint: %w", err)
	}
	if m == nil {
		return nil, notFound("mint", addr)
	}
	return m, nil
}

// poolStrategy resolves the strategy a deposit is made against. The zero address is the default
// position and resolves to nil.
func poolStrategy(ctx context.Context, repo repository.Repository, pool *models.Pool, addr address.Address) (*models.Strategy, error) {
	if addr.IsZero() {
		return nil, nil
	}
	st, err := loadStrategy(ctx, repo, addr)
	if err != nil {
		return nil, err
	}
	if st.Asset != pool.AssetMint {
		return nil, ledger.Newf(ledger.CodeInvalidArgument, "strategy %s is for a different asset than pool %s", addr, pool.Address)
	}
	return st, nil
}

func rewardRate(st *models.Strategy) uint64 {
	if st == nil {
		return 0
	}
	return st.RewardAPYBps
}

// pendingYield is what accrued since the last checkpoint and is not yet in YieldEarned.
func pendingYield(dep *models.UserDeposit, st *models.Strategy, now time.Time) (uint64, error) {
	return ledger.AccruedYield(dep.Principal, rewardRate(st), now.Sub(dep.LastAccrualAt))
}

// checkpoint folds pending yield into YieldEarned and moves the accrual mark to now. It must run
// before any principal change so yield is never computed on a stale principal.
func checkpoint(dep *models.UserDeposit, st *models.Strategy, now time.Time) error {
	pending, err := pendingYield(dep, st, now)
	if err != nil {
		return err
	}
	earned, err := ledger.Add(dep.YieldEarned, pending)
	if err != nil {
		return err
	}
	dep.YieldEarned = earned
	if now.After(dep.LastAccrualAt) {
		dep.LastAccrualAt = now
	}
	return nil
}
