package service

import (
	"context"
	"testing"
	"time"

	"yieldmarket/internal/address"
	"yieldmarket/internal/cache"
	"yieldmarket/internal/config"
	"yieldmarket/internal/events"
	"yieldmarket/internal/ledger"
	"yieldmarket/internal/models"
	memoryrepository "yieldmarket/internal/repository/memory"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testAddr(b byte) address.Address {
	var a address.Address
	for i := range a {
		a[i] = b
	}
	return a
}

var (
	adminAddr    = testAddr(1)
	ownerAddr    = testAddr(2)
	userAddr     = testAddr(3)
	buyerAddr    = testAddr(4)
	strangerAddr = testAddr(5)
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	repo  *memoryrepository.Store
	clock *ledger.ManualClock
	hub   *events.Hub

	settings   *SystemSettingsService
	assets     *AssetService
	pools      *PoolService
	strategies *StrategyService
	yield      *YieldService
	market     *MarketplaceService
	audit      *AuditService

	usdc *models.Mint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		repo:  memoryrepository.New(),
		clock: ledger.NewManualClock(t0),
		hub:   events.NewHub(),
	}
	core := Core{
		Repo:      f.repo,
		Clock:     f.clock,
		Addresses: address.Deriver{Namespace: testAddr(9)},
		Events:    f.hub,
		Admins:    Admins{adminAddr: {}},
	}
	f.settings = &SystemSettingsService{Repo: f.repo, Clock: f.clock}
	f.assets = &AssetService{Core: core}
	f.pools = &PoolService{Core: core}
	f.strategies = &StrategyService{Core: core, Cache: cache.NewMemoryStore(), CacheTTL: time.Minute}
	f.pools.Catalog = f.strategies
	f.yield = &YieldService{Core: core, Catalog: f.strategies}
	f.market = &MarketplaceService{Core: core, ListingTTL: time.Hour, Flags: f.settings}
	f.audit = &AuditService{Core: core, Flags: f.settings}

	if err := f.settings.EnsureDefaultSwitches(f.ctx); err != nil {
		t.Fatalf("switches err=%v", err)
	}
	if err := f.assets.SeedAssets(f.ctx, []config.AssetConfig{{Symbol: "USDC", Decimals: 6}}); err != nil {
		t.Fatalf("seed err=%v", err)
	}
	usdc, err := f.assets.GetMintBySymbol(f.ctx, "USDC")
	if err != nil {
		t.Fatalf("usdc err=%v", err)
	}
	f.usdc = usdc
	return f
}

func (f *fixture) fund(owner address.Address, amount uint64) {
	f.t.Helper()
	if _, err := f.assets.Airdrop(f.ctx, adminAddr, f.usdc.Address, owner, amount); err != nil {
		f.t.Fatalf("airdrop err=%v", err)
	}
}

func (f *fixture) pool() *models.Pool {
	f.t.Helper()
	p, err := f.pools.InitializePool(f.ctx, ownerAddr, f.usdc.Address)
	if err != nil {
		f.t.Fatalf("init pool err=%v", err)
	}
	return p
}

func (f *fixture) strategy(apyBps, maturitySeconds uint64) *models.Strategy {
	f.t.Helper()
	st, err := f.strategies.CreateStrategy(f.ctx, CreateStrategyParams{
		Admin:           adminAddr,
		Asset:           f.usdc.Address,
		RewardAPYBps:    apyBps,
		MaturitySeconds: maturitySeconds,
		Name:            "fixed",
	})
	if err != nil {
		f.t.Fatalf("create strategy err=%v", err)
	}
	return st
}

func (f *fixture) balance(owner, mint address.Address) uint64 {
	f.t.Helper()
	v, err := f.assets.BalanceOf(f.ctx, owner, mint)
	if err != nil {
		f.t.Fatalf("balance err=%v", err)
	}
	return v
}

func (f *fixture) accountBalance(addr address.Address) uint64 {
	f.t.Helper()
	acc, err := f.repo.GetTokenAccount(f.ctx, addr)
	if err != nil {
		f.t.Fatalf("token account err=%v", err)
	}
	if acc == nil {
		return 0
	}
	return acc.Balance
}

func (f *fixture) deposit(p *models.Pool, st address.Address) *models.UserDeposit {
	f.t.Helper()
	d, err := f.repo.GetUserDeposit(f.ctx, f.pools.Addresses.UserDeposit(userAddr, p.Address, st))
	if err != nil || d == nil {
		f.t.Fatalf("deposit=%v err=%v", d, err)
	}
	return d
}

func (f *fixture) ytMint(p *models.Pool, st address.Address) address.Address {
	return f.pools.Addresses.YieldMint(p.Address, st)
}

// mustClean fails the test if the invariant audit reports anything.
func (f *fixture) mustClean() {
	f.t.Helper()
	report, err := f.audit.Audit(f.ctx)
	if err != nil {
		f.t.Fatalf("audit err=%v", err)
	}
	if !report.OK() {
		f.t.Fatalf("audit findings=%+v", report.Findings)
	}
}

func wantCode(t *testing.T, err error, code ledger.Code) {
	t.Helper()
	if got := ledger.CodeOf(err); got != code {
		t.Fatalf("code=%v want=%v (err=%v)", got, code, err)
	}
}
