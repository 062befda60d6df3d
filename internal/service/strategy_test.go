package service

import (
	"testing"

	"yieldmarket/internal/ledger"
	"yieldmarket/internal/models"
)

func TestCreateStrategyValidation(t *testing.T) {
	f := newFixture(t)
	base := CreateStrategyParams{Admin: adminAddr, Asset: f.usdc.Address, RewardAPYBps: 500, Name: "fixed"}

	p := base
	p.Admin = userAddr
	_, err := f.strategies.CreateStrategy(f.ctx, p)
	wantCode(t, err, ledger.CodeUnauthorized)

	p = base
	p.Name = "  "
	_, err = f.strategies.CreateStrategy(f.ctx, p)
	wantCode(t, err, ledger.CodeInvalidArgument)

	p = base
	p.RewardAPYBps = ledger.DefaultMaxRewardAPYBps + 1
	_, err = f.strategies.CreateStrategy(f.ctx, p)
	wantCode(t, err, ledger.CodeInvalidArgument)

	p = base
	p.Asset = testAddr(42)
	_, err = f.strategies.CreateStrategy(f.ctx, p)
	wantCode(t, err, ledger.CodeNotFound)

	st, err := f.strategies.CreateStrategy(f.ctx, base)
	if err != nil {
		t.Fatalf("create err=%v", err)
	}
	if st.MaturitySeconds != 60 || st.Sequence != 1 || !st.Active {
		t.Fatalf("strategy=%+v", st)
	}
	next, err := f.strategies.CreateStrategy(f.ctx, base)
	if err != nil {
		t.Fatalf("create next err=%v", err)
	}
	if next.Sequence != 2 || next.Address == st.Address {
		t.Fatalf("second strategy=%+v", next)
	}

	p = base
	p.Sequence = 1
	_, err = f.strategies.CreateStrategy(f.ctx, p)
	wantCode(t, err, ledger.CodeAlreadyExists)
}

func TestSetActive(t *testing.T) {
	f := newFixture(t)
	st := f.strategy(100, 60)

	_, err := f.strategies.SetActive(f.ctx, userAddr, st.Address, false)
	wantCode(t, err, ledger.CodeUnauthorized)

	got, err := f.strategies.SetActive(f.ctx, adminAddr, st.Address, false)
	if err != nil || got.Active {
		t.Fatalf("strategy=%+v err=%v", got, err)
	}
	ch, cancel := f.hub.Subscribe(4)
	defer cancel()
	if _, err := f.strategies.SetActive(f.ctx, adminAddr, st.Address, false); err != nil {
		t.Fatalf("repeat err=%v", err)
	}
	select {
	case ev := <-ch:
		t.Fatalf("unchanged strategy published %s", ev.Type)
	default:
	}
}

func TestFetchAllIsRestartable(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.strategy(uint64(100*(i+1)), 60)
	}
	for pass := 0; pass < 2; pass++ {
		n := 0
		var last uint64
		for st, err := range f.strategies.FetchAll(f.ctx) {
			if err != nil {
				t.Fatalf("fetch err=%v", err)
			}
			if st.ID <= last {
				t.Fatalf("out of order id=%d after=%d", st.ID, last)
			}
			last = st.ID
			n++
		}
		if n != 3 {
			t.Fatalf("pass %d saw %d strategies want=3", pass, n)
		}
	}

	seen := 0
	for range f.strategies.FetchAll(f.ctx) {
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("early stop saw=%d", seen)
	}
}

func TestSnapshotCachedUntilWrite(t *testing.T) {
	f := newFixture(t)
	f.strategy(100, 60)

	snap, err := f.strategies.Snapshot(f.ctx)
	if err != nil || len(snap) != 1 {
		t.Fatalf("snapshot=%d err=%v", len(snap), err)
	}

	// A row written behind the service's back stays invisible until the cache is invalidated.
	if err := f.repo.CreateStrategy(f.ctx, &models.Strategy{
		Address: testAddr(50), Owner: adminAddr, Asset: f.usdc.Address, Sequence: 99, Name: "side", Active: true,
	}); err != nil {
		t.Fatalf("direct create err=%v", err)
	}
	snap, _ = f.strategies.Snapshot(f.ctx)
	if len(snap) != 1 {
		t.Fatalf("cached snapshot=%d want=1", len(snap))
	}

	f.strategy(200, 60)
	snap, _ = f.strategies.Snapshot(f.ctx)
	if len(snap) != 3 {
		t.Fatalf("snapshot after create=%d want=3", len(snap))
	}
}

func TestSnapshotFollowsStrategyTotals(t *testing.T) {
	f := newFixture(t)
	f.fund(userAddr, 100)
	p := f.pool()
	st := f.strategy(100, 60)
	if _, err := f.strategies.Snapshot(f.ctx); err != nil {
		t.Fatalf("snapshot err=%v", err)
	}

	if _, err := f.pools.Deposit(f.ctx, userAddr, p.Address, st.Address, 100); err != nil {
		t.Fatalf("deposit err=%v", err)
	}
	snap, _ := f.strategies.Snapshot(f.ctx)
	if len(snap) != 1 || snap[0].TotalDeposited != 100 {
		t.Fatalf("snapshot after deposit=%+v want total=100", snap)
	}

	if _, err := f.pools.Withdraw(f.ctx, userAddr, p.Address, st.Address, 40); err != nil {
		t.Fatalf("withdraw err=%v", err)
	}
	snap, _ = f.strategies.Snapshot(f.ctx)
	if snap[0].TotalDeposited != 60 {
		t.Fatalf("snapshot total after withdraw=%d want=60", snap[0].TotalDeposited)
	}
}
