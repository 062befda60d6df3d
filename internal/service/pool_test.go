package service

import (
	"testing"

	"yieldmarket/internal/address"
	"yieldmarket/internal/ledger"
	"yieldmarket/internal/repository"
)

func TestDepositCreditsPrincipal(t *testing.T) {
	f := newFixture(t)
	f.fund(userAddr, 1_000)
	p := f.pool()

	if _, err := f.pools.Deposit(f.ctx, userAddr, p.Address, address.Zero, 100); err != nil {
		t.Fatalf("deposit err=%v", err)
	}
	got, err := f.pools.GetUserBalance(f.ctx, userAddr, p.Address, address.Zero)
	if err != nil {
		t.Fatalf("balance err=%v", err)
	}
	if got != 100 {
		t.Fatalf("principal=%d want=100", got)
	}
	if v := f.accountBalance(p.Vault); v != 100 {
		t.Fatalf("vault=%d want=100", v)
	}
	if v := f.balance(userAddr, f.usdc.Address); v != 900 {
		t.Fatalf("user balance=%d want=900", v)
	}
	f.mustClean()
}

func TestInitializePoolRules(t *testing.T) {
	f := newFixture(t)
	p := f.pool()
	if p.Vault == p.RewardReserve {
		t.Fatalf("vault and reward reserve share an account")
	}
	_, err := f.pools.InitializePool(f.ctx, ownerAddr, f.usdc.Address)
	wantCode(t, err, ledger.CodeAlreadyExists)

	_, err = f.pools.InitializePool(f.ctx, userAddr, testAddr(77))
	wantCode(t, err, ledger.CodeNotFound)

	got, err := f.pools.PoolOf(f.ctx, ownerAddr)
	if err != nil || got.Address != p.Address {
		t.Fatalf("pool of owner=%v err=%v", got, err)
	}
}

func TestDepositValidation(t *testing.T) {
	f := newFixture(t)
	f.fund(userAddr, 50)
	p := f.pool()

	_, err := f.pools.Deposit(f.ctx, userAddr, p.Address, address.Zero, 0)
	wantCode(t, err, ledger.CodeInvalidAmount)

	_, err = f.pools.Deposit(f.ctx, userAddr, p.Address, address.Zero, 51)
	wantCode(t, err, ledger.CodeInsufficientBalance)

	_, err = f.pools.Deposit(f.ctx, userAddr, testAddr(88), address.Zero, 10)
	wantCode(t, err, ledger.CodeNotFound)

	_, err = f.pools.Deposit(f.ctx, userAddr, p.Address, testAddr(99), 10)
	wantCode(t, err, ledger.CodeNotFound)

	if v := f.balance(userAddr, f.usdc.Address); v != 50 {
		t.Fatalf("user balance=%d want=50", v)
	}
	f.mustClean()
}

func TestDepositIntoInactiveStrategyRejected(t *testing.T) {
	f := newFixture(t)
	f.fund(userAddr, 100)
	p := f.pool()
	st := f.strategy(500, 60)
	if _, err := f.strategies.SetActive(f.ctx, adminAddr, st.Address, false); err != nil {
		t.Fatalf("deactivate err=%v", err)
	}
	_, err := f.pools.Deposit(f.ctx, userAddr, p.Address, st.Address, 10)
	wantCode(t, err, ledger.CodeInactiveStrategy)
}

func TestWithdrawRules(t *testing.T) {
	f := newFixture(t)
	f.fund(userAddr, 100)
	p := f.pool()
	if _, err := f.pools.Deposit(f.ctx, userAddr, p.Address, address.Zero, 100); err != nil {
		t.Fatalf("deposit err=%v", err)
	}

	_, err := f.pools.Withdraw(f.ctx, userAddr, p.Address, address.Zero, 101)
	wantCode(t, err, ledger.CodeInsufficientBalance)

	_, err = f.pools.Withdraw(f.ctx, buyerAddr, p.Address, address.Zero, 1)
	wantCode(t, err, ledger.CodeNotFound)

	dep, err := f.pools.Withdraw(f.ctx, userAddr, p.Address, address.Zero, 40)
	if err != nil {
		t.Fatalf("withdraw err=%v", err)
	}
	if dep.Principal != 60 {
		t.Fatalf("principal=%d want=60", dep.Principal)
	}
	if v := f.balance(userAddr, f.usdc.Address); v != 40 {
		t.Fatalf("user balance=%d want=40", v)
	}
	if _, err := f.pools.Withdraw(f.ctx, userAddr, p.Address, address.Zero, 60); err != nil {
		t.Fatalf("withdraw rest err=%v", err)
	}
	if v := f.accountBalance(p.Vault); v != 0 {
		t.Fatalf("vault=%d want=0", v)
	}
	f.mustClean()
}

func TestStrategyTotalsFollowPrincipal(t *testing.T) {
	f := newFixture(t)
	f.fund(userAddr, 300)
	p := f.pool()
	st := f.strategy(800, 60)

	if _, err := f.pools.Deposit(f.ctx, userAddr, p.Address, st.Address, 200); err != nil {
		t.Fatalf("deposit err=%v", err)
	}
	if _, err := f.pools.Deposit(f.ctx, userAddr, p.Address, address.Zero, 100); err != nil {
		t.Fatalf("deposit err=%v", err)
	}
	if _, err := f.pools.Withdraw(f.ctx, userAddr, p.Address, st.Address, 50); err != nil {
		t.Fatalf("withdraw err=%v", err)
	}
	got, err := f.strategies.GetStrategy(f.ctx, st.Address)
	if err != nil {
		t.Fatalf("strategy err=%v", err)
	}
	if got.TotalDeposited != 150 {
		t.Fatalf("strategy total=%d want=150", got.TotalDeposited)
	}
	pool, _ := f.pools.GetPool(f.ctx, p.Address)
	if pool.TotalDeposited != 250 {
		t.Fatalf("pool total=%d want=250", pool.TotalDeposited)
	}
	f.mustClean()
}

func TestInitializeUserDeposit(t *testing.T) {
	f := newFixture(t)
	p := f.pool()
	dep, err := f.pools.InitializeUserDeposit(f.ctx, userAddr, p.Address, address.Zero)
	if err != nil {
		t.Fatalf("init deposit err=%v", err)
	}
	if dep.Principal != 0 || dep.User != userAddr {
		t.Fatalf("deposit=%+v", dep)
	}
	_, err = f.pools.InitializeUserDeposit(f.ctx, userAddr, p.Address, address.Zero)
	wantCode(t, err, ledger.CodeAlreadyExists)

	items, err := f.pools.ListDeposits(f.ctx, repository.ListUserDepositsParams{Pool: &p.Address})
	if err != nil || len(items) != 1 {
		t.Fatalf("deposits=%d err=%v", len(items), err)
	}
}

func TestFundRewardsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	f.fund(ownerAddr, 500)
	f.fund(strangerAddr, 500)
	p := f.pool()

	_, err := f.pools.FundRewards(f.ctx, strangerAddr, p.Address, 100)
	wantCode(t, err, ledger.CodeUnauthorized)

	reserve, err := f.pools.FundRewards(f.ctx, ownerAddr, p.Address, 100)
	if err != nil {
		t.Fatalf("fund err=%v", err)
	}
	if reserve.Balance != 100 {
		t.Fatalf("reserve=%d want=100", reserve.Balance)
	}
	if v := f.accountBalance(p.RewardReserve); v != 100 {
		t.Fatalf("stored reserve=%d want=100", v)
	}
	f.mustClean()
}

func TestFailedDepositPublishesNothing(t *testing.T) {
	f := newFixture(t)
	p := f.pool()
	ch, cancel := f.hub.Subscribe(8)
	defer cancel()

	_, err := f.pools.Deposit(f.ctx, userAddr, p.Address, address.Zero, 10)
	wantCode(t, err, ledger.CodeInsufficientBalance)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %s", ev.Type)
	default:
	}
}

func TestDerivedAuthoritiesCannotAct(t *testing.T) {
	f := newFixture(t)
	f.fund(userAddr, 100)
	p := f.pool()
	if _, err := f.pools.Deposit(f.ctx, userAddr, p.Address, address.Zero, 100); err != nil {
		t.Fatalf("deposit err=%v", err)
	}
	reserveAuthority := f.pools.Addresses.RewardReserveAuthority(p.Address)
	other, err := f.pools.InitializePool(f.ctx, strangerAddr, f.usdc.Address)
	if err != nil {
		t.Fatalf("second pool err=%v", err)
	}

	_, err = f.pools.Deposit(f.ctx, p.Authority, p.Address, address.Zero, 100)
	wantCode(t, err, ledger.CodeUnauthorized)
	_, err = f.pools.Deposit(f.ctx, other.Authority, p.Address, address.Zero, 1)
	wantCode(t, err, ledger.CodeUnauthorized)
	_, err = f.pools.InitializeUserDeposit(f.ctx, reserveAuthority, p.Address, address.Zero)
	wantCode(t, err, ledger.CodeUnauthorized)
	_, err = f.pools.Withdraw(f.ctx, p.Authority, p.Address, address.Zero, 1)
	wantCode(t, err, ledger.CodeUnauthorized)
	_, err = f.pools.FundRewards(f.ctx, reserveAuthority, p.Address, 1)
	wantCode(t, err, ledger.CodeUnauthorized)
	_, err = f.yield.MintYieldToken(f.ctx, p.Authority, p.Address, address.Zero, 1)
	wantCode(t, err, ledger.CodeUnauthorized)
	_, err = f.yield.Redeem(f.ctx, reserveAuthority, p.Address, address.Zero, 1)
	wantCode(t, err, ledger.CodeUnauthorized)
	_, err = f.assets.Airdrop(f.ctx, adminAddr, f.usdc.Address, p.Authority, 5)
	wantCode(t, err, ledger.CodeUnauthorized)

	if v := f.accountBalance(p.Vault); v != 100 {
		t.Fatalf("vault=%d want=100", v)
	}
	got, _ := f.pools.GetPool(f.ctx, p.Address)
	if got.TotalDeposited != 100 {
		t.Fatalf("total=%d want=100", got.TotalDeposited)
	}
	f.mustClean()
}
