package service

import (
	"testing"

	"yieldmarket/internal/ledger"
	"yieldmarket/internal/repository"
)

func TestTransferToSameAccountFails(t *testing.T) {
	f := newFixture(t)
	f.fund(userAddr, 10)
	err := f.repo.InTx(f.ctx, func(tx repository.Repository) error {
		tk := f.pools.tokens(tx, t0, "self_transfer", userAddr)
		acc, err := tk.account(f.ctx, userAddr, f.usdc.Address)
		if err != nil {
			return err
		}
		return tk.transfer(f.ctx, acc, acc, 5)
	})
	wantCode(t, err, ledger.CodeInconsistentState)
	if v := f.balance(userAddr, f.usdc.Address); v != 10 {
		t.Fatalf("balance=%d want=10", v)
	}
}

func TestCustodyAccountCannotBePreopened(t *testing.T) {
	f := newFixture(t)
	authority := f.pools.Addresses.PoolAuthority(f.pools.Addresses.Pool(ownerAddr))
	f.fund(authority, 5)

	_, err := f.pools.InitializePool(f.ctx, ownerAddr, f.usdc.Address)
	wantCode(t, err, ledger.CodeInconsistentState)
	if p, _ := f.repo.GetPool(f.ctx, f.pools.Addresses.Pool(ownerAddr)); p != nil {
		t.Fatalf("pool created over a caller-held vault")
	}
}
