package memoryrepository

import (
	"context"
	"errors"
	"testing"
	"time"

	"yieldmarket/internal/address"
	"yieldmarket/internal/models"
	"yieldmarket/internal/repository"
)

func addr(b byte) address.Address {
	var a address.Address
	a[0] = b
	return a
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreateMint(ctx, &models.Mint{Address: addr(1), Symbol: "USDC", Kind: models.MintKindAsset}); err != nil {
		t.Fatalf("create err=%v", err)
	}
	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx repository.Repository) error {
		m, _ := tx.GetMint(ctx, addr(1))
		m.Supply = 500
		if err := tx.SaveMint(ctx, m); err != nil {
			return err
		}
		if err := tx.CreateMint(ctx, &models.Mint{Address: addr(2), Symbol: "SOL", Kind: models.MintKindAsset}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want=boom", err)
	}
	m, _ := s.GetMint(ctx, addr(1))
	if m.Supply != 0 {
		t.Fatalf("supply=%d want=0 after rollback", m.Supply)
	}
	if m2, _ := s.GetMint(ctx, addr(2)); m2 != nil {
		t.Fatalf("mint created inside failed tx survived")
	}
}

func TestReadsOutsideTxSeeOnlyCommittedState(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreateTokenAccount(ctx, &models.TokenAccount{Address: addr(4), Owner: addr(5), Mint: addr(1), Balance: 10}); err != nil {
		t.Fatalf("create err=%v", err)
	}
	written := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.InTx(ctx, func(tx repository.Repository) error {
			acc, _ := tx.GetTokenAccount(ctx, addr(4))
			acc.Balance = 999
			if err := tx.SaveTokenAccount(ctx, acc); err != nil {
				return err
			}
			if got, _ := tx.GetTokenAccount(ctx, addr(4)); got.Balance != 999 {
				return errors.New("tx does not see its own write")
			}
			close(written)
			<-release
			return errors.New("abort")
		})
	}()

	<-written
	acc, err := s.GetTokenAccount(ctx, addr(4))
	if err != nil {
		t.Fatalf("get err=%v", err)
	}
	if acc.Balance != 10 {
		t.Fatalf("balance=%d want=10 while tx is open", acc.Balance)
	}
	close(release)
	if err := <-done; err == nil || err.Error() != "abort" {
		t.Fatalf("tx err=%v want=abort", err)
	}
	if acc, _ := s.GetTokenAccount(ctx, addr(4)); acc.Balance != 10 {
		t.Fatalf("balance=%d want=10 after abort", acc.Balance)
	}
}

func TestInTxCommitsAndNests(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.InTx(ctx, func(tx repository.Repository) error {
		return tx.InTx(ctx, func(inner repository.Repository) error {
			return inner.CreatePool(ctx, &models.Pool{Address: addr(3)})
		})
	})
	if err != nil {
		t.Fatalf("tx err=%v", err)
	}
	if p, _ := s.GetPool(ctx, addr(3)); p == nil || p.ID != 1 {
		t.Fatalf("pool=%+v", p)
	}
}

func TestGetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreateTokenAccount(ctx, &models.TokenAccount{Address: addr(4), Balance: 10}); err != nil {
		t.Fatalf("create err=%v", err)
	}
	a, _ := s.GetTokenAccount(ctx, addr(4))
	a.Balance = 99
	b, _ := s.GetTokenAccount(ctx, addr(4))
	if b.Balance != 10 {
		t.Fatalf("balance=%d want=10", b.Balance)
	}
	if err := s.CreateTokenAccount(ctx, &models.TokenAccount{Address: addr(4)}); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestListListingsOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := []uint64{30, 10, 20}
	for i, p := range prices {
		l := &models.Listing{Address: addr(byte(10 + i)), Price: p, Active: true, CreatedAt: now, ExpiresAt: now.Add(time.Duration(i) * time.Hour)}
		if err := s.CreateListing(ctx, l); err != nil {
			t.Fatalf("create err=%v", err)
		}
	}
	asc := true
	items, _ := s.ListListings(ctx, repository.ListListingsParams{OrderBy: "price", Asc: &asc})
	if len(items) != 3 || items[0].Price != 10 || items[2].Price != 30 {
		t.Fatalf("price asc=%+v", items)
	}
	items, _ = s.ListListings(ctx, repository.ListListingsParams{OrderBy: "expires_at"})
	if items[0].Address != addr(12) {
		t.Fatalf("expires desc first=%s", items[0].Address)
	}
	cutoff := now.Add(90 * time.Minute)
	items, _ = s.ListListings(ctx, repository.ListListingsParams{ExpiredBefore: &cutoff})
	if len(items) != 2 {
		t.Fatalf("expired before cutoff=%d want=2", len(items))
	}
	if n, _ := s.NextListingNonce(ctx, addr(1)); n != 0 {
		t.Fatalf("first nonce=%d", n)
	}
	if n, _ := s.NextListingNonce(ctx, addr(1)); n != 1 {
		t.Fatalf("second nonce=%d", n)
	}
}
