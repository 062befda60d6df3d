package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"yieldmarket/internal/address"
	"yieldmarket/internal/events"
	"yieldmarket/internal/ledger"
	"yieldmarket/internal/models"
	"yieldmarket/internal/paas"
	"yieldmarket/internal/repository"
)

// YieldService issues and redeems yield tokens (YT), the transferable receipts for a position's
// principal and the yield it accrues.
type YieldService struct {
	Core

	Catalog CatalogInvalidator
}

// Position is a read view of one deposit with yield evaluated at At.
type Position struct {
	Deposit      models.UserDeposit `json:"deposit"`
	PendingYield uint64             `json:"pending_yield"`
	// TotalYield is YieldEarned plus PendingYield.
	TotalYield   uint64          `json:"total_yield"`
	Mintable     uint64          `json:"mintable"`
	YieldMint    address.Address `json:"yield_mint"`
	RewardAPYBps uint64          `json:"reward_apy_bps"`
	MaturesAt    time.Time       `json:"matures_at"`
	Matured      bool            `json:"matured"`
	At           time.Time       `json:"at"`
}

type RedeemResult struct {
	Deposit    models.UserDeposit `json:"deposit"`
	Burned     uint64             `json:"burned"`
	Principal  uint64             `json:"principal"`
	YieldPaid  uint64             `json:"yield_paid"`
	YieldOwed  uint64             `json:"yield_owed"`
	AssetMint  address.Address    `json:"asset_mint"`
	RedeemedAt time.Time          `json:"redeemed_at"`
}

func receiptStrategy(ctx context.Context, repo repository.Repository, pool *models.Pool, addr address.Address) (*models.Strategy, error) {
	if addr.IsZero() {
		return nil, ledger.New(ledger.CodeInvalidArgument, "the default position has no yield tokens")
	}
	return poolStrategy(ctx, repo, pool, addr)
}

// MintYieldToken issues amount YT against the unminted part of the user's principal. The YT mint for
// (pool, strategy) is created on first use with the asset's decimals.
func (s *YieldService) MintYieldToken(ctx context.Context, user, poolAddr, strategyAddr address.Address, amount uint64) (*models.TokenAccount, error) {
	if amount == 0 {
		return nil, ledger.ErrInvalidAmount
	}
	now := s.now()
	depAddr := s.Addresses.UserDeposit(user, poolAddr, strategyAddr)
	var out *models.TokenAccount
	var ytMint address.Address
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		pool, err := loadPool(ctx, tx, poolAddr)
		if err != nil {
			return err
		}
		if err := s.checkCaller(user, pool); err != nil {
			return err
		}
		st, err := receiptStrategy(ctx, tx, pool, strategyAddr)
		if err != nil {
			return err
		}
		if !st.Active {
			return ledger.Newf(ledger.CodeInactiveStrategy, "strategy %s is inactive", strategyAddr)
		}
		dep, err := loadDeposit(ctx, tx, depAddr)
		if err != nil {
			return err
		}
		if dep.YieldMinted > dep.Principal || dep.Principal-dep.YieldMinted < amount {
			return ledger.Newf(ledger.CodeInsufficientBalance, "unminted principal below %d", amount)
		}
		minted, err := ledger.Add(dep.YieldMinted, amount)
		if err != nil {
			return err
		}

		mint, err := s.yieldMint(ctx, tx, pool, st, now)
		if err != nil {
			return err
		}
		ytMint = mint.Address
		tk := s.tokens(tx, now, "mint_yield_token", user).with("deposit", depAddr.String())
		acc, err := tk.open(ctx, user, mint.Address)
		if err != nil {
			return err
		}
		if err := tk.mintTo(ctx, mint, acc, amount); err != nil {
			return err
		}
		dep.YieldMinted = minted
		dep.UpdatedAt = now
		if err := tx.SaveUserDeposit(ctx, dep); err != nil {
			return fmt.Errorf("save deposit: %w", err)
		}
		out = acc
		return tk.flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.TypeYieldMinted, depAddr, user, now, map[string]any{"yield_mint": ytMint.String(), "amount": amount})
	return out, nil
}

func (s *YieldService) yieldMint(ctx context.Context, tx repository.Repository, pool *models.Pool, st *models.Strategy, now time.Time) (*models.Mint, error) {
	addr := s.Addresses.YieldMint(pool.Address, st.Address)
	m, err := tx.GetMint(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("load yield mint: %w", err)
	}
	if m != nil {
		return m, nil
	}
	asset, err := loadMint(ctx, tx, pool.AssetMint)
	if err != nil {
		return nil, err
	}
	m = &models.Mint{
		Address:    addr,
		Symbol:     "yt" + asset.Symbol,
		Kind:       models.MintKindYield,
		Decimals:   asset.Decimals,
		Authority:  pool.Authority,
		Underlying: asset.Address,
		Pool:       pool.Address,
		Strategy:   st.Address,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.CreateMint(ctx, m); err != nil {
		return nil, fmt.Errorf("create yield mint: %w", err)
	}
	return m, nil
}

// Redeem burns matured YT for the same amount of principal plus the position's accrued yield.
// Yield is paid from the pool's reward reserve up to its balance; anything the reserve cannot
// cover is forfeited along with the rest of YieldEarned.
func (s *YieldService) Redeem(ctx context.Context, user, poolAddr, strategyAddr address.Address, ytAmount uint64) (*RedeemResult, error) {
	if ytAmount == 0 {
		return nil, ledger.ErrInvalidAmount
	}
	now := s.now()
	depAddr := s.Addresses.UserDeposit(user, poolAddr, strategyAddr)
	res := &RedeemResult{Burned: ytAmount, Principal: ytAmount, RedeemedAt: now}
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		pool, err := loadPool(ctx, tx, poolAddr)
		if err != nil {
			return err
		}
		if err := s.checkCaller(user, pool); err != nil {
			return err
		}
		st, err := receiptStrategy(ctx, tx, pool, strategyAddr)
		if err != nil {
			return err
		}
		dep, err := loadDeposit(ctx, tx, depAddr)
		if err != nil {
			return err
		}
		mint, err := loadMint(ctx, tx, s.Addresses.YieldMint(poolAddr, strategyAddr))
		if err != nil {
			return err
		}
		if maturesAt := dep.DepositedAt.Add(st.Maturity()); now.Before(maturesAt) {
			return ledger.Newf(ledger.CodeNotMatured, "position matures at %s", maturesAt.UTC().Format(time.RFC3339))
		}

		tk := s.tokens(tx, now, "redeem", user).with("deposit", depAddr.String())
		ytAcc, err := tk.account(ctx, user, mint.Address)
		if err != nil {
			return err
		}
		if ytAcc == nil || ytAcc.Balance < ytAmount {
			return ledger.Newf(ledger.CodeInsufficientBalance, "yield token balance below %d", ytAmount)
		}
		if dep.Principal < ytAmount {
			return ledger.Newf(ledger.CodeInsufficientBalance, "principal %d below %d", dep.Principal, ytAmount)
		}
		vault, err := tk.byAddress(ctx, pool.Vault)
		if err != nil {
			return s.reportInconsistent("redeem", err, zap.String("pool", poolAddr.String()))
		}
		if vault.Balance < ytAmount {
			return s.reportInconsistent("redeem", ledger.ErrInsufficientVaultBalance,
				zap.String("pool", poolAddr.String()), zap.Uint64("vault", vault.Balance), zap.Uint64("amount", ytAmount))
		}
		reserve, err := tk.byAddress(ctx, pool.RewardReserve)
		if err != nil {
			return s.reportInconsistent("redeem", err, zap.String("pool", poolAddr.String()))
		}
		poolTotal, err := ledger.Sub(pool.TotalDeposited, ytAmount)
		if err != nil {
			return s.reportInconsistent("redeem", ledger.Wrap(ledger.CodeInconsistentState, "pool total below principal", err))
		}
		strategyTotal, err := ledger.Sub(st.TotalDeposited, ytAmount)
		if err != nil {
			return s.reportInconsistent("redeem", ledger.Wrap(ledger.CodeInconsistentState, "strategy total below principal", err))
		}
		if err := checkpoint(dep, st, now); err != nil {
			return err
		}
		res.YieldOwed = dep.YieldEarned
		res.YieldPaid = ledger.Min(dep.YieldEarned, reserve.Balance)
		dst, err := tk.open(ctx, user, pool.AssetMint)
		if err != nil {
			return err
		}

		if err := tk.burn(ctx, mint, ytAcc, ytAmount); err != nil {
			return err
		}
		if err := tk.transfer(ctx, vault, dst, ytAmount); err != nil {
			return err
		}
		if err := tk.transfer(ctx, reserve, dst, res.YieldPaid); err != nil {
			return err
		}
		dep.Principal -= ytAmount
		dep.YieldEarned = 0
		dep.YieldMinted -= ledger.Min(dep.YieldMinted, ytAmount)
		dep.UpdatedAt = now
		if err := tx.SaveUserDeposit(ctx, dep); err != nil {
			return fmt.Errorf("save deposit: %w", err)
		}
		pool.TotalDeposited = poolTotal
		pool.UpdatedAt = now
		if err := tx.SavePool(ctx, pool); err != nil {
			return fmt.Errorf("save pool: %w", err)
		}
		st.TotalDeposited = strategyTotal
		st.UpdatedAt = now
		if err := tx.SaveStrategy(ctx, st); err != nil {
			return fmt.Errorf("save strategy: %w", err)
		}
		res.Deposit = *dep
		res.AssetMint = pool.AssetMint
		return tk.flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	if res.YieldPaid < res.YieldOwed {
		s.logger().Warn("reward reserve short on redeem",
			zap.String("pool", poolAddr.String()),
			zap.Uint64("owed", res.YieldOwed),
			zap.Uint64("paid", res.YieldPaid),
		)
	}
	invalidateCatalog(ctx, s.Catalog, strategyAddr)
	s.publish(events.TypeRedeemed, depAddr, user, now, map[string]any{
		"burned": ytAmount, "principal": res.Principal, "yield_paid": res.YieldPaid,
	})
	return res, nil
}

// ResetUserYield clears a position's accrued yield. Only the pool owner or an admin may call it.
// A position with nothing stored and nothing pending is left untouched.
func (s *YieldService) ResetUserYield(ctx context.Context, caller, depAddr address.Address) (*models.UserDeposit, error) {
	now := s.now()
	var dep *models.UserDeposit
	var cleared uint64
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		var err error
		dep, err = loadDeposit(ctx, tx, depAddr)
		if err != nil {
			return err
		}
		pool, err := loadPool(ctx, tx, dep.Pool)
		if err != nil {
			return err
		}
		if caller != pool.Owner && !s.Admins.Has(caller) {
			return ledger.New(ledger.CodeUnauthorized, "only the pool owner can reset yield")
		}
		st, err := poolStrategy(ctx, tx, pool, dep.Strategy)
		if err != nil {
			return err
		}
		pending, err := pendingYield(dep, st, now)
		if err != nil {
			return err
		}
		if dep.YieldEarned == 0 && pending == 0 {
			return nil
		}
		if err := checkpoint(dep, st, now); err != nil {
			return err
		}
		cleared = dep.YieldEarned
		dep.YieldEarned = 0
		dep.UpdatedAt = now
		return tx.SaveUserDeposit(ctx, dep)
	})
	if err != nil {
		return nil, err
	}
	if cleared == 0 {
		return dep, nil
	}
	s.logger().Info("user yield reset",
		zap.String("deposit", depAddr.String()),
		zap.String("caller", caller.String()),
		zap.Uint64("cleared", cleared),
	)
	paas.LogBestEffortCtx(ctx, "reset_user_yield", "warn", map[string]any{
		"deposit": depAddr.String(),
		"caller":  caller.String(),
		"cleared": cleared,
	})
	s.publish(events.TypeYieldReset, depAddr, caller, now, map[string]any{"cleared": cleared})
	return dep, nil
}

// Position evaluates a deposit's yield as of now without writing anything.
func (s *YieldService) Position(ctx context.Context, depAddr address.Address) (*Position, error) {
	now := s.now()
	dep, err := loadDeposit(ctx, s.Repo, depAddr)
	if err != nil {
		return nil, err
	}
	pool, err := loadPool(ctx, s.Repo, dep.Pool)
	if err != nil {
		return nil, err
	}
	st, err := poolStrategy(ctx, s.Repo, pool, dep.Strategy)
	if err != nil {
		return nil, err
	}
	pending, err := pendingYield(dep, st, now)
	if err != nil {
		return nil, err
	}
	total, err := ledger.Add(dep.YieldEarned, pending)
	if err != nil {
		return nil, err
	}
	p := &Position{
		Deposit:      *dep,
		PendingYield: pending,
		TotalYield:   total,
		RewardAPYBps: rewardRate(st),
		MaturesAt:    dep.DepositedAt,
		At:           now,
	}
	if st != nil {
		p.MaturesAt = dep.DepositedAt.Add(st.Maturity())
		p.YieldMint = s.Addresses.YieldMint(pool.Address, st.Address)
		if dep.Principal > dep.YieldMinted {
			p.Mintable = dep.Principal - dep.YieldMinted
		}
	}
	p.Matured = !now.Before(p.MaturesAt)
	return p, nil
}
