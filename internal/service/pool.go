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
	"yieldmarket/internal/repository"
)

// PoolService keeps principal bookkeeping. After every operation the pool vault balance equals
// TotalDeposited, which equals the sum of principal over the pool's deposits.
type PoolService struct {
	Core

	Catalog CatalogInvalidator
}

func (s *PoolService) InitializePool(ctx context.Context, owner, assetMint address.Address) (*models.Pool, error) {
	if owner.IsZero() {
		return nil, ledger.New(ledger.CodeInvalidArgument, "owner is required")
	}
	now := s.now()
	addr := s.Addresses.Pool(owner)
	authority := s.Addresses.PoolAuthority(addr)
	reserveAuthority := s.Addresses.RewardReserveAuthority(addr)

	var pool *models.Pool
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		existing, err := tx.GetPool(ctx, addr)
		if err != nil {
			return fmt.Errorf("load pool: %w", err)
		}
		if existing != nil {
			return ledger.Newf(ledger.CodeAlreadyExists, "pool for %s already exists", owner)
		}
		mint, err := loadMint(ctx, tx, assetMint)
		if err != nil {
			return err
		}
		if mint.Kind != models.MintKindAsset {
			return ledger.Newf(ledger.CodeNotFound, "asset %s not found", assetMint)
		}

		tk := s.tokens(tx, now, "initialize_pool", owner)
		vault, err := tk.openCustody(ctx, authority, assetMint)
		if err != nil {
			return err
		}
		reserve, err := tk.openCustody(ctx, reserveAuthority, assetMint)
		if err != nil {
			return err
		}
		pool = &models.Pool{
			Address:       addr,
			Owner:         owner,
			AssetMint:     assetMint,
			Authority:     authority,
			Vault:         vault.Address,
			RewardReserve: reserve.Address,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return tx.CreatePool(ctx, pool)
	})
	if err != nil {
		return nil, err
	}
	s.logger().Info("pool initialized", zap.String("pool", addr.String()), zap.String("owner", owner.String()))
	s.publish(events.TypePoolInitialized, addr, owner, now, map[string]any{"asset_mint": assetMint.String()})
	return pool, nil
}

func (s *PoolService) InitializeUserDeposit(ctx context.Context, user, poolAddr, strategyAddr address.Address) (*models.UserDeposit, error) {
	if user.IsZero() {
		return nil, ledger.New(ledger.CodeInvalidArgument, "user is required")
	}
	now := s.now()
	addr := s.Addresses.UserDeposit(user, poolAddr, strategyAddr)
	var dep *models.UserDeposit
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		pool, err := loadPool(ctx, tx, poolAddr)
		if err != nil {
			return err
		}
		if err := s.checkCaller(user, pool); err != nil {
			return err
		}
		st, err := poolStrategy(ctx, tx, pool, strategyAddr)
		if err != nil {
			return err
		}
		if st != nil && !st.Active {
			return ledger.Newf(ledger.CodeInactiveStrategy, "strategy %s is inactive", strategyAddr)
		}
		existing, err := tx.GetUserDeposit(ctx, addr)
		if err != nil {
			return fmt.Errorf("load deposit: %w", err)
		}
		if existing != nil {
			return ledger.Newf(ledger.CodeAlreadyExists, "deposit %s already exists", addr)
		}
		dep = newDeposit(addr, user, poolAddr, strategyAddr, now)
		return tx.CreateUserDeposit(ctx, dep)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.TypeDepositInitialized, addr, user, now, map[string]any{"pool": poolAddr.String(), "strategy": strategyAddr.String()})
	return dep, nil
}

func newDeposit(addr, user, pool, strategy address.Address, now time.Time) *models.UserDeposit {
	return &models.UserDeposit{
		Address:       addr,
		User:          user,
		Pool:          pool,
		Strategy:      strategy,
		DepositedAt:   now,
		LastAccrualAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Deposit moves amount from the user's asset account into the pool vault. The deposit record is
// created on first use. Topping up restarts the maturity clock.
func (s *PoolService) Deposit(ctx context.Context, user, poolAddr, strategyAddr address.Address, amount uint64) (*models.UserDeposit, error) {
	if amount == 0 {
		return nil, ledger.ErrInvalidAmount
	}
	if user.IsZero() {
		return nil, ledger.New(ledger.CodeInvalidArgument, "user is required")
	}
	now := s.now()
	addr := s.Addresses.UserDeposit(user, poolAddr, strategyAddr)
	var dep *models.UserDeposit
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		pool, err := loadPool(ctx, tx, poolAddr)
		if err != nil {
			return err
		}
		if err := s.checkCaller(user, pool); err != nil {
			return err
		}
		st, err := poolStrategy(ctx, tx, pool, strategyAddr)
		if err != nil {
			return err
		}
		if st != nil && !st.Active {
			return ledger.Newf(ledger.CodeInactiveStrategy, "strategy %s is inactive", strategyAddr)
		}
		tk := s.tokens(tx, now, "deposit", user).with("pool", poolAddr.String()).with("deposit", addr.String())
		src, err := tk.account(ctx, user, pool.AssetMint)
		if err != nil {
			return err
		}
		if src == nil || src.Balance < amount {
			return ledger.Newf(ledger.CodeInsufficientBalance, "user asset balance below %d", amount)
		}
		vault, err := tk.byAddress(ctx, pool.Vault)
		if err != nil {
			return s.reportInconsistent("deposit", err, zap.String("pool", poolAddr.String()))
		}

		existing, err := tx.GetUserDeposit(ctx, addr)
		if err != nil {
			return fmt.Errorf("load deposit: %w", err)
		}
		dep = existing
		if dep == nil {
			dep = newDeposit(addr, user, poolAddr, strategyAddr, now)
		}
		if err := checkpoint(dep, st, now); err != nil {
			return err
		}
		principal, err := ledger.Add(dep.Principal, amount)
		if err != nil {
			return err
		}
		poolTotal, err := ledger.Add(pool.TotalDeposited, amount)
		if err != nil {
			return err
		}
		var strategyTotal uint64
		if st != nil {
			if strategyTotal, err = ledger.Add(st.TotalDeposited, amount); err != nil {
				return err
			}
		}

		if err := tk.transfer(ctx, src, vault, amount); err != nil {
			return err
		}
		dep.Principal = principal
		dep.DepositedAt = now
		dep.LastAccrualAt = now
		dep.UpdatedAt = now
		if existing == nil {
			err = tx.CreateUserDeposit(ctx, dep)
		} else {
			err = tx.SaveUserDeposit(ctx, dep)
		}
		if err != nil {
			return fmt.Errorf("save deposit: %w", err)
		}
		pool.TotalDeposited = poolTotal
		pool.UpdatedAt = now
		if err := tx.SavePool(ctx, pool); err != nil {
			return fmt.Errorf("save pool: %w", err)
		}
		if st != nil {
			st.TotalDeposited = strategyTotal
			st.UpdatedAt = now
			if err := tx.SaveStrategy(ctx, st); err != nil {
				return fmt.Errorf("save strategy: %w", err)
			}
		}
		return tk.flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	invalidateCatalog(ctx, s.Catalog, strategyAddr)
	s.publish(events.TypeDeposited, addr, user, now, map[string]any{"pool": poolAddr.String(), "amount": amount, "principal": dep.Principal})
	return dep, nil
}

// Withdraw returns principal from the vault. It does not look at outstanding yield tokens.
func (s *PoolService) Withdraw(ctx context.Context, user, poolAddr, strategyAddr address.Address, amount uint64) (*models.UserDeposit, error) {
	if amount == 0 {
		return nil, ledger.ErrInvalidAmount
	}
	now := s.now()
	addr := s.Addresses.UserDeposit(user, poolAddr, strategyAddr)
	var dep *models.UserDeposit
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		pool, err := loadPool(ctx, tx, poolAddr)
		if err != nil {
			return err
		}
		if err := s.checkCaller(user, pool); err != nil {
			return err
		}
		dep, err = loadDeposit(ctx, tx, addr)
		if err != nil {
			return err
		}
		if amount > dep.Principal {
			return ledger.Newf(ledger.CodeInsufficientBalance, "principal %d below %d", dep.Principal, amount)
		}
		st, err := poolStrategy(ctx, tx, pool, strategyAddr)
		if err != nil {
			return err
		}
		tk := s.tokens(tx, now, "withdraw", user).with("pool", poolAddr.String()).with("deposit", addr.String())
		vault, err := tk.byAddress(ctx, pool.Vault)
		if err != nil {
			return s.reportInconsistent("withdraw", err, zap.String("pool", poolAddr.String()))
		}
		if vault.Balance < amount {
			return s.reportInconsistent("withdraw", ledger.ErrInsufficientVaultBalance,
				zap.String("pool", poolAddr.String()), zap.Uint64("vault", vault.Balance), zap.Uint64("amount", amount))
		}
		poolTotal, err := ledger.Sub(pool.TotalDeposited, amount)
		if err != nil {
			return s.reportInconsistent("withdraw", ledger.Wrap(ledger.CodeInconsistentState, "pool total below principal", err))
		}
		var strategyTotal uint64
		if st != nil {
			if strategyTotal, err = ledger.Sub(st.TotalDeposited, amount); err != nil {
				return s.reportInconsistent("withdraw", ledger.Wrap(ledger.CodeInconsistentState, "strategy total below principal", err))
			}
		}
		if err := checkpoint(dep, st, now); err != nil {
			return err
		}
		dst, err := tk.open(ctx, user, pool.AssetMint)
		if err != nil {
			return err
		}

		if err := tk.transfer(ctx, vault, dst, amount); err != nil {
			return err
		}
		dep.Principal -= amount
		dep.UpdatedAt = now
		if err := tx.SaveUserDeposit(ctx, dep); err != nil {
			return fmt.Errorf("save deposit: %w", err)
		}
		pool.TotalDeposited = poolTotal
		pool.UpdatedAt = now
		if err := tx.SavePool(ctx, pool); err != nil {
			return fmt.Errorf("save pool: %w", err)
		}
		if st != nil {
			st.TotalDeposited = strategyTotal
			st.UpdatedAt = now
			if err := tx.SaveStrategy(ctx, st); err != nil {
				return fmt.Errorf("save strategy: %w", err)
			}
		}
		return tk.flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	invalidateCatalog(ctx, s.Catalog, strategyAddr)
	s.publish(events.TypeWithdrawn, addr, user, now, map[string]any{"pool": poolAddr.String(), "amount": amount, "principal": dep.Principal})
	return dep, nil
}

// FundRewards moves asset from the pool owner into the reward reserve that pays accrued yield.
func (s *PoolService) FundRewards(ctx context.Context, caller, poolAddr address.Address, amount uint64) (*models.TokenAccount, error) {
	if amount == 0 {
		return nil, ledger.ErrInvalidAmount
	}
	now := s.now()
	var reserve *models.TokenAccount
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		pool, err := loadPool(ctx, tx, poolAddr)
		if err != nil {
			return err
		}
		if err := s.checkCaller(caller, pool); err != nil {
			return err
		}
		if caller != pool.Owner && !s.Admins.Has(caller) {
			return ledger.New(ledger.CodeUnauthorized, "only the pool owner can fund rewards")
		}
		tk := s.tokens(tx, now, "fund_rewards", caller).with("pool", poolAddr.String())
		src, err := tk.account(ctx, caller, pool.AssetMint)
		if err != nil {
			return err
		}
		if src == nil || src.Balance < amount {
			return ledger.Newf(ledger.CodeInsufficientBalance, "caller asset balance below %d", amount)
		}
		reserve, err = tk.byAddress(ctx, pool.RewardReserve)
		if err != nil {
			return s.reportInconsistent("fund_rewards", err, zap.String("pool", poolAddr.String()))
		}
		if err := tk.transfer(ctx, src, reserve, amount); err != nil {
			return err
		}
		return tk.flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.TypeRewardsFunded, poolAddr, caller, now, map[string]any{"amount": amount, "reserve": reserve.Balance})
	return reserve, nil
}

// GetUserBalance is the principal currently credited to user in the pool under strategy.
func (s *PoolService) GetUserBalance(ctx context.Context, user, poolAddr, strategyAddr address.Address) (uint64, error) {
	if _, err := loadPool(ctx, s.Repo, poolAddr); err != nil {
		return 0, err
	}
	dep, err := loadDeposit(ctx, s.Repo, s.Addresses.UserDeposit(user, poolAddr, strategyAddr))
	if err != nil {
		return 0, err
	}
	return dep.Principal, nil
}

func (s *PoolService) GetPool(ctx context.Context, addr address.Address) (*models.Pool, error) {
	return loadPool(ctx, s.Repo, addr)
}

// PoolOf returns the pool owned by owner.
func (s *PoolService) PoolOf(ctx context.Context, owner address.Address) (*models.Pool, error) {
	return loadPool(ctx, s.Repo, s.Addresses.Pool(owner))
}

func (s *PoolService) ListPools(ctx context.Context, afterID uint64, limit int) ([]models.Pool, error) {
	return s.Repo.ListPools(ctx, repository.ListPoolsParams{AfterID: afterID, Limit: limit})
}

func (s *PoolService) ListDeposits(ctx context.Context, params repository.ListUserDepositsParams) ([]models.UserDeposit, error) {
	return s.Repo.ListUserDeposits(ctx, params)
}
