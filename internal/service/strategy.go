package service

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"

	"yieldmarket/internal/address"
	"yieldmarket/internal/cache"
	"yieldmarket/internal/events"
	"yieldmarket/internal/ledger"
	"yieldmarket/internal/models"
	"yieldmarket/internal/repository"
)

const (
	strategySnapshotKey = "strategies:snapshot"
	strategyPageSize    = 200

	maxStrategyName        = 64
	maxStrategyDescription = 512
)

type StrategyService struct {
	Core

	Cache    cache.Store
	CacheTTL time.Duration

	// MaxRewardAPYBps caps reward rates; zero means ledger.DefaultMaxRewardAPYBps.
	MaxRewardAPYBps uint64
	DefaultMaturity time.Duration
}

type CreateStrategyParams struct {
	Admin           address.Address
	Asset           address.Address
	RewardAPYBps    uint64
	MaturitySeconds uint64
	Name            string
	Description     string
	// Sequence zero takes the next free sequence for (Asset, Admin).
	Sequence uint64
}

func (s *StrategyService) maxAPY() uint64 {
	if s.MaxRewardAPYBps == 0 {
		return ledger.DefaultMaxRewardAPYBps
	}
	return s.MaxRewardAPYBps
}

func (s *StrategyService) defaultMaturitySeconds() uint64 {
	if s.DefaultMaturity <= 0 {
		return 60
	}
	return uint64(s.DefaultMaturity / time.Second)
}

func (s *StrategyService) CreateStrategy(ctx context.Context, p CreateStrategyParams) (*models.Strategy, error) {
	if !s.Admins.Has(p.Admin) {
		return nil, ledger.New(ledger.CodeUnauthorized, "only admins can create strategies")
	}
	name := strings.TrimSpace(p.Name)
	if name == "" || len(name) > maxStrategyName {
		return nil, ledger.Newf(ledger.CodeInvalidArgument, "name must be 1-%d characters", maxStrategyName)
	}
	desc := strings.TrimSpace(p.Description)
	if len(desc) > maxStrategyDescription {
		return nil, ledger.Newf(ledger.CodeInvalidArgument, "description must be at most %d characters", maxStrategyDescription)
	}
	if p.RewardAPYBps > s.maxAPY() {
		return nil, ledger.Newf(ledger.CodeInvalidArgument, "reward apy %d bps above limit %d", p.RewardAPYBps, s.maxAPY())
	}
	maturity := p.MaturitySeconds
	if maturity == 0 {
		maturity = s.defaultMaturitySeconds()
	}

	now := s.now()
	var st *models.Strategy
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		mint, err := loadMint(ctx, tx, p.Asset)
		if err != nil {
			return err
		}
		if mint.Kind != models.MintKindAsset {
			return ledger.Newf(ledger.CodeInvalidArgument, "mint %s is not an asset mint", p.Asset)
		}
		seq := p.Sequence
		if seq == 0 {
			last, found, err := tx.MaxStrategySequence(ctx, p.Asset, p.Admin)
			if err != nil {
				return fmt.Errorf("next strategy sequence: %w", err)
			}
			seq = 1
			if found {
				if seq, err = ledger.Add(last, 1); err != nil {
					return err
				}
			}
		}
		addr := s.Addresses.Strategy(p.Asset, p.Admin, seq)
		existing, err := tx.GetStrategy(ctx, addr)
		if err != nil {
			return fmt.Errorf("load strategy: %w", err)
		}
		if existing != nil {
			return ledger.Newf(ledger.CodeAlreadyExists, "strategy %d already exists for this asset", seq)
		}
		st = &models.Strategy{
			Address:         addr,
			Owner:           p.Admin,
			Asset:           p.Asset,
			Sequence:        seq,
			Name:            name,
			Description:     desc,
			RewardAPYBps:    p.RewardAPYBps,
			MaturitySeconds: maturity,
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return tx.CreateStrategy(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx)
	s.logger().Info("strategy created",
		zap.String("strategy", st.Address.String()),
		zap.String("name", st.Name),
		zap.Uint64("reward_apy_bps", st.RewardAPYBps),
		zap.Uint64("maturity_seconds", st.MaturitySeconds),
	)
	s.publish(events.TypeStrategyCreated, st.Address, p.Admin, now, map[string]any{
		"asset": p.Asset.String(), "sequence": st.Sequence, "reward_apy_bps": st.RewardAPYBps,
	})
	return st, nil
}

// SetActive toggles whether new deposits and receipts are accepted. Existing positions keep accruing.
func (s *StrategyService) SetActive(ctx context.Context, caller, addr address.Address, active bool) (*models.Strategy, error) {
	now := s.now()
	var st *models.Strategy
	changed := false
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		var err error
		st, err = loadStrategy(ctx, tx, addr)
		if err != nil {
			return err
		}
		if caller != st.Owner && !s.Admins.Has(caller) {
			return ledger.New(ledger.CodeUnauthorized, "only the strategy owner can change it")
		}
		if st.Active == active {
			return nil
		}
		st.Active = active
		st.UpdatedAt = now
		changed = true
		return tx.SaveStrategy(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.Invalidate(ctx)
		s.publish(events.TypeStrategyUpdated, addr, caller, now, map[string]any{"active": active})
	}
	return st, nil
}

func (s *StrategyService) GetStrategy(ctx context.Context, addr address.Address) (*models.Strategy, error) {
	return loadStrategy(ctx, s.Repo, addr)
}

// FetchAll walks every strategy in creation order, one store page at a time. Ranging over the
// sequence again starts a fresh walk.
func (s *StrategyService) FetchAll(ctx context.Context) iter.Seq2[models.Strategy, error] {
	return func(yield func(models.Strategy, error) bool) {
		var after uint64
		for {
			page, err := s.Repo.ListStrategies(ctx, repository.ListStrategiesParams{AfterID: after, Limit: strategyPageSize})
			if err != nil {
				yield(models.Strategy{}, err)
				return
			}
			for _, st := range page {
				if !yield(st, nil) {
					return
				}
				after = st.ID
			}
			if len(page) < strategyPageSize {
				return
			}
		}
	}
}

// Snapshot returns the full catalog, served from cache when fresh.
func (s *StrategyService) Snapshot(ctx context.Context) ([]models.Strategy, error) {
	var out []models.Strategy
	if found, err := cache.GetJSON(ctx, s.Cache, strategySnapshotKey, &out); err != nil {
		s.logger().Warn("strategy cache read failed", zap.Error(err))
	} else if found {
		return out, nil
	}
	out = make([]models.Strategy, 0)
	for st, err := range s.FetchAll(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := cache.SetJSON(ctx, s.Cache, strategySnapshotKey, out, s.CacheTTL); err != nil {
		s.logger().Warn("strategy cache write failed", zap.Error(err))
	}
	return out, nil
}

// Invalidate drops the cached snapshot. Deposits, withdrawals and redemptions call it because the
// snapshot carries strategy totals.
func (s *StrategyService) Invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, strategySnapshotKey); err != nil {
		s.logger().Warn("strategy cache invalidate failed", zap.Error(err))
	}
}
