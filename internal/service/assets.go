package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"yieldmarket/internal/address"
	"yieldmarket/internal/config"
	"yieldmarket/internal/events"
	"yieldmarket/internal/ledger"
	"yieldmarket/internal/models"
	"yieldmarket/internal/repository"
)

const maxAssetDecimals = 18

// AssetService manages asset mints (USDC, SOL, ...) and their balances. Yield mints are
// created by YieldService and only read here.
type AssetService struct {
	Core
}

type Balance struct {
	Account  models.TokenAccount `json:"account"`
	Symbol   string              `json:"symbol"`
	Decimals uint8               `json:"decimals"`
	Kind     string              `json:"kind"`
	UI       string              `json:"ui"`
}

// SeedAssets registers configured assets that do not exist yet. It runs at startup with no caller.
func (s *AssetService) SeedAssets(ctx context.Context, assets []config.AssetConfig) error {
	for _, a := range assets {
		_, err := s.register(ctx, address.Zero, a.Symbol, a.Decimals)
		if err != nil && ledger.CodeOf(err) != ledger.CodeAlreadyExists {
			return err
		}
	}
	return nil
}

func (s *AssetService) RegisterAsset(ctx context.Context, admin address.Address, symbol string, decimals uint8) (*models.Mint, error) {
	if !s.Admins.Has(admin) {
		return nil, ledger.New(ledger.CodeUnauthorized, "only admins can register assets")
	}
	return s.register(ctx, admin, symbol, decimals)
}

func (s *AssetService) register(ctx context.Context, authority address.Address, symbol string, decimals uint8) (*models.Mint, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || len(symbol) > 16 {
		return nil, ledger.New(ledger.CodeInvalidArgument, "symbol must be 1-16 characters")
	}
	if decimals > maxAssetDecimals {
		return nil, ledger.Newf(ledger.CodeInvalidArgument, "decimals must be at most %d", maxAssetDecimals)
	}
	addr, err := s.Addresses.AssetMint(symbol)
	if err != nil {
		return nil, ledger.Wrap(ledger.CodeInvalidArgument, "symbol", err)
	}
	now := s.now()
	mint := &models.Mint{
		Address:   addr,
		Symbol:    symbol,
		Kind:      models.MintKindAsset,
		Decimals:  decimals,
		Authority: authority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.Repo.InTx(ctx, func(tx repository.Repository) error {
		existing, err := tx.GetMint(ctx, addr)
		if err != nil {
			return err
		}
		if existing != nil {
			return ledger.Newf(ledger.CodeAlreadyExists, "asset %s already registered", symbol)
		}
		return tx.CreateMint(ctx, mint)
	})
	if err != nil {
		return nil, err
	}
	s.logger().Info("asset registered", zap.String("symbol", symbol), zap.String("mint", addr.String()))
	s.publish(events.TypeAssetRegistered, addr, authority, now, map[string]any{"symbol": symbol, "decimals": decimals})
	return mint, nil
}

// Airdrop mints asset tokens to owner. It is the admin faucet that stands in for external funding.
func (s *AssetService) Airdrop(ctx context.Context, admin, mintAddr, owner address.Address, amount uint64) (*models.TokenAccount, error) {
	if !s.Admins.Has(admin) {
		return nil, ledger.New(ledger.CodeUnauthorized, "only admins can airdrop")
	}
	if amount == 0 {
		return nil, ledger.ErrInvalidAmount
	}
	if owner.IsZero() {
		return nil, ledger.New(ledger.CodeInvalidArgument, "owner is required")
	}
	now := s.now()
	var out *models.TokenAccount
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		mint, err := loadMint(ctx, tx, mintAddr)
		if err != nil {
			return err
		}
		if mint.Kind != models.MintKindAsset {
			return ledger.Newf(ledger.CodeInvalidArgument, "mint %s is not an asset mint", mintAddr)
		}
		tk := s.tokens(tx, now, "airdrop", admin)
		acc, err := tk.open(ctx, owner, mint.Address)
		if err != nil {
			return err
		}
		if err := tk.mintTo(ctx, mint, acc, amount); err != nil {
			return err
		}
		out = acc
		return tk.flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.TypeAirdrop, out.Address, admin, now, map[string]any{"owner": owner.String(), "mint": mintAddr.String(), "amount": amount})
	return out, nil
}

func (s *AssetService) GetMint(ctx context.Context, addr address.Address) (*models.Mint, error) {
	return loadMint(ctx, s.Repo, addr)
}

func (s *AssetService) GetMintBySymbol(ctx context.Context, symbol string) (*models.Mint, error) {
	m, err := s.Repo.GetMintBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ledger.Newf(ledger.CodeNotFound, "asset %s not found", symbol)
	}
	return m, nil
}

func (s *AssetService) ListMints(ctx context.Context, kind string, afterID uint64, limit int) ([]models.Mint, error) {
	params := repository.ListMintsParams{AfterID: afterID, Limit: limit}
	if kind = strings.TrimSpace(kind); kind != "" {
		params.Kind = &kind
	}
	return s.Repo.ListMints(ctx, params)
}

// Balances lists every token account owned by owner with its mint metadata.
func (s *AssetService) Balances(ctx context.Context, owner address.Address) ([]Balance, error) {
	accounts, err := s.Repo.ListTokenAccounts(ctx, repository.ListTokenAccountsParams{Owner: &owner, Limit: 500})
	if err != nil {
		return nil, err
	}
	mints := map[address.Address]*models.Mint{}
	out := make([]Balance, 0, len(accounts))
	for _, acc := range accounts {
		m, ok := mints[acc.Mint]
		if !ok {
			m, err = s.Repo.GetMint(ctx, acc.Mint)
			if err != nil {
				return nil, fmt.Errorf("load mint: %w", err)
			}
			mints[acc.Mint] = m
		}
		b := Balance{Account: acc}
		if m != nil {
			b.Symbol = m.Symbol
			b.Decimals = m.Decimals
			b.Kind = m.Kind
			b.UI = ledger.FormatUnits(acc.Balance, m.Decimals)
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *AssetService) TokenAccount(ctx context.Context, addr address.Address) (*models.TokenAccount, error) {
	acc, err := s.Repo.GetTokenAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, notFound("token account", addr)
	}
	return acc, nil
}

// BalanceOf returns owner's balance of mint, zero when no account exists.
func (s *AssetService) BalanceOf(ctx context.Context, owner, mint address.Address) (uint64, error) {
	acc, err := s.Repo.GetTokenAccount(ctx, s.Addresses.TokenAccount(owner, mint))
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.Balance, nil
}
