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

const (
	DefaultListingTTL = 7 * 24 * time.Hour

	expirySweepBatch = 100
)

// MarketplaceService sells yield tokens for their underlying asset. Listed tokens sit in an escrow
// account that only the listing's escrow authority owns.
type MarketplaceService struct {
	Core

	ListingTTL time.Duration
	Flags      *SystemSettingsService
}

func (s *MarketplaceService) ttl() time.Duration {
	if s.ListingTTL <= 0 {
		return DefaultListingTTL
	}
	return s.ListingTTL
}

// ListYt escrows amount tokens from the seller's yield token account and opens a listing at price,
// quoted in the YT's underlying asset.
func (s *MarketplaceService) ListYt(ctx context.Context, seller, ytAccount address.Address, price, amount uint64) (*models.Listing, error) {
	if amount == 0 || price == 0 {
		return nil, ledger.ErrInvalidAmount
	}
	if price > ledger.MaxAmount {
		return nil, ledger.Newf(ledger.CodeInvalidAmount, "price %d above maximum amount", price)
	}
	now := s.now()
	var listing *models.Listing
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		tk := s.tokens(tx, now, "list_yt", seller)
		src, err := tx.GetTokenAccount(ctx, ytAccount)
		if err != nil {
			return fmt.Errorf("load token account: %w", err)
		}
		if src == nil {
			return notFound("token account", ytAccount)
		}
		mint, err := tx.GetMint(ctx, src.Mint)
		if err != nil {
			return fmt.Errorf("load mint: %w", err)
		}
		if mint == nil || mint.Kind != models.MintKindYield {
			return ledger.Newf(ledger.CodeNotFound, "token account %s does not hold yield tokens", ytAccount)
		}
		if src.Owner != seller {
			return ledger.New(ledger.CodeUnauthorized, "token account is not owned by seller")
		}
		if src.Custody {
			return errCustodyAccount(src.Address)
		}
		if src.Balance < amount {
			return ledger.Newf(ledger.CodeInsufficientBalance, "yield token balance %d below %d", src.Balance, amount)
		}

		nonce, err := tx.NextListingNonce(ctx, seller)
		if err != nil {
			return fmt.Errorf("listing nonce: %w", err)
		}
		addr := s.Addresses.Listing(seller, mint.Address, nonce)
		escrowAuth := s.Addresses.EscrowAuthority(seller, addr)
		escrow, err := tk.openCustody(ctx, escrowAuth, mint.Address)
		if err != nil {
			return err
		}
		if escrow.Balance != 0 {
			return s.reportInconsistent("list_yt", ledger.Newf(ledger.CodeInconsistentState, "escrow %s not empty", escrow.Address))
		}
		tk.with("listing", addr.String())
		if err := tk.transfer(ctx, src, escrow, amount); err != nil {
			return err
		}
		listing = &models.Listing{
			Address:         addr,
			Seller:          seller,
			Nonce:           nonce,
			YieldMint:       mint.Address,
			PaymentMint:     mint.Underlying,
			EscrowAuthority: escrowAuth,
			EscrowAccount:   escrow.Address,
			Amount:          amount,
			Price:           price,
			Active:          true,
			Status:          models.ListingStatusActive,
			CreatedAt:       now,
			ExpiresAt:       now.Add(s.ttl()),
			UpdatedAt:       now,
		}
		if err := tx.CreateListing(ctx, listing); err != nil {
			return fmt.Errorf("create listing: %w", err)
		}
		return tk.flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.TypeListingCreated, listing.Address, seller, now, map[string]any{
		"yield_mint": listing.YieldMint.String(), "amount": amount, "price": price,
	})
	return listing, nil
}

// BuyYt settles an active listing: price moves buyer to seller and the escrow moves to the buyer,
// both or neither.
func (s *MarketplaceService) BuyYt(ctx context.Context, buyer, listingAddr address.Address) (*models.Listing, error) {
	now := s.now()
	var listing *models.Listing
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		var err error
		listing, err = tx.GetListing(ctx, listingAddr)
		if err != nil {
			return fmt.Errorf("load listing: %w", err)
		}
		if listing == nil || !listing.Active || listing.Expired(now) {
			return ledger.Newf(ledger.CodeNotFound, "active listing %s not found", listingAddr)
		}
		if buyer == listing.Seller {
			return ledger.New(ledger.CodeUnauthorized, "seller cannot buy own listing")
		}
		tk := s.tokens(tx, now, "buy_yt", buyer).with("listing", listingAddr.String())
		pay, err := tk.account(ctx, buyer, listing.PaymentMint)
		if err != nil {
			return err
		}
		if pay == nil || pay.Balance < listing.Price {
			return ledger.Newf(ledger.CodeInsufficientBalance, "payment balance below price %d", listing.Price)
		}
		escrow, err := tk.byAddress(ctx, listing.EscrowAccount)
		if err != nil {
			return s.reportInconsistent("buy_yt", err, zap.String("listing", listingAddr.String()))
		}
		if escrow.Balance != listing.Amount {
			return s.reportInconsistent("buy_yt",
				ledger.Newf(ledger.CodeInconsistentState, "escrow holds %d, listing %d", escrow.Balance, listing.Amount),
				zap.String("listing", listingAddr.String()))
		}
		proceeds, err := tk.open(ctx, listing.Seller, listing.PaymentMint)
		if err != nil {
			return err
		}
		if _, err := ledger.Add(proceeds.Balance, listing.Price); err != nil {
			return err
		}
		dst, err := tk.open(ctx, buyer, listing.YieldMint)
		if err != nil {
			return err
		}

		if err := tk.transfer(ctx, pay, proceeds, listing.Price); err != nil {
			return err
		}
		if err := tk.transfer(ctx, escrow, dst, listing.Amount); err != nil {
			return err
		}
		closeListing(listing, models.ListingStatusSold, "", now)
		listing.Buyer = buyer
		if err := tx.SaveListing(ctx, listing); err != nil {
			return fmt.Errorf("save listing: %w", err)
		}
		return tk.flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.TypeListingSold, listingAddr, buyer, now, map[string]any{
		"seller": listing.Seller.String(), "amount": listing.Amount, "price": listing.Price,
	})
	return listing, nil
}

// CancelListing returns the escrow to the seller.
func (s *MarketplaceService) CancelListing(ctx context.Context, caller, listingAddr address.Address) (*models.Listing, error) {
	now := s.now()
	var listing *models.Listing
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		var err error
		listing, err = tx.GetListing(ctx, listingAddr)
		if err != nil {
			return fmt.Errorf("load listing: %w", err)
		}
		if listing == nil {
			return notFound("listing", listingAddr)
		}
		if caller != listing.Seller {
			return ledger.New(ledger.CodeUnauthorized, "only the seller can cancel a listing")
		}
		if !listing.Active {
			return ledger.Newf(ledger.CodeNotFound, "active listing %s not found", listingAddr)
		}
		return s.unwind(ctx, tx, listing, "cancel_listing", caller, "", now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.TypeListingCancelled, listingAddr, caller, now, map[string]any{"amount": listing.Amount})
	return listing, nil
}

// ExpireListings cancels active listings past their expiry and returns their escrow to the seller.
// Each listing settles in its own unit of work; a failure is logged and the sweep moves on.
func (s *MarketplaceService) ExpireListings(ctx context.Context) (int, error) {
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureListingExpiry, true) {
		return 0, nil
	}
	now := s.now()
	active := true
	expired := 0
	var after uint64
	for {
		page, err := s.Repo.ListListings(ctx, repository.ListListingsParams{
			Active:        &active,
			ExpiredBefore: &now,
			AfterID:       after,
			Limit:         expirySweepBatch,
		})
		if err != nil {
			return expired, err
		}
		for _, l := range page {
			after = l.ID
			ok, err := s.expire(ctx, l.Address, now)
			if err != nil {
				s.logger().Error("listing expiry failed", zap.String("listing", l.Address.String()), zap.Error(err))
				continue
			}
			if ok {
				expired++
			}
		}
		if len(page) < expirySweepBatch {
			break
		}
	}
	if expired > 0 {
		s.logger().Info("listings expired", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *MarketplaceService) expire(ctx context.Context, addr address.Address, now time.Time) (bool, error) {
	var listing *models.Listing
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		var err error
		listing, err = tx.GetListing(ctx, addr)
		if err != nil {
			return fmt.Errorf("load listing: %w", err)
		}
		if listing == nil || !listing.Active || !listing.Expired(now) {
			listing = nil
			return nil
		}
		return s.unwind(ctx, tx, listing, "expire_listing", address.Zero, models.ListingCloseExpired, now)
	})
	if err != nil || listing == nil {
		return false, err
	}
	s.publish(events.TypeListingCancelled, addr, address.Zero, now, map[string]any{"reason": models.ListingCloseExpired})
	return true, nil
}

// unwind returns escrow to the seller and closes the listing as cancelled.
func (s *MarketplaceService) unwind(ctx context.Context, tx repository.Repository, listing *models.Listing, op string, actor address.Address, reason string, now time.Time) error {
	tk := s.tokens(tx, now, op, actor).with("listing", listing.Address.String())
	escrow, err := tk.byAddress(ctx, listing.EscrowAccount)
	if err != nil {
		return s.reportInconsistent(op, err, zap.String("listing", listing.Address.String()))
	}
	if escrow.Balance != listing.Amount {
		return s.reportInconsistent(op,
			ledger.Newf(ledger.CodeInconsistentState, "escrow holds %d, listing %d", escrow.Balance, listing.Amount),
			zap.String("listing", listing.Address.String()))
	}
	dst, err := tk.open(ctx, listing.Seller, listing.YieldMint)
	if err != nil {
		return err
	}
	if err := tk.transfer(ctx, escrow, dst, listing.Amount); err != nil {
		return err
	}
	closeListing(listing, models.ListingStatusCancelled, reason, now)
	if err := tx.SaveListing(ctx, listing); err != nil {
		return fmt.Errorf("save listing: %w", err)
	}
	return tk.flush(ctx)
}

func closeListing(l *models.Listing, status, reason string, now time.Time) {
	l.Active = false
	l.Status = status
	l.CloseReason = reason
	l.SettledAt = &now
	l.UpdatedAt = now
}

func (s *MarketplaceService) GetListing(ctx context.Context, addr address.Address) (*models.Listing, error) {
	l, err := s.Repo.GetListing(ctx, addr)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, notFound("listing", addr)
	}
	return l, nil
}

func (s *MarketplaceService) ListListings(ctx context.Context, params repository.ListListingsParams) ([]models.Listing, int64, error) {
	items, err := s.Repo.ListListings(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountListings(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
