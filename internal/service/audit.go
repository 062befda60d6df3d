package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"yieldmarket/internal/address"
	"yieldmarket/internal/events"
	"yieldmarket/internal/models"
	"yieldmarket/internal/repository"
)

const auditPageSize = 500

const (
	CheckPoolVault     = "pool_vault"
	CheckPoolPrincipal = "pool_principal"
	CheckStrategyTotal = "strategy_total"
	CheckEscrow        = "escrow"
	CheckMintSupply    = "mint_supply"
)

// Finding is one broken ledger invariant. Want is what the books say, Got what was observed.
type Finding struct {
	Check   string `json:"check"`
	Subject string `json:"subject"`
	Want    uint64 `json:"want"`
	Got     uint64 `json:"got"`
	Detail  string `json:"detail,omitempty"`
}

type AuditReport struct {
	At         time.Time `json:"at"`
	Pools      int       `json:"pools"`
	Strategies int       `json:"strategies"`
	Listings   int       `json:"listings"`
	Mints      int       `json:"mints"`
	Findings   []Finding `json:"findings"`
}

func (r *AuditReport) OK() bool { return len(r.Findings) == 0 }

func (r *AuditReport) add(f Finding) { r.Findings = append(r.Findings, f) }

// AuditService cross-checks balances against the books. It reports; it never repairs.
type AuditService struct {
	Core

	Flags *SystemSettingsService
}

// RunOnce is the scheduled entry point; it honors the invariant audit switch.
func (s *AuditService) RunOnce(ctx context.Context) (*AuditReport, error) {
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureInvariantAudit, true) {
		return nil, nil
	}
	return s.Audit(ctx)
}

func (s *AuditService) Audit(ctx context.Context) (*AuditReport, error) {
	report := &AuditReport{At: s.now(), Findings: []Finding{}}
	// Everything is read inside one unit of work so balances and totals come from the same moment.
	err := s.Repo.InTx(ctx, func(tx repository.Repository) error {
		report.Findings = report.Findings[:0]
		if err := s.auditPools(ctx, tx, report); err != nil {
			return err
		}
		if err := s.auditListings(ctx, tx, report); err != nil {
			return err
		}
		return s.auditMints(ctx, tx, report)
	})
	if err != nil {
		return nil, err
	}
	for _, f := range report.Findings {
		s.logger().Error("ledger invariant violated",
			zap.String("check", f.Check),
			zap.String("subject", f.Subject),
			zap.Uint64("want", f.Want),
			zap.Uint64("got", f.Got),
			zap.String("detail", f.Detail),
		)
		s.publish(events.TypeAuditFinding, address.Zero, address.Zero, report.At, map[string]any{
			"check": f.Check, "subject": f.Subject, "want": f.Want, "got": f.Got,
		})
	}
	return report, nil
}

func (s *AuditService) auditPools(ctx context.Context, tx repository.Repository, report *AuditReport) error {
	strategyTotals := map[address.Address]uint64{}
	var after uint64
	for {
		pools, err := tx.ListPools(ctx, repository.ListPoolsParams{AfterID: after, Limit: auditPageSize})
		if err != nil {
			return fmt.Errorf("list pools: %w", err)
		}
		for i := range pools {
			p := &pools[i]
			after = p.ID
			report.Pools++
			if err := s.auditPool(ctx, tx, p, strategyTotals, report); err != nil {
				return err
			}
		}
		if len(pools) < auditPageSize {
			break
		}
	}

	after = 0
	for {
		strategies, err := tx.ListStrategies(ctx, repository.ListStrategiesParams{AfterID: after, Limit: auditPageSize})
		if err != nil {
			return fmt.Errorf("list strategies: %w", err)
		}
		for _, st := range strategies {
			after = st.ID
			report.Strategies++
			if sum := strategyTotals[st.Address]; sum != st.TotalDeposited {
				report.add(Finding{Check: CheckStrategyTotal, Subject: st.Address.String(), Want: st.TotalDeposited, Got: sum,
					Detail: "strategy total differs from sum of principal"})
			}
		}
		if len(strategies) < auditPageSize {
			break
		}
	}
	return nil
}

func (s *AuditService) auditPool(ctx context.Context, tx repository.Repository, p *models.Pool, strategyTotals map[address.Address]uint64, report *AuditReport) error {
	pool := p.Address
	var principal, after uint64
	for {
		deposits, err := tx.ListUserDeposits(ctx, repository.ListUserDepositsParams{Pool: &pool, AfterID: after, Limit: auditPageSize})
		if err != nil {
			return fmt.Errorf("list deposits: %w", err)
		}
		for _, d := range deposits {
			after = d.ID
			principal += d.Principal
			if !d.Strategy.IsZero() {
				strategyTotals[d.Strategy] += d.Principal
			}
		}
		if len(deposits) < auditPageSize {
			break
		}
	}
	if principal != p.TotalDeposited {
		report.add(Finding{Check: CheckPoolPrincipal, Subject: pool.String(), Want: p.TotalDeposited, Got: principal,
			Detail: "pool total differs from sum of principal"})
	}
	vault, err := tx.GetTokenAccount(ctx, p.Vault)
	if err != nil {
		return fmt.Errorf("load vault: %w", err)
	}
	var held uint64
	if vault != nil {
		held = vault.Balance
	}
	if vault == nil || held != p.TotalDeposited {
		report.add(Finding{Check: CheckPoolVault, Subject: pool.String(), Want: p.TotalDeposited, Got: held,
			Detail: "vault balance differs from pool total"})
	}
	return nil
}

func (s *AuditService) auditListings(ctx context.Context, tx repository.Repository, report *AuditReport) error {
	var after uint64
	for {
		listings, err := tx.ListListings(ctx, repository.ListListingsParams{AfterID: after, Limit: auditPageSize})
		if err != nil {
			return fmt.Errorf("list listings: %w", err)
		}
		for _, l := range listings {
			after = l.ID
			report.Listings++
			escrow, err := tx.GetTokenAccount(ctx, l.EscrowAccount)
			if err != nil {
				return fmt.Errorf("load escrow: %w", err)
			}
			var held uint64
			if escrow != nil {
				held = escrow.Balance
			}
			want := uint64(0)
			if l.Active {
				want = l.Amount
			}
			if held != want {
				report.add(Finding{Check: CheckEscrow, Subject: l.Address.String(), Want: want, Got: held,
					Detail: "escrow balance differs from listing (" + l.Status + ")"})
			}
		}
		if len(listings) < auditPageSize {
			break
		}
	}
	return nil
}

func (s *AuditService) auditMints(ctx context.Context, tx repository.Repository, report *AuditReport) error {
	var after uint64
	for {
		mints, err := tx.ListMints(ctx, repository.ListMintsParams{AfterID: after, Limit: auditPageSize})
		if err != nil {
			return fmt.Errorf("list mints: %w", err)
		}
		for _, m := range mints {
			after = m.ID
			report.Mints++
			sum, err := sumBalances(ctx, tx, m.Address)
			if err != nil {
				return err
			}
			if sum != m.Supply {
				report.add(Finding{Check: CheckMintSupply, Subject: m.Address.String(), Want: m.Supply, Got: sum,
					Detail: "supply differs from sum of " + m.Symbol + " balances"})
			}
		}
		if len(mints) < auditPageSize {
			break
		}
	}
	return nil
}

func sumBalances(ctx context.Context, tx repository.Repository, mint address.Address) (uint64, error) {
	var sum, after uint64
	for {
		accounts, err := tx.ListTokenAccounts(ctx, repository.ListTokenAccountsParams{Mint: &mint, AfterID: after, Limit: auditPageSize})
		if err != nil {
			return 0, fmt.Errorf("list token accounts: %w", err)
		}
		for _, a := range accounts {
			after = a.ID
			sum += a.Balance
		}
		if len(accounts) < auditPageSize {
			return sum, nil
		}
	}
}
