package service

import (
	"testing"

	"yieldmarket/internal/address"
	"yieldmarket/internal/events"
)

func findingChecks(r *AuditReport) map[string]bool {
	out := map[string]bool{}
	for _, f := range r.Findings {
		out[f.Check] = true
	}
	return out
}

func TestAuditCleanAfterActivity(t *testing.T) {
	m := newMarket(t, 100)
	l := m.list(40, 20)
	if _, err := m.market.BuyYt(m.ctx, buyerAddr, l.Address); err != nil {
		t.Fatalf("buy err=%v", err)
	}
	m.list(5, 10)
	if _, err := m.pools.Withdraw(m.ctx, userAddr, m.pool.Address, m.st.Address, 30); err != nil {
		t.Fatalf("withdraw err=%v", err)
	}
	report, err := m.audit.Audit(m.ctx)
	if err != nil {
		t.Fatalf("audit err=%v", err)
	}
	if !report.OK() {
		t.Fatalf("findings=%+v", report.Findings)
	}
	if report.Pools != 1 || report.Strategies != 1 || report.Listings != 2 || report.Mints != 2 {
		t.Fatalf("report counts=%+v", report)
	}
}

func TestAuditReportsVaultDrift(t *testing.T) {
	f := newFixture(t)
	f.fund(userAddr, 100)
	p := f.pool()
	if _, err := f.pools.Deposit(f.ctx, userAddr, p.Address, address.Zero, 100); err != nil {
		t.Fatalf("deposit err=%v", err)
	}
	vault, _ := f.repo.GetTokenAccount(f.ctx, p.Vault)
	vault.Balance += 5
	if err := f.repo.SaveTokenAccount(f.ctx, vault); err != nil {
		t.Fatalf("save err=%v", err)
	}
	ch, cancel := f.hub.Subscribe(8)
	defer cancel()

	report, err := f.audit.Audit(f.ctx)
	if err != nil {
		t.Fatalf("audit err=%v", err)
	}
	checks := findingChecks(report)
	if len(report.Findings) != 2 || !checks[CheckPoolVault] || !checks[CheckMintSupply] {
		t.Fatalf("findings=%+v", report.Findings)
	}
	for range report.Findings {
		if ev := <-ch; ev.Type != events.TypeAuditFinding {
			t.Fatalf("event type=%s", ev.Type)
		}
	}
}

func TestAuditReportsEscrowDrift(t *testing.T) {
	m := newMarket(t, 0)
	l := m.list(10, 20)
	escrow, _ := m.repo.GetTokenAccount(m.ctx, l.EscrowAccount)
	escrow.Balance = 0
	if err := m.repo.SaveTokenAccount(m.ctx, escrow); err != nil {
		t.Fatalf("save err=%v", err)
	}
	report, err := m.audit.Audit(m.ctx)
	if err != nil {
		t.Fatalf("audit err=%v", err)
	}
	checks := findingChecks(report)
	if !checks[CheckEscrow] || !checks[CheckMintSupply] {
		t.Fatalf("findings=%+v", report.Findings)
	}
}

func TestAuditRunOnceHonorsSwitch(t *testing.T) {
	f := newFixture(t)
	if err := f.settings.SetEnabled(f.ctx, FeatureInvariantAudit, false); err != nil {
		t.Fatalf("switch err=%v", err)
	}
	report, err := f.audit.RunOnce(f.ctx)
	if err != nil || report != nil {
		t.Fatalf("report=%v err=%v", report, err)
	}
	if err := f.settings.SetEnabled(f.ctx, FeatureInvariantAudit, true); err != nil {
		t.Fatalf("switch err=%v", err)
	}
	report, err = f.audit.RunOnce(f.ctx)
	if err != nil || report == nil || !report.OK() {
		t.Fatalf("report=%v err=%v", report, err)
	}
}
