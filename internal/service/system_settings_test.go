package service

import (
	"testing"

	"yieldmarket/internal/ledger"
)

func TestEnsureDefaultSwitchesKeepsOverrides(t *testing.T) {
	f := newFixture(t)
	if !f.settings.IsEnabled(f.ctx, FeatureEventStream, false) {
		t.Fatalf("default switch not seeded")
	}
	if err := f.settings.SetEnabled(f.ctx, FeatureEventStream, false); err != nil {
		t.Fatalf("set err=%v", err)
	}
	if err := f.settings.EnsureDefaultSwitches(f.ctx); err != nil {
		t.Fatalf("ensure err=%v", err)
	}
	if f.settings.IsEnabled(f.ctx, FeatureEventStream, true) {
		t.Fatalf("override lost after ensure")
	}
}

func TestIsEnabledFallback(t *testing.T) {
	f := newFixture(t)
	if !f.settings.IsEnabled(f.ctx, "feature.unknown", true) {
		t.Fatalf("unknown key ignored fallback")
	}
	var nilSvc *SystemSettingsService
	if nilSvc.IsEnabled(f.ctx, FeatureInvariantAudit, true) != true {
		t.Fatalf("nil service ignored fallback")
	}
	wantCode(t, f.settings.SetEnabled(f.ctx, " ", true), ledger.CodeInvalidArgument)
}
