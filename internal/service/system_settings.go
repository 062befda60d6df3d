package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"gorm.io/datatypes"

	"yieldmarket/internal/ledger"
	"yieldmarket/internal/models"
	"yieldmarket/internal/repository"
)

const (
	FeatureInvariantAudit = "feature.invariant_audit"
	FeatureListingExpiry  = "feature.listing_expiry"
	FeatureEventStream    = "feature.event_stream"
)

func DefaultFeatureSwitches() map[string]bool {
	return map[string]bool{
		FeatureInvariantAudit: true,
		FeatureListingExpiry:  true,
		FeatureEventStream:    true,
	}
}

// SystemSettingsService reads and writes runtime feature switches stored as JSON booleans.
type SystemSettingsService struct {
	Repo  repository.Repository
	Clock ledger.Clock
}

// EnsureDefaultSwitches inserts missing switches with their defaults. Stored values are kept.
func (s *SystemSettingsService) EnsureDefaultSwitches(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	defaults := DefaultFeatureSwitches()
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := ledger.Now(s.Clock)
	for _, key := range keys {
		existing, err := s.Repo.GetSystemSettingByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		raw, _ := json.Marshal(defaults[key])
		item := &models.SystemSetting{
			Key:         key,
			Value:       datatypes.JSON(raw),
			Description: "feature switch",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Repo.UpsertSystemSetting(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *SystemSettingsService) IsEnabled(ctx context.Context, key string, fallback bool) bool {
	if s == nil || s.Repo == nil {
		return fallback
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	item, err := s.Repo.GetSystemSettingByKey(ctx, key)
	if err != nil || item == nil || len(item.Value) == 0 {
		return fallback
	}
	var enabled bool
	if err := json.Unmarshal(item.Value, &enabled); err != nil {
		return fallback
	}
	return enabled
}

func (s *SystemSettingsService) SetEnabled(ctx context.Context, key string, enabled bool) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ledger.New(ledger.CodeInvalidArgument, "key is required")
	}
	raw, _ := json.Marshal(enabled)
	now := ledger.Now(s.Clock)
	item := &models.SystemSetting{
		Key:         key,
		Value:       datatypes.JSON(raw),
		Description: "feature switch",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.Repo.UpsertSystemSetting(ctx, item)
}
