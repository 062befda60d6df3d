package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"yieldmarket/internal/models"
	"yieldmarket/internal/paas"
	"yieldmarket/internal/repository"
	"yieldmarket/internal/service"
)

const featurePrefix = "feature."

type SystemSettingsHandler struct {
	Repo     repository.Repository
	Settings *service.SystemSettingsService
	Admins   service.Admins
	Logger   *zap.Logger
}

func (h *SystemSettingsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/system-settings")
	g.GET("", h.list)
	g.GET("/switches", h.listSwitches)
	g.PUT("/switches/:name", h.putSwitch)
	g.GET("/:key", h.get)
	g.PUT("/:key", h.put)
}

// requireAdmin writes 403 unless the caller is a configured admin.
func (h *SystemSettingsHandler) requireAdmin(c *gin.Context) bool {
	actor, ok := requireActor(c)
	if !ok {
		return false
	}
	if !h.Admins.Has(actor) {
		Error(c, http.StatusForbidden, "admin required", nil)
		return false
	}
	return true
}

// @Summary List system settings
// @Tags settings
// @Param prefix query string false "key prefix"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/v1/system-settings [get]
func (h *SystemSettingsHandler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 200)
	offset := intQuery(c, "offset", 0)
	params := repository.ListSystemSettingsParams{
		Limit:   limit,
		Offset:  offset,
		Prefix:  strQueryPtr(c, "prefix"),
		OrderBy: "key",
		Asc:     boolPtr(true),
	}
	items, err := h.Repo.ListSystemSettings(c.Request.Context(), params)
	if err != nil {
		fail(c, h.Logger, "list settings", err)
		return
	}
	total, err := h.Repo.CountSystemSettings(c.Request.Context(), params)
	if err != nil {
		fail(c, h.Logger, "count settings", err)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get a system setting
// @Tags settings
// @Param key path string true "setting key"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/system-settings/{key} [get]
func (h *SystemSettingsHandler) get(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	item, err := h.Repo.GetSystemSettingByKey(c.Request.Context(), key)
	if err != nil {
		fail(c, h.Logger, "get setting", err)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "setting not found", nil)
		return
	}
	Ok(c, item, nil)
}

type putSystemSettingRequest struct {
	Value       any    `json:"value"`
	Description string `json:"description"`
}

// @Summary Write a system setting
// @Description Admin only.
// @Tags settings
// @Accept json
// @Param key path string true "setting key"
// @Param body body putSystemSettingRequest true "value"
// @Success 200 {object} apiResponse
// @Router /api/v1/system-settings/{key} [put]
func (h *SystemSettingsHandler) put(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		Error(c, http.StatusBadRequest, "invalid key", nil)
		return
	}
	var req putSystemSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	raw, err := json.Marshal(req.Value)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid value", nil)
		return
	}
	item := &models.SystemSetting{
		Key:         key,
		Value:       datatypes.JSON(raw),
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.Repo.UpsertSystemSetting(c.Request.Context(), item); err != nil {
		fail(c, h.Logger, "put setting", err)
		return
	}
	next, _ := h.Repo.GetSystemSettingByKey(c.Request.Context(), key)
	Ok(c, next, nil)
}

type switchView struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

// @Summary List feature switches
// @Tags settings
// @Success 200 {object} apiResponse
// @Router /api/v1/system-settings/switches [get]
func (h *SystemSettingsHandler) listSwitches(c *gin.Context) {
	prefix := featurePrefix
	items, err := h.Repo.ListSystemSettings(c.Request.Context(), repository.ListSystemSettingsParams{
		Limit:   200,
		Prefix:  &prefix,
		OrderBy: "key",
		Asc:     boolPtr(true),
	})
	if err != nil {
		fail(c, h.Logger, "list switches", err)
		return
	}
	out := make([]switchView, 0, len(items))
	for _, it := range items {
		enabled := false
		_ = json.Unmarshal(it.Value, &enabled)
		out = append(out, switchView{
			Name:        strings.TrimPrefix(it.Key, featurePrefix),
			Key:         it.Key,
			Enabled:     enabled,
			Description: it.Description,
		})
	}
	Ok(c, out, nil)
}

type putSwitchRequest struct {
	Enabled bool `json:"enabled"`
}

// @Summary Turn a feature switch on or off
// @Description Admin only. Known switches: invariant_audit, listing_expiry, event_stream.
// @Tags settings
// @Accept json
// @Param name path string true "switch name without the feature. prefix"
// @Param body body putSwitchRequest true "flag"
// @Success 200 {object} apiResponse
// @Router /api/v1/system-settings/switches/{name} [put]
func (h *SystemSettingsHandler) putSwitch(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		Error(c, http.StatusBadRequest, "invalid switch name", nil)
		return
	}
	var req putSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	key := featurePrefix + name
	if err := h.Settings.SetEnabled(c.Request.Context(), key, req.Enabled); err != nil {
		fail(c, h.Logger, "put switch", err)
		return
	}
	paas.LogBestEffort(c, "yieldmarket_switch_changed", "warn", map[string]any{
		"key":     key,
		"enabled": req.Enabled,
	})
	Ok(c, switchView{Name: name, Key: key, Enabled: req.Enabled}, nil)
}
