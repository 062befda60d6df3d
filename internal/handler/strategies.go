package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yieldmarket/internal/address"
	"yieldmarket/internal/models"
	"yieldmarket/internal/paas"
	"yieldmarket/internal/service"
)

type StrategyHandler struct {
	Strategies *service.StrategyService
	Logger     *zap.Logger
}

func (h *StrategyHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/strategies")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:address", h.get)
	g.POST("/:address/active", h.setActive)
}

type createStrategyRequest struct {
	Asset           address.Address `json:"asset"`
	RewardAPYBps    uint64          `json:"reward_apy_bps"`
	MaturitySeconds uint64          `json:"maturity_seconds"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Sequence        uint64          `json:"sequence"`
}

// @Summary Create a strategy
// @Description Admin only. sequence 0 takes the next free sequence; maturity_seconds 0 takes the configured default.
// @Tags strategies
// @Accept json
// @Param body body createStrategyRequest true "strategy"
// @Success 201 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Failure 403 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/v1/strategies [post]
func (h *StrategyHandler) create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	st, err := h.Strategies.CreateStrategy(c.Request.Context(), service.CreateStrategyParams{
		Admin:           actor,
		Asset:           req.Asset,
		RewardAPYBps:    req.RewardAPYBps,
		MaturitySeconds: req.MaturitySeconds,
		Name:            req.Name,
		Description:     req.Description,
		Sequence:        req.Sequence,
	})
	if err != nil {
		fail(c, h.Logger, "create strategy", err)
		return
	}
	paas.LogBestEffort(c, "yieldmarket_strategy_created", "info", map[string]any{
		"strategy":       st.Address.String(),
		"reward_apy_bps": st.RewardAPYBps,
	})
	Created(c, st)
}

// @Summary List strategies
// @Description Served from the cached catalog snapshot.
// @Tags strategies
// @Param asset query string false "asset mint"
// @Param active query bool false "active only"
// @Success 200 {object} apiResponse
// @Router /api/v1/strategies [get]
func (h *StrategyHandler) list(c *gin.Context) {
	asset, ok := addressQuery(c, "asset")
	if !ok {
		return
	}
	active := boolQueryPtr(c, "active")
	items, err := h.Strategies.Snapshot(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, "list strategies", err)
		return
	}
	out := make([]models.Strategy, 0, len(items))
	for _, st := range items {
		if asset != nil && st.Asset != *asset {
			continue
		}
		if active != nil && st.Active != *active {
			continue
		}
		out = append(out, st)
	}
	Ok(c, out, map[string]any{"total": len(out)})
}

// @Summary Get a strategy
// @Tags strategies
// @Param address path string true "strategy address"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/strategies/{address} [get]
func (h *StrategyHandler) get(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	st, err := h.Strategies.GetStrategy(c.Request.Context(), addr)
	if err != nil {
		fail(c, h.Logger, "get strategy", err)
		return
	}
	Ok(c, st, nil)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// @Summary Activate or deactivate a strategy
// @Description Strategy owner or admin.
// @Tags strategies
// @Accept json
// @Param address path string true "strategy address"
// @Param body body setActiveRequest true "flag"
// @Success 200 {object} apiResponse
// @Failure 403 {object} apiResponse
// @Router /api/v1/strategies/{address}/active [post]
func (h *StrategyHandler) setActive(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	st, err := h.Strategies.SetActive(c.Request.Context(), actor, addr, req.Active)
	if err != nil {
		fail(c, h.Logger, "set strategy active", err)
		return
	}
	Ok(c, st, nil)
}
