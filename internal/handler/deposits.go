package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yieldmarket/internal/service"
)

type DepositHandler struct {
	Yield  *service.YieldService
	Logger *zap.Logger
}

func (h *DepositHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/deposits")
	g.GET("/:address", h.position)
	g.POST("/:address/reset-yield", h.resetYield)
}

// @Summary Get a position
// @Description Principal, stored and pending yield, and maturity of one deposit.
// @Tags yield
// @Param address path string true "deposit address"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/deposits/{address} [get]
func (h *DepositHandler) position(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	pos, err := h.Yield.Position(c.Request.Context(), addr)
	if err != nil {
		fail(c, h.Logger, "position", err)
		return
	}
	Ok(c, pos, nil)
}

// @Summary Reset a position's accrued yield
// @Description Pool owner or admin. No-op when nothing is stored or pending.
// @Tags yield
// @Param address path string true "deposit address"
// @Success 200 {object} apiResponse
// @Failure 403 {object} apiResponse
// @Router /api/v1/deposits/{address}/reset-yield [post]
func (h *DepositHandler) resetYield(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	dep, err := h.Yield.ResetUserYield(c.Request.Context(), actor, addr)
	if err != nil {
		fail(c, h.Logger, "reset yield", err)
		return
	}
	Ok(c, dep, nil)
}
