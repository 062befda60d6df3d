package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yieldmarket/internal/repository"
	"yieldmarket/internal/service"
)

// AuditHandler exposes the invariant auditor and the token movement journal.
type AuditHandler struct {
	Audit  *service.AuditService
	Repo   repository.Repository
	Logger *zap.Logger
}

func (h *AuditHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/audit", h.audit)
	r.GET("/api/v1/journal", h.journal)
}

// @Summary Run the invariant audit
// @Description Checks vault, escrow, supply and strategy totals against the books. Findings are reported, never repaired.
// @Tags audit
// @Success 200 {object} apiResponse
// @Router /api/v1/audit [get]
func (h *AuditHandler) audit(c *gin.Context) {
	if h.Audit == nil {
		Error(c, http.StatusInternalServerError, "audit service unavailable", nil)
		return
	}
	report, err := h.Audit.Audit(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, "audit", err)
		return
	}
	Ok(c, report, map[string]any{"ok": report.OK()})
}

// @Summary List journal entries
// @Description Every token movement, newest first by default.
// @Tags audit
// @Param account query string false "token account on either side"
// @Param mint query string false "mint"
// @Param operation query string false "operation, e.g. deposit, buy_yt"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param ascending query bool false "oldest first"
// @Success 200 {object} apiResponse
// @Router /api/v1/journal [get]
func (h *AuditHandler) journal(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	account, ok := addressQuery(c, "account")
	if !ok {
		return
	}
	mint, ok := addressQuery(c, "mint")
	if !ok {
		return
	}
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)
	params := repository.ListLedgerEntriesParams{
		Account:   account,
		Mint:      mint,
		Operation: strQueryPtr(c, "operation"),
		Limit:     limit,
		Offset:    offset,
		Asc:       boolQueryPtr(c, "ascending"),
	}
	items, err := h.Repo.ListLedgerEntries(c.Request.Context(), params)
	if err != nil {
		fail(c, h.Logger, "list journal", err)
		return
	}
	total, err := h.Repo.CountLedgerEntries(c.Request.Context(), params)
	if err != nil {
		fail(c, h.Logger, "count journal", err)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}
