package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"yieldmarket/internal/address"
	"yieldmarket/internal/auth"
	"yieldmarket/internal/ledger"
)

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func uint64Query(c *gin.Context, key string) uint64 {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func boolQueryPtr(c *gin.Context, key string) *bool {
	if val := c.Query(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return &b
		}
	}
	return nil
}

func strQueryPtr(c *gin.Context, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}

func boolPtr(v bool) *bool { return &v }

func parseOrder(value string, allow map[string]string) string {
	key := strings.TrimSpace(strings.ToLower(value))
	if key == "" {
		return ""
	}
	if mapped, ok := allow[key]; ok {
		return mapped
	}
	return ""
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	if limit <= 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": int64(offset+limit) < total,
	}
}

// cursorMeta describes an id-ordered page; pass next_after back as after to continue.
func cursorMeta(limit int, count int, nextAfter uint64) map[string]any {
	return map[string]any{
		"limit":      limit,
		"count":      count,
		"next_after": nextAfter,
	}
}

// addressParam parses a base58 path parameter, writing a 400 on failure.
func addressParam(c *gin.Context, name string) (address.Address, bool) {
	a, err := address.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid "+name, nil)
		return address.Zero, false
	}
	return a, true
}

// addressQuery parses an optional base58 query value. ok is false after a 400 was written.
func addressQuery(c *gin.Context, key string) (a *address.Address, ok bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	v, err := address.Parse(raw)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid "+key, nil)
		return nil, false
	}
	return &v, true
}

// requireActor returns the authenticated caller or writes a 401.
func requireActor(c *gin.Context) (address.Address, bool) {
	a, ok := auth.ActorFromGin(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "caller identity required", nil)
		return address.Zero, false
	}
	return a, true
}

// amountInput accepts an amount either in base units or as a decimal string in whole units.
type amountInput struct {
	Amount   uint64 `json:"amount"`
	AmountUI string `json:"amount_ui"`
}

func (in amountInput) resolve(decimals uint8) (uint64, error) {
	return resolveAmount(in.Amount, in.AmountUI, decimals)
}

func resolveAmount(raw uint64, ui string, decimals uint8) (uint64, error) {
	ui = strings.TrimSpace(ui)
	if ui == "" {
		return raw, nil
	}
	if raw != 0 {
		return 0, ledger.New(ledger.CodeInvalidArgument, "set either the base unit amount or the ui amount")
	}
	return ledger.ParseUnits(ui, decimals)
}
