package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yieldmarket/internal/ledger"
)

// StatusTooEarly is returned for receipts redeemed before maturity.
const StatusTooEarly = 425

func statusFor(code ledger.Code) int {
	switch code {
	case ledger.CodeAlreadyExists, ledger.CodeInactiveStrategy:
		return http.StatusConflict
	case ledger.CodeNotFound:
		return http.StatusNotFound
	case ledger.CodeInvalidAmount, ledger.CodeInvalidArgument:
		return http.StatusBadRequest
	case ledger.CodeInsufficientBalance, ledger.CodeArithmeticOverflow:
		return http.StatusUnprocessableEntity
	case ledger.CodeNotMatured:
		return StatusTooEarly
	case ledger.CodeUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an error envelope. Ledger errors keep their code in meta; anything else is
// a storage or internal failure and is logged.
func fail(c *gin.Context, logger *zap.Logger, op string, err error) {
	code := ledger.CodeOf(err)
	if code == "" {
		if logger != nil {
			logger.Error(op+" failed", zap.Error(err))
		}
		Error(c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error(op+" failed", zap.String("code", string(code)), zap.Error(err))
	}
	Error(c, status, err.Error(), map[string]any{"error_code": code})
}
