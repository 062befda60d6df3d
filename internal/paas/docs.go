package paas

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, serviceDocs)
	})
}

const serviceDocs = `# Yield Market Service

Deposit pools, yield strategies, yield-token receipts and an escrowed receipt marketplace.

## Access via PaaS

Base path (through gateway):
- /api/v1/services/yieldmarket/

## Auth

All /api/* routes take a Bearer JWT whose "sub" claim is the caller address.
Health endpoints and /docs are public.

## Amounts

Amounts are integers in base units of the mint. Responses add a "ui" decimal string.

## Routes

- GET  /healthz, /readyz
- GET  /swagger/index.html
- POST /api/v1/assets, /api/v1/assets/:mint/airdrop (admin)
- GET  /api/v1/assets, /api/v1/accounts/:owner/balances
- POST /api/v1/pools
- GET  /api/v1/pools, /api/v1/pools/:address, /api/v1/pools/:address/balance
- POST /api/v1/pools/:address/deposits, /deposit, /withdraw, /rewards, /mint, /redeem
- POST /api/v1/strategies (admin), /api/v1/strategies/:address/active
- GET  /api/v1/strategies, /api/v1/strategies/:address
- GET  /api/v1/deposits/:address, POST /api/v1/deposits/:address/reset-yield
- POST /api/v1/listings, /api/v1/listings/:address/buy, /api/v1/listings/:address/cancel
- GET  /api/v1/listings, /api/v1/listings/:address
- GET  /api/v1/audit, /api/v1/journal
- GET  /api/v1/system-settings, PUT /api/v1/system-settings/:key
- GET  /api/v1/events/ws (websocket)
`
