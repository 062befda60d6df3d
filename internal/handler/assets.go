package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yieldmarket/internal/address"
	"yieldmarket/internal/ledger"
	"yieldmarket/internal/models"
	"yieldmarket/internal/paas"
	"yieldmarket/internal/service"
)

type AssetHandler struct {
	Assets *service.AssetService
	Logger *zap.Logger
}

func (h *AssetHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1")
	g.POST("/assets", h.register)
	g.GET("/assets", h.list)
	g.GET("/assets/:mint", h.get)
	g.POST("/assets/:mint/airdrop", h.airdrop)
	g.GET("/accounts/:owner/balances", h.balances)
	g.GET("/token-accounts/:address", h.tokenAccount)
}

type mintView struct {
	models.Mint
	SupplyUI string `json:"supply_ui"`
}

func newMintView(m *models.Mint) mintView {
	return mintView{Mint: *m, SupplyUI: ledger.FormatUnits(m.Supply, m.Decimals)}
}

type registerAssetRequest struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// @Summary Register an asset mint
// @Description Admin only. The mint address is derived from the symbol.
// @Tags assets
// @Accept json
// @Param body body registerAssetRequest true "asset"
// @Success 201 {object} apiResponse
// @Failure 403 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/v1/assets [post]
func (h *AssetHandler) register(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req registerAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	mint, err := h.Assets.RegisterAsset(c.Request.Context(), actor, req.Symbol, req.Decimals)
	if err != nil {
		fail(c, h.Logger, "register asset", err)
		return
	}
	paas.LogBestEffort(c, "yieldmarket_asset_registered", "info", map[string]any{
		"symbol": mint.Symbol,
		"mint":   mint.Address.String(),
	})
	Created(c, newMintView(mint))
}

// @Summary List mints
// @Tags assets
// @Param kind query string false "asset|yield"
// @Param after query int false "row id cursor"
// @Param limit query int false "limit"
// @Success 200 {object} apiResponse
// @Router /api/v1/assets [get]
func (h *AssetHandler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 100)
	items, err := h.Assets.ListMints(c.Request.Context(), c.Query("kind"), uint64Query(c, "after"), limit)
	if err != nil {
		fail(c, h.Logger, "list mints", err)
		return
	}
	out := make([]mintView, 0, len(items))
	var next uint64
	for i := range items {
		out = append(out, newMintView(&items[i]))
		next = items[i].ID
	}
	Ok(c, out, cursorMeta(limit, len(out), next))
}

// @Summary Get a mint
// @Description Accepts a mint address or an asset symbol.
// @Tags assets
// @Param mint path string true "mint address or symbol"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/assets/{mint} [get]
func (h *AssetHandler) get(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("mint"))
	var (
		mint *models.Mint
		err  error
	)
	if addr, perr := address.Parse(raw); perr == nil {
		mint, err = h.Assets.GetMint(c.Request.Context(), addr)
	} else {
		mint, err = h.Assets.GetMintBySymbol(c.Request.Context(), raw)
	}
	if err != nil {
		fail(c, h.Logger, "get mint", err)
		return
	}
	Ok(c, newMintView(mint), nil)
}

type airdropRequest struct {
	Owner address.Address `json:"owner"`
	amountInput
}

// @Summary Airdrop asset tokens
// @Description Admin faucet: mints asset tokens to owner.
// @Tags assets
// @Accept json
// @Param mint path string true "asset mint"
// @Param body body airdropRequest true "recipient and amount"
// @Success 200 {object} apiResponse
// @Router /api/v1/assets/{mint}/airdrop [post]
func (h *AssetHandler) airdrop(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	mintAddr, ok := addressParam(c, "mint")
	if !ok {
		return
	}
	var req airdropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	mint, err := h.Assets.GetMint(c.Request.Context(), mintAddr)
	if err != nil {
		fail(c, h.Logger, "airdrop", err)
		return
	}
	amount, err := req.resolve(mint.Decimals)
	if err != nil {
		fail(c, h.Logger, "airdrop", err)
		return
	}
	acc, err := h.Assets.Airdrop(c.Request.Context(), actor, mintAddr, req.Owner, amount)
	if err != nil {
		fail(c, h.Logger, "airdrop", err)
		return
	}
	paas.LogBestEffort(c, "yieldmarket_airdrop", "info", map[string]any{
		"mint":   mintAddr.String(),
		"owner":  req.Owner.String(),
		"amount": amount,
	})
	Ok(c, service.Balance{
		Account:  *acc,
		Symbol:   mint.Symbol,
		Decimals: mint.Decimals,
		Kind:     mint.Kind,
		UI:       ledger.FormatUnits(acc.Balance, mint.Decimals),
	}, nil)
}

// @Summary List balances of an owner
// @Tags assets
// @Param owner path string true "owner address"
// @Success 200 {object} apiResponse
// @Router /api/v1/accounts/{owner}/balances [get]
func (h *AssetHandler) balances(c *gin.Context) {
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	items, err := h.Assets.Balances(c.Request.Context(), owner)
	if err != nil {
		fail(c, h.Logger, "balances", err)
		return
	}
	Ok(c, items, nil)
}

// @Summary Get a token account
// @Tags assets
// @Param address path string true "token account address"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/token-accounts/{address} [get]
func (h *AssetHandler) tokenAccount(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	acc, err := h.Assets.TokenAccount(c.Request.Context(), addr)
	if err != nil {
		fail(c, h.Logger, "token account", err)
		return
	}
	mint, err := h.Assets.GetMint(c.Request.Context(), acc.Mint)
	if err != nil {
		fail(c, h.Logger, "token account", err)
		return
	}
	Ok(c, service.Balance{
		Account:  *acc,
		Symbol:   mint.Symbol,
		Decimals: mint.Decimals,
		Kind:     mint.Kind,
		UI:       ledger.FormatUnits(acc.Balance, mint.Decimals),
	}, nil)
}
