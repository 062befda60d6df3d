package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yieldmarket/internal/address"
	"yieldmarket/internal/repository"
	"yieldmarket/internal/service"
)

type ListingHandler struct {
	Market *service.MarketplaceService
	Assets *service.AssetService
	Logger *zap.Logger
}

func (h *ListingHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/listings")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:address", h.get)
	g.POST("/:address/buy", h.buy)
	g.POST("/:address/cancel", h.cancel)
}

type createListingRequest struct {
	YTAccount address.Address `json:"yt_account"`
	Price     uint64          `json:"price"`
	PriceUI   string          `json:"price_ui"`
	amountInput
}

// @Summary List yield tokens for sale
// @Description Moves amount from the caller's yield token account into a per-listing escrow. price is in the underlying asset.
// @Tags marketplace
// @Accept json
// @Param body body createListingRequest true "listing"
// @Success 201 {object} apiResponse
// @Failure 403 {object} apiResponse
// @Failure 422 {object} apiResponse
// @Router /api/v1/listings [post]
func (h *ListingHandler) create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	price, amount := req.Price, req.Amount
	if strings.TrimSpace(req.PriceUI) != "" || strings.TrimSpace(req.AmountUI) != "" {
		acc, err := h.Assets.TokenAccount(c.Request.Context(), req.YTAccount)
		if err != nil {
			fail(c, h.Logger, "list yt", err)
			return
		}
		mint, err := h.Assets.GetMint(c.Request.Context(), acc.Mint)
		if err != nil {
			fail(c, h.Logger, "list yt", err)
			return
		}
		// Yield tokens share their underlying asset's decimals.
		if amount, err = req.resolve(mint.Decimals); err != nil {
			fail(c, h.Logger, "list yt", err)
			return
		}
		if price, err = resolveAmount(req.Price, req.PriceUI, mint.Decimals); err != nil {
			fail(c, h.Logger, "list yt", err)
			return
		}
	}
	listing, err := h.Market.ListYt(c.Request.Context(), actor, req.YTAccount, price, amount)
	if err != nil {
		fail(c, h.Logger, "list yt", err)
		return
	}
	Created(c, listing)
}

// @Summary List marketplace listings
// @Tags marketplace
// @Param seller query string false "seller address"
// @Param yield_mint query string false "yield mint"
// @Param active query bool false "active"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param order_by query string false "created_at|expires_at|price|amount"
// @Param ascending query bool false "ascending"
// @Success 200 {object} apiResponse
// @Router /api/v1/listings [get]
func (h *ListingHandler) list(c *gin.Context) {
	seller, ok := addressQuery(c, "seller")
	if !ok {
		return
	}
	yieldMint, ok := addressQuery(c, "yield_mint")
	if !ok {
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	orderBy := parseOrder(c.Query("order_by"), map[string]string{
		"created_at": "created_at",
		"expires_at": "expires_at",
		"price":      "price",
		"amount":     "amount",
	})
	if orderBy == "" {
		orderBy = "created_at"
	}
	params := repository.ListListingsParams{
		Seller:    seller,
		YieldMint: yieldMint,
		Active:    boolQueryPtr(c, "active"),
		Limit:     limit,
		Offset:    offset,
		OrderBy:   orderBy,
		Asc:       boolQueryPtr(c, "ascending"),
	}
	items, total, err := h.Market.ListListings(c.Request.Context(), params)
	if err != nil {
		fail(c, h.Logger, "list listings", err)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get a listing
// @Tags marketplace
// @Param address path string true "listing address"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/listings/{address} [get]
func (h *ListingHandler) get(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	listing, err := h.Market.GetListing(c.Request.Context(), addr)
	if err != nil {
		fail(c, h.Logger, "get listing", err)
		return
	}
	Ok(c, listing, nil)
}

// @Summary Buy a listing
// @Description Pays price to the seller and releases the escrowed yield tokens to the caller in one unit of work.
// @Tags marketplace
// @Param address path string true "listing address"
// @Success 200 {object} apiResponse
// @Failure 403 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Failure 422 {object} apiResponse
// @Router /api/v1/listings/{address}/buy [post]
func (h *ListingHandler) buy(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	listing, err := h.Market.BuyYt(c.Request.Context(), actor, addr)
	if err != nil {
		fail(c, h.Logger, "buy yt", err)
		return
	}
	Ok(c, listing, nil)
}

// @Summary Cancel a listing
// @Description Seller only. Returns the escrow to the seller.
// @Tags marketplace
// @Param address path string true "listing address"
// @Success 200 {object} apiResponse
// @Failure 403 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/listings/{address}/cancel [post]
func (h *ListingHandler) cancel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	listing, err := h.Market.CancelListing(c.Request.Context(), actor, addr)
	if err != nil {
		fail(c, h.Logger, "cancel listing", err)
		return
	}
	Ok(c, listing, nil)
}
