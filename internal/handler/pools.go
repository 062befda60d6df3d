package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yieldmarket/internal/address"
	"yieldmarket/internal/ledger"
	"yieldmarket/internal/models"
	"yieldmarket/internal/repository"
	"yieldmarket/internal/service"
)

// PoolHandler serves pool bookkeeping and the yield token operations that act on a pool position.
type PoolHandler struct {
	Pools  *service.PoolService
	Assets *service.AssetService
	Yield  *service.YieldService
	Logger *zap.Logger
}

func (h *PoolHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/pools")
	g.POST("", h.initialize)
	g.GET("", h.list)
	g.GET("/:address", h.get)
	g.GET("/:address/balance", h.balance)
	g.GET("/:address/deposits", h.deposits)
	g.POST("/:address/deposits", h.initializeDeposit)
	g.POST("/:address/deposit", h.deposit)
	g.POST("/:address/withdraw", h.withdraw)
	g.POST("/:address/rewards", h.fundRewards)
	g.POST("/:address/mint", h.mint)
	g.POST("/:address/redeem", h.redeem)
}

type poolView struct {
	models.Pool
	Symbol           string `json:"symbol"`
	Decimals         uint8  `json:"decimals"`
	TotalDepositedUI string `json:"total_deposited_ui"`
	RewardReserve    uint64 `json:"reward_reserve"`
	RewardReserveUI  string `json:"reward_reserve_ui"`
}

func (h *PoolHandler) view(ctx context.Context, p *models.Pool) (poolView, error) {
	mint, err := h.Assets.GetMint(ctx, p.AssetMint)
	if err != nil {
		return poolView{}, err
	}
	reserve, err := h.Assets.TokenAccount(ctx, p.RewardReserve)
	if err != nil {
		return poolView{}, err
	}
	return poolView{
		Pool:             *p,
		Symbol:           mint.Symbol,
		Decimals:         mint.Decimals,
		TotalDepositedUI: ledger.FormatUnits(p.TotalDeposited, mint.Decimals),
		RewardReserve:    reserve.Balance,
		RewardReserveUI:  ledger.FormatUnits(reserve.Balance, mint.Decimals),
	}, nil
}

// poolDecimals loads the pool and its asset decimals for amount resolution.
func (h *PoolHandler) poolDecimals(c *gin.Context, addr address.Address) (*models.Pool, uint8, bool) {
	pool, err := h.Pools.GetPool(c.Request.Context(), addr)
	if err != nil {
		fail(c, h.Logger, "load pool", err)
		return nil, 0, false
	}
	mint, err := h.Assets.GetMint(c.Request.Context(), pool.AssetMint)
	if err != nil {
		fail(c, h.Logger, "load pool", err)
		return nil, 0, false
	}
	return pool, mint.Decimals, true
}

type initializePoolRequest struct {
	AssetMint address.Address `json:"asset_mint"`
}

// @Summary Initialize the caller's pool
// @Description One pool per owner. The vault and reward reserve are opened empty.
// @Tags pools
// @Accept json
// @Param body body initializePoolRequest true "asset mint"
// @Success 201 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/v1/pools [post]
func (h *PoolHandler) initialize(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req initializePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	pool, err := h.Pools.InitializePool(c.Request.Context(), actor, req.AssetMint)
	if err != nil {
		fail(c, h.Logger, "initialize pool", err)
		return
	}
	view, err := h.view(c.Request.Context(), pool)
	if err != nil {
		fail(c, h.Logger, "initialize pool", err)
		return
	}
	Created(c, view)
}

// @Summary List pools
// @Tags pools
// @Param after query int false "row id cursor"
// @Param limit query int false "limit"
// @Success 200 {object} apiResponse
// @Router /api/v1/pools [get]
func (h *PoolHandler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 100)
	items, err := h.Pools.ListPools(c.Request.Context(), uint64Query(c, "after"), limit)
	if err != nil {
		fail(c, h.Logger, "list pools", err)
		return
	}
	var next uint64
	if len(items) > 0 {
		next = items[len(items)-1].ID
	}
	Ok(c, items, cursorMeta(limit, len(items), next))
}

// @Summary Get a pool
// @Tags pools
// @Param address path string true "pool address"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/pools/{address} [get]
func (h *PoolHandler) get(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	pool, err := h.Pools.GetPool(c.Request.Context(), addr)
	if err != nil {
		fail(c, h.Logger, "get pool", err)
		return
	}
	view, err := h.view(c.Request.Context(), pool)
	if err != nil {
		fail(c, h.Logger, "get pool", err)
		return
	}
	Ok(c, view, nil)
}

// @Summary Get a user's principal in a pool
// @Tags pools
// @Param address path string true "pool address"
// @Param user query string true "user address"
// @Param strategy query string false "strategy address; omitted for the default position"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/pools/{address}/balance [get]
func (h *PoolHandler) balance(c *gin.Context) {
	poolAddr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	user, ok := addressQuery(c, "user")
	if !ok {
		return
	}
	if user == nil {
		Error(c, http.StatusBadRequest, "user is required", nil)
		return
	}
	strategy, ok := addressQuery(c, "strategy")
	if !ok {
		return
	}
	st := address.Zero
	if strategy != nil {
		st = *strategy
	}
	_, decimals, ok := h.poolDecimals(c, poolAddr)
	if !ok {
		return
	}
	amount, err := h.Pools.GetUserBalance(c.Request.Context(), *user, poolAddr, st)
	if err != nil {
		fail(c, h.Logger, "get balance", err)
		return
	}
	Ok(c, map[string]any{
		"user":     user.String(),
		"pool":     poolAddr.String(),
		"strategy": st.String(),
		"amount":   amount,
		"ui":       ledger.FormatUnits(amount, decimals),
	}, nil)
}

// @Summary List deposits in a pool
// @Tags pools
// @Param address path string true "pool address"
// @Param user query string false "user address"
// @Param strategy query string false "strategy address"
// @Param after query int false "row id cursor"
// @Param limit query int false "limit"
// @Success 200 {object} apiResponse
// @Router /api/v1/pools/{address}/deposits [get]
func (h *PoolHandler) deposits(c *gin.Context) {
	poolAddr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	user, ok := addressQuery(c, "user")
	if !ok {
		return
	}
	strategy, ok := addressQuery(c, "strategy")
	if !ok {
		return
	}
	limit := intQuery(c, "limit", 100)
	items, err := h.Pools.ListDeposits(c.Request.Context(), repository.ListUserDepositsParams{
		Pool:     &poolAddr,
		User:     user,
		Strategy: strategy,
		AfterID:  uint64Query(c, "after"),
		Limit:    limit,
	})
	if err != nil {
		fail(c, h.Logger, "list deposits", err)
		return
	}
	var next uint64
	if len(items) > 0 {
		next = items[len(items)-1].ID
	}
	Ok(c, items, cursorMeta(limit, len(items), next))
}

type positionRequest struct {
	Strategy address.Address `json:"strategy"`
	amountInput
}

// @Summary Open the caller's deposit record
// @Tags pools
// @Accept json
// @Param address path string true "pool address"
// @Param body body positionRequest true "strategy; amount is ignored"
// @Success 201 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/v1/pools/{address}/deposits [post]
func (h *PoolHandler) initializeDeposit(c *gin.Context) {
	actor, poolAddr, req, ok := h.bind(c)
	if !ok {
		return
	}
	dep, err := h.Pools.InitializeUserDeposit(c.Request.Context(), actor, poolAddr, req.Strategy)
	if err != nil {
		fail(c, h.Logger, "initialize deposit", err)
		return
	}
	Created(c, dep)
}

// @Summary Deposit into a pool
// @Description Opens the deposit record if needed. Topping up restarts the maturity clock.
// @Tags pools
// @Accept json
// @Param address path string true "pool address"
// @Param body body positionRequest true "strategy and amount"
// @Success 200 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Failure 422 {object} apiResponse
// @Router /api/v1/pools/{address}/deposit [post]
func (h *PoolHandler) deposit(c *gin.Context) {
	actor, poolAddr, req, ok := h.bind(c)
	if !ok {
		return
	}
	amount, ok := h.amount(c, poolAddr, req.amountInput)
	if !ok {
		return
	}
	dep, err := h.Pools.Deposit(c.Request.Context(), actor, poolAddr, req.Strategy, amount)
	if err != nil {
		fail(c, h.Logger, "deposit", err)
		return
	}
	Ok(c, dep, nil)
}

// @Summary Withdraw principal
// @Tags pools
// @Accept json
// @Param address path string true "pool address"
// @Param body body positionRequest true "strategy and amount"
// @Success 200 {object} apiResponse
// @Failure 422 {object} apiResponse
// @Router /api/v1/pools/{address}/withdraw [post]
func (h *PoolHandler) withdraw(c *gin.Context) {
	actor, poolAddr, req, ok := h.bind(c)
	if !ok {
		return
	}
	amount, ok := h.amount(c, poolAddr, req.amountInput)
	if !ok {
		return
	}
	dep, err := h.Pools.Withdraw(c.Request.Context(), actor, poolAddr, req.Strategy, amount)
	if err != nil {
		fail(c, h.Logger, "withdraw", err)
		return
	}
	Ok(c, dep, nil)
}

// @Summary Fund the pool's reward reserve
// @Description Pool owner or admin. Accrued yield is paid from this reserve on redemption.
// @Tags pools
// @Accept json
// @Param address path string true "pool address"
// @Param body body amountInput true "amount"
// @Success 200 {object} apiResponse
// @Failure 403 {object} apiResponse
// @Router /api/v1/pools/{address}/rewards [post]
func (h *PoolHandler) fundRewards(c *gin.Context) {
	actor, poolAddr, req, ok := h.bind(c)
	if !ok {
		return
	}
	amount, ok := h.amount(c, poolAddr, req.amountInput)
	if !ok {
		return
	}
	reserve, err := h.Pools.FundRewards(c.Request.Context(), actor, poolAddr, amount)
	if err != nil {
		fail(c, h.Logger, "fund rewards", err)
		return
	}
	Ok(c, reserve, nil)
}

// @Summary Mint yield tokens against principal
// @Tags yield
// @Accept json
// @Param address path string true "pool address"
// @Param body body positionRequest true "strategy and amount"
// @Success 200 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Failure 422 {object} apiResponse
// @Router /api/v1/pools/{address}/mint [post]
func (h *PoolHandler) mint(c *gin.Context) {
	actor, poolAddr, req, ok := h.bind(c)
	if !ok {
		return
	}
	amount, ok := h.amount(c, poolAddr, req.amountInput)
	if !ok {
		return
	}
	acc, err := h.Yield.MintYieldToken(c.Request.Context(), actor, poolAddr, req.Strategy, amount)
	if err != nil {
		fail(c, h.Logger, "mint yield token", err)
		return
	}
	Ok(c, acc, nil)
}

// @Summary Redeem matured yield tokens
// @Description Burns yield tokens for the same amount of principal plus accrued yield.
// @Tags yield
// @Accept json
// @Param address path string true "pool address"
// @Param body body positionRequest true "strategy and yield token amount"
// @Success 200 {object} apiResponse
// @Failure 422 {object} apiResponse
// @Failure 425 {object} apiResponse
// @Router /api/v1/pools/{address}/redeem [post]
func (h *PoolHandler) redeem(c *gin.Context) {
	actor, poolAddr, req, ok := h.bind(c)
	if !ok {
		return
	}
	amount, ok := h.amount(c, poolAddr, req.amountInput)
	if !ok {
		return
	}
	res, err := h.Yield.Redeem(c.Request.Context(), actor, poolAddr, req.Strategy, amount)
	if err != nil {
		fail(c, h.Logger, "redeem", err)
		return
	}
	Ok(c, res, nil)
}

func (h *PoolHandler) bind(c *gin.Context) (address.Address, address.Address, positionRequest, bool) {
	var req positionRequest
	actor, ok := requireActor(c)
	if !ok {
		return address.Zero, address.Zero, req, false
	}
	poolAddr, ok := addressParam(c, "address")
	if !ok {
		return address.Zero, address.Zero, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return address.Zero, address.Zero, req, false
	}
	return actor, poolAddr, req, true
}

func (h *PoolHandler) amount(c *gin.Context, poolAddr address.Address, in amountInput) (uint64, bool) {
	if in.AmountUI == "" {
		return in.Amount, true
	}
	_, decimals, ok := h.poolDecimals(c, poolAddr)
	if !ok {
		return 0, false
	}
	amount, err := in.resolve(decimals)
	if err != nil {
		fail(c, h.Logger, "parse amount", err)
		return 0, false
	}
	return amount, true
}
