package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"yieldmarket/internal/address"
	"yieldmarket/internal/auth"
	"yieldmarket/internal/config"
	"yieldmarket/internal/ledger"
	memoryrepository "yieldmarket/internal/repository/memory"
	"yieldmarket/internal/service"
)

func testAddr(b byte) address.Address {
	var a address.Address
	for i := range a {
		a[i] = b
	}
	return a
}

var (
	admin = testAddr(1)
	owner = testAddr(2)
	user  = testAddr(3)
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	usdc   address.Address
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	repo := memoryrepository.New()
	admins := service.Admins{admin: {}}
	core := service.Core{
		Repo:      repo,
		Clock:     ledger.NewManualClock(ledger.SystemClock{}.Now()),
		Addresses: address.Deriver{},
		Admins:    admins,
	}
	settings := &service.SystemSettingsService{Repo: repo}
	if err := settings.EnsureDefaultSwitches(ctx); err != nil {
		t.Fatalf("switches err=%v", err)
	}
	assets := &service.AssetService{Core: core}
	if err := assets.SeedAssets(ctx, []config.AssetConfig{{Symbol: "USDC", Decimals: 6}}); err != nil {
		t.Fatalf("seed err=%v", err)
	}
	usdc, err := assets.GetMintBySymbol(ctx, "USDC")
	if err != nil {
		t.Fatalf("usdc err=%v", err)
	}
	pools := &service.PoolService{Core: core}
	yield := &service.YieldService{Core: core}

	engine := gin.New()
	engine.Use(auth.Middleware(auth.JWT{}, true))
	(&HealthHandler{}).Register(engine)
	(&AssetHandler{Assets: assets}).Register(engine)
	(&PoolHandler{Pools: pools, Assets: assets, Yield: yield}).Register(engine)
	(&AuditHandler{Audit: &service.AuditService{Core: core}, Repo: repo}).Register(engine)
	(&SystemSettingsHandler{Repo: repo, Settings: settings, Admins: admins}).Register(engine)
	return &testServer{t: t, engine: engine, usdc: usdc.Address}
}

func (s *testServer) do(method, path string, actor *address.Address, body any) (int, apiResponse, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode err=%v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set(auth.ActorHeader, actor.String())
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		s.t.Fatalf("decode %s %s body=%s err=%v", method, path, w.Body.String(), err)
	}
	data, _ := resp.Data.(map[string]any)
	return w.Code, resp, data
}

func TestPoolFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	code, _, data := s.do(http.MethodPost, "/api/v1/assets/"+s.usdc.String()+"/airdrop", &admin,
		map[string]any{"owner": user.String(), "amount_ui": "1.5"})
	if code != http.StatusOK || data["ui"] != "1.5" {
		t.Fatalf("airdrop code=%d data=%v", code, data)
	}

	code, resp, _ := s.do(http.MethodGet, "/api/v1/accounts/"+user.String()+"/balances", nil, nil)
	if balances, _ := resp.Data.([]any); code != http.StatusOK || len(balances) != 1 {
		t.Fatalf("balances code=%d data=%v", code, resp.Data)
	}

	code, _, data = s.do(http.MethodPost, "/api/v1/pools", &owner, map[string]any{"asset_mint": s.usdc.String()})
	if code != http.StatusCreated {
		t.Fatalf("init pool code=%d", code)
	}
	pool, _ := data["Address"].(string)
	if pool == "" || data["symbol"] != "USDC" {
		t.Fatalf("pool view=%v", data)
	}

	code, _, _ = s.do(http.MethodPost, "/api/v1/pools", &owner, map[string]any{"asset_mint": s.usdc.String()})
	if code != http.StatusConflict {
		t.Fatalf("second pool code=%d want=409", code)
	}

	code, _, _ = s.do(http.MethodPost, "/api/v1/pools/"+pool+"/deposit", nil, map[string]any{"amount": 1})
	if code != http.StatusUnauthorized {
		t.Fatalf("anonymous deposit code=%d want=401", code)
	}

	code, _, data = s.do(http.MethodPost, "/api/v1/pools/"+pool+"/deposit", &user, map[string]any{"amount": 1_000_000})
	if code != http.StatusOK || data["Principal"] != float64(1_000_000) {
		t.Fatalf("deposit code=%d data=%v", code, data)
	}

	code, _, data = s.do(http.MethodGet, "/api/v1/pools/"+pool+"/balance?user="+user.String(), nil, nil)
	if code != http.StatusOK || data["amount"] != float64(1_000_000) || data["ui"] != "1" {
		t.Fatalf("balance code=%d data=%v", code, data)
	}

	code, resp, _ = s.do(http.MethodPost, "/api/v1/pools/"+pool+"/withdraw", &user, map[string]any{"amount": 5_000_000})
	if code != http.StatusUnprocessableEntity || resp.Meta["error_code"] != string(ledger.CodeInsufficientBalance) {
		t.Fatalf("overdraw code=%d meta=%v", code, resp.Meta)
	}

	code, _, _ = s.do(http.MethodPost, "/api/v1/pools/"+pool+"/withdraw", &user, map[string]any{"amount": 1, "amount_ui": "1"})
	if code != http.StatusBadRequest {
		t.Fatalf("double amount code=%d want=400", code)
	}

	code, _, _ = s.do(http.MethodPost, "/api/v1/pools/"+pool+"/redeem", &user, map[string]any{"amount": 1})
	if code != http.StatusBadRequest {
		t.Fatalf("redeem default position code=%d want=400", code)
	}

	code, resp, _ = s.do(http.MethodGet, "/api/v1/audit", nil, nil)
	if code != http.StatusOK || resp.Meta["ok"] != true {
		t.Fatalf("audit code=%d meta=%v", code, resp.Meta)
	}

	code, resp, _ = s.do(http.MethodGet, "/api/v1/journal?operation=deposit", nil, nil)
	if code != http.StatusOK || resp.Meta["total"] != float64(1) {
		t.Fatalf("journal code=%d meta=%v", code, resp.Meta)
	}
}

func TestBadAddressAndMissingPool(t *testing.T) {
	s := newTestServer(t)
	if code, _, _ := s.do(http.MethodGet, "/api/v1/pools/not-base58!", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("bad address code=%d want=400", code)
	}
	if code, _, _ := s.do(http.MethodGet, "/api/v1/pools/"+testAddr(9).String(), nil, nil); code != http.StatusNotFound {
		t.Fatalf("missing pool code=%d want=404", code)
	}
	if code, _, _ := s.do(http.MethodGet, "/api/v1/assets/USDC", nil, nil); code != http.StatusOK {
		t.Fatalf("asset by symbol code=%d", code)
	}
}

func TestSwitchesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"enabled": false}
	if code, _, _ := s.do(http.MethodPut, "/api/v1/system-settings/switches/listing_expiry", &user, body); code != http.StatusForbidden {
		t.Fatalf("non-admin code=%d want=403", code)
	}
	code, _, data := s.do(http.MethodPut, "/api/v1/system-settings/switches/listing_expiry", &admin, body)
	if code != http.StatusOK || data["enabled"] != false || data["key"] != "feature.listing_expiry" {
		t.Fatalf("admin code=%d data=%v", code, data)
	}

	code, resp, _ := s.do(http.MethodGet, "/api/v1/system-settings/switches", nil, nil)
	items, _ := resp.Data.([]any)
	if code != http.StatusOK || len(items) != len(service.DefaultFeatureSwitches()) {
		t.Fatalf("switches code=%d items=%v", code, items)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := map[ledger.Code]int{
		ledger.CodeAlreadyExists:       http.StatusConflict,
		ledger.CodeInactiveStrategy:    http.StatusConflict,
		ledger.CodeNotFound:            http.StatusNotFound,
		ledger.CodeInvalidAmount:       http.StatusBadRequest,
		ledger.CodeInsufficientBalance: http.StatusUnprocessableEntity,
		ledger.CodeNotMatured:          StatusTooEarly,
		ledger.CodeUnauthorized:        http.StatusForbidden,
		ledger.CodeInconsistentState:   http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := statusFor(code); got != want {
			t.Fatalf("status(%s)=%d want=%d", code, got, want)
		}
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("readyz code=%d", w.Code)
	}
}
