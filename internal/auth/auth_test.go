package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"yieldmarket/internal/address"
)

func testJWT() JWT {
	return JWT{Secret: []byte("test-secret"), TokenTTL: time.Hour}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	j := testJWT()
	actor := address.FromBytes([]byte("alice"))
	tok, exp, err := j.Issue(actor, "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %v", exp)
	}
	claims, err := j.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	got, err := claims.Actor()
	if err != nil || got != actor {
		t.Fatalf("actor=%v err=%v want=%v", got, err, actor)
	}
	if claims.Role != "user" || claims.Issuer != defaultIssuer {
		t.Fatalf("claims=%+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	j := testJWT()
	actor := address.FromBytes([]byte("alice"))
	tok, _, _ := j.Issue(actor, "")

	other := JWT{Secret: []byte("other")}
	if _, err := other.Verify(tok); err == nil {
		t.Fatalf("expected signature failure")
	}
	wrongIssuer := JWT{Secret: j.Secret, Issuer: "someone-else"}
	if _, err := wrongIssuer.Verify(tok); err == nil {
		t.Fatalf("expected issuer failure")
	}

	expired, _, err := j.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   actor.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := j.Verify(expired); err == nil {
		t.Fatalf("expected expiry failure")
	}
	if _, _, err := (JWT{}).Issue(actor, ""); err == nil {
		t.Fatalf("expected empty secret failure")
	}
}

func newEngine(j JWT, disabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(j, disabled))
	echo := func(c *gin.Context) {
		c.String(http.StatusOK, ActorString(c))
	}
	r.GET("/api/v1/thing", echo)
	r.POST("/api/v1/thing", echo)
	r.POST("/healthz", echo)
	return r
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareBearer(t *testing.T) {
	j := testJWT()
	r := newEngine(j, false)
	actor := address.FromBytes([]byte("bob"))
	tok, _, _ := j.Issue(actor, "")

	if w := do(r, http.MethodPost, "/api/v1/thing", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous write status=%d want=401", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/thing", nil); w.Code != http.StatusOK || w.Body.String() != "" {
		t.Fatalf("anonymous read status=%d body=%q", w.Code, w.Body.String())
	}
	w := do(r, http.MethodPost, "/api/v1/thing", map[string]string{"Authorization": "Bearer " + tok})
	if w.Code != http.StatusOK || w.Body.String() != actor.String() {
		t.Fatalf("status=%d body=%q want actor", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/api/v1/thing", map[string]string{"Authorization": "Bearer junk"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status=%d want=401", w.Code)
	}
	if w := do(r, http.MethodPost, "/healthz", nil); w.Code != http.StatusOK {
		t.Fatalf("non-api status=%d want=200", w.Code)
	}
	// The actor header is ignored unless auth is disabled.
	if w := do(r, http.MethodPost, "/api/v1/thing", map[string]string{ActorHeader: actor.String()}); w.Code != http.StatusUnauthorized {
		t.Fatalf("header-only status=%d want=401", w.Code)
	}
}

func TestMiddlewareDisabledTrustsHeader(t *testing.T) {
	r := newEngine(JWT{}, true)
	actor := address.FromBytes([]byte("carol"))
	w := do(r, http.MethodPost, "/api/v1/thing", map[string]string{ActorHeader: actor.String()})
	if w.Code != http.StatusOK || w.Body.String() != actor.String() {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, "/api/v1/thing", map[string]string{ActorHeader: "not-base58-0OIl"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad header status=%d want=401", w.Code)
	}
}
