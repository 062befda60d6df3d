package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"yieldmarket/internal/address"
)

// ActorHeader names the caller when authentication is disabled. Development only.
const ActorHeader = "X-Actor"

type ctxKey int

const (
	claimsKey ctxKey = 1
	actorKey  ctxKey = 2
)

func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey).(Claims)
	return c, ok
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func WithActor(ctx context.Context, a address.Address) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

func ActorFromContext(ctx context.Context) (address.Address, bool) {
	a, ok := ctx.Value(actorKey).(address.Address)
	return a, ok
}

// ActorFromGin returns the authenticated caller of the request.
func ActorFromGin(c *gin.Context) (address.Address, bool) {
	if c == nil || c.Request == nil {
		return address.Zero, false
	}
	return ActorFromContext(c.Request.Context())
}

// ActorString is ActorFromGin rendered for logs; empty when unauthenticated.
func ActorString(c *gin.Context) string {
	if a, ok := ActorFromGin(c); ok {
		return a.String()
	}
	return ""
}

// Middleware resolves the caller of /api requests. Reads pass through unauthenticated; writes are
// rejected without a caller. With disabled set the X-Actor header is trusted instead of a token.
func Middleware(j JWT, disabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !strings.HasPrefix(path, "/api/") {
			c.Next()
			return
		}

		var (
			actor address.Address
			ok    bool
		)
		if disabled {
			if raw := strings.TrimSpace(c.GetHeader(ActorHeader)); raw != "" {
				a, err := address.Parse(raw)
				if err != nil {
					abort(c, http.StatusUnauthorized, "invalid "+ActorHeader+" header")
					return
				}
				actor, ok = a, true
			}
		} else if tok := bearerToken(c.GetHeader("Authorization")); tok != "" {
			claims, err := j.Verify(tok)
			if err != nil {
				abort(c, http.StatusUnauthorized, "invalid token")
				return
			}
			a, err := claims.Actor()
			if err != nil {
				abort(c, http.StatusUnauthorized, "invalid token subject")
				return
			}
			c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
			actor, ok = a, true
		}

		if ok {
			c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))
		} else if !readOnly(c.Request.Method) {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		c.Next()
	}
}

func readOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"code": status, "message": msg})
}

func bearerToken(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	parts := strings.SplitN(v, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
