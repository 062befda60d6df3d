package events

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// StreamHandler serves committed ledger events over a websocket.
type StreamHandler struct {
	Hub    *Hub
	Logger *zap.Logger
	// Enabled is consulted per connection; nil means always on.
	Enabled func(ctx context.Context) bool
}

func (h *StreamHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/events/ws", h.stream)
}

// @Summary Stream ledger events
// @Description Upgrades to a websocket and pushes every committed ledger event as JSON. The optional types parameter filters by comma separated event type prefixes.
// @Tags events
// @Param types query string false "event type prefixes, e.g. listing.,yield.redeemed"
// @Router /api/v1/events/ws [get]
func (h *StreamHandler) stream(c *gin.Context) {
	if h.Enabled != nil && !h.Enabled(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": http.StatusServiceUnavailable, "message": "event stream disabled"})
		return
	}
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Debug("events ws accept failed", zap.Error(err))
		}
		return
	}
	defer conn.CloseNow()

	filters := parseFilters(c.Query("types"))
	ch, cancel := h.Hub.Subscribe(128)
	defer cancel()

	// The client never sends; CloseRead handles control frames and cancels ctx on disconnect.
	ctx := conn.CloseRead(c.Request.Context())
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			pctx, pcancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				return
			}
		case ev, ok := <-ch:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "hub closed")
				return
			}
			if !matches(filters, ev.Type) {
				continue
			}
			wctx, wcancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(wctx, conn, ev)
			wcancel()
			if err != nil {
				if h.Logger != nil {
					h.Logger.Debug("events ws write failed", zap.Error(err))
				}
				return
			}
		}
	}
}

func parseFilters(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func matches(filters []string, typ string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if strings.HasPrefix(typ, f) {
			return true
		}
	}
	return false
}
