package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	TypePoolInitialized    = "pool.initialized"
	TypeDepositInitialized = "deposit.initialized"
	TypeDeposited          = "pool.deposited"
	TypeWithdrawn          = "pool.withdrawn"
	TypeRewardsFunded      = "pool.rewards_funded"
	TypeStrategyCreated    = "strategy.created"
	TypeStrategyUpdated    = "strategy.updated"
	TypeYieldMinted        = "yield.minted"
	TypeRedeemed           = "yield.redeemed"
	TypeYieldReset         = "yield.reset"
	TypeListingCreated     = "listing.created"
	TypeListingSold        = "listing.sold"
	TypeListingCancelled   = "listing.cancelled"
	TypeAssetRegistered    = "asset.registered"
	TypeAirdrop            = "asset.airdrop"
	TypeAuditFinding       = "audit.finding"
)

// Event is a committed ledger change. Subject is the address of the entity that changed.
type Event struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Subject string         `json:"subject"`
	Actor   string         `json:"actor,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	At      time.Time      `json:"at"`
}

// Hub fans committed events out to subscribers. Slow subscribers drop events rather than
// block the ledger.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Event
	nextID  uint64
	dropped uint64
}

func NewHub() *Hub {
	return &Hub{subs: map[uint64]chan Event{}}
}

func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			atomic.AddUint64(&h.dropped, 1)
		}
	}
}

// Subscribe returns a channel of events and a cancel func that closes it.
func (h *Hub) Subscribe(buf int) (<-chan Event, func()) {
	if buf <= 0 {
		buf = 64
	}
	ch := make(chan Event, buf)
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Dropped() uint64 {
	if h == nil {
		return 0
	}
	return atomic.LoadUint64(&h.dropped)
}

func (h *Hub) Subscribers() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
