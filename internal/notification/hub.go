package notification

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/ec-storefront/internal/auth"
)

// Audience scopes delivery of an event: every admin, or a single user
type Audience string

const AdminAudience Audience = "admin"

func UserAudience(userID string) Audience {
	return Audience("user:" + userID)
}

// AudiencesFor maps role claims to the audiences a connection joins. The
// result is fixed for the lifetime of the connection.
func AudiencesFor(claims *auth.Claims) []Audience {
	var audiences []Audience
	if claims.HasRole(auth.RoleAdmin) {
		audiences = append(audiences, AdminAudience)
	}
	if claims.HasRole(auth.RoleCustomer) {
		audiences = append(audiences, UserAudience(claims.UserID))
	}
	return audiences
}

type Kind string

const (
	KindNewOrder           Kind = "new_order"
	KindLowStockAlert      Kind = "low_stock_alert"
	KindOrderUpdated       Kind = "order_updated"
	KindOrderStatusChanged Kind = "order_status_changed"
	KindProductCreated     Kind = "product_created"
	KindProductUpdated     Kind = "product_updated"
	KindProductDeleted     Kind = "product_deleted"
	KindCategoryCreated    Kind = "category_created"
	KindCategoryDeleted    Kind = "category_deleted"
)

// Event is the frame written to WebSocket clients
type Event struct {
	Event     Kind      `json:"event"`
	Data      any       `json:"data"`
	EmittedAt time.Time `json:"emittedAt"`
}

// Emitter publishes best-effort, non-durable notifications
type Emitter interface {
	Emit(audience Audience, kind Kind, payload any)
}

const (
	clientBufferSize  = 32
	publishBufferSize = 256
)

type delivery struct {
	audience Audience
	frame    []byte
}

// Hub owns the set of connected clients. Only the Run goroutine touches the
// client map; everything else talks to it over channels.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	publish    chan delivery

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	started  atomic.Bool

	connected atomic.Int64
	dropped   atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan delivery, publishBufferSize),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Run is the hub event loop; it returns after Stop
func (h *Hub) Run() {
	h.started.Store(true)
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.connected.Store(int64(len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.connected.Store(int64(len(h.clients)))
			}

		case d := <-h.publish:
			for c := range h.clients {
				if !c.joined(d.audience) {
					continue
				}
				select {
				case c.send <- d.frame:
				default:
					h.dropped.Add(1)
					log.Printf("[Hub] Dropped frame for slow client %s", c.userID)
				}
			}

		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.connected.Store(0)
			return
		}
	}
}

// Stop ends Run and disconnects every client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	if h.started.Load() {
		<-h.stopped
	}
}

// Emit queues an event for every client in audience. It never blocks:
// when the hub is saturated or stopped the event is dropped.
func (h *Hub) Emit(audience Audience, kind Kind, payload any) {
	frame, err := json.Marshal(Event{Event: kind, Data: payload, EmittedAt: time.Now().UTC()})
	if err != nil {
		log.Printf("[Hub] Failed to encode %s event: %v", kind, err)
		return
	}

	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.publish <- delivery{audience: audience, frame: frame}:
	default:
		h.dropped.Add(1)
		log.Printf("[Hub] Publish queue full, dropped %s for %s", kind, audience)
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	return int(h.connected.Load())
}

// Dropped returns how many frames were discarded
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
