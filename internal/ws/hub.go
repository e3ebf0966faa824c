package ws

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

type userMessage struct {
	userID  uuid.UUID
	payload []byte
}

// Hub fans messages out to the connections of a single user.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	publish    chan userMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *log.Logger

	onCount func(total int)
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		publish:    make(chan userMessage, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger,
	}
}

// OnCount is called with the connection total after every change.
func (h *Hub) OnCount(fn func(total int)) {
	h.onCount = fn
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.closeAll()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			total := h.countLocked()
			h.mutex.Unlock()
			h.reportCount(total)
			h.logf("WS connected | user_id=%s total_clients=%d", client.userID, total)

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.removeLocked(client)
			total := h.countLocked()
			h.mutex.Unlock()
			h.reportCount(total)
			h.logf("WS disconnected | user_id=%s total_clients=%d", client.userID, total)

		case msg := <-h.publish:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients[msg.userID]))
			for c := range h.clients[msg.userID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			var slow []*Client
			for _, client := range targets {
				select {
				case client.send <- msg.payload:
				default:
					slow = append(slow, client)
				}
			}
			if len(slow) > 0 {
				h.mutex.Lock()
				for _, c := range slow {
					h.removeLocked(c)
				}
				total := h.countLocked()
				h.mutex.Unlock()
				h.reportCount(total)
				h.logf("WS dropped slow clients | user_id=%s dropped=%d", msg.userID, len(slow))
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// Publish queues payload for every connection of userID. The message is
// dropped when the hub is saturated.
func (h *Hub) Publish(userID uuid.UUID, payload []byte) {
	if h == nil {
		return
	}
	select {
	case h.publish <- userMessage{userID: userID, payload: payload}:
	default:
		h.logf("WS publish dropped | user_id=%s reason=buffer_full", userID)
	}
}

// Broadcast queues payload for every connected user.
func (h *Hub) Broadcast(payload []byte) {
	if h == nil {
		return
	}
	h.mutex.RLock()
	users := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		users = append(users, id)
	}
	h.mutex.RUnlock()

	for _, id := range users {
		h.Publish(id, payload)
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.countLocked()
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, set := range h.clients {
		for c := range set {
			close(c.send)
		}
	}
	h.clients = make(map[uuid.UUID]map[*Client]struct{})
	h.reportCount(0)
}

func (h *Hub) reportCount(total int) {
	if h.onCount != nil {
		h.onCount(total)
	}
}

func (h *Hub) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
