// Package hub bridges websocket subscribers to the simulation loop: join
// handling, command intake, and per-tick state broadcast.
package hub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/colehorsman/zombie-game-sub004/internal/sim"
	"github.com/colehorsman/zombie-game-sub004/internal/telemetry"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub owns the live subscriber set. Game state itself lives in the world;
// the hub only ferries commands in and snapshots out.
type Hub struct {
	loop    *sim.Loop
	logger  telemetry.Logger
	counter *telemetry.Counters

	mu          sync.Mutex
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
}

// New constructs a hub over the given loop.
func New(loop *sim.Loop, counters *telemetry.Counters, logger telemetry.Logger) *Hub {
	return &Hub{
		loop:        loop,
		logger:      logger,
		counter:     counters,
		subscribers: make(map[string]*subscriber),
	}
}

type joinResponse struct {
	ID string `json:"id"`
}

type stateMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	sim.Snapshot
}

type clientMessage struct {
	Type     string  `json:"type"`
	DX       float64 `json:"dx"`
	DY       float64 `json:"dy"`
	DirX     float64 `json:"dirX"`
	DirY     float64 `json:"dirY"`
	Piercing bool    `json:"piercing"`
	SentAt   int64   `json:"sentAt"`
}

type heartbeatMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
}

// HandleJoin registers a new player and answers with its assigned id. The
// player materializes in the world on the next tick.
func (h *Hub) HandleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := h.newPlayerID()
	h.enqueue(sim.Command{ActorID: id, Type: sim.CommandJoin, IssuedAt: time.Now()})
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(joinResponse{ID: id}); err != nil && h.logger != nil {
		h.logger.Printf("join response encode failed: %v", err)
	}
}

// HandleWS upgrades the connection and subscribes it to state broadcasts.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("websocket upgrade failed for %s: %v", id, err)
		}
		return
	}
	sub := &subscriber{conn: conn}

	h.mu.Lock()
	if existing, ok := h.subscribers[id]; ok {
		_ = existing.conn.Close()
	}
	h.subscribers[id] = sub
	h.mu.Unlock()

	go h.readPump(id, sub)
}

func (h *Hub) readPump(id string, sub *subscriber) {
	defer h.drop(id, sub)
	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if h.logger != nil {
				h.logger.Printf("bad client message from %s: %v", id, err)
			}
			continue
		}
		now := time.Now()
		switch msg.Type {
		case "input":
			h.enqueue(sim.Command{
				ActorID:  id,
				Type:     sim.CommandMove,
				IssuedAt: now,
				Move:     &sim.MoveCommand{DX: msg.DX, DY: msg.DY},
			})
		case "fire":
			h.enqueue(sim.Command{
				ActorID:  id,
				Type:     sim.CommandFire,
				IssuedAt: now,
				Fire:     &sim.FireCommand{DirX: msg.DirX, DirY: msg.DirY, Piercing: msg.Piercing},
			})
		case "heartbeat":
			h.enqueue(sim.Command{
				ActorID:   id,
				Type:      sim.CommandHeartbeat,
				IssuedAt:  now,
				Heartbeat: &sim.HeartbeatCommand{ReceivedAt: now, ClientSent: msg.SentAt},
			})
			reply := heartbeatMessage{Type: "heartbeat", ServerTime: now.UnixMilli(), ClientTime: msg.SentAt}
			if data, err := json.Marshal(reply); err == nil {
				_ = sub.write(data)
			}
		}
	}
}

func (h *Hub) drop(id string, sub *subscriber) {
	_ = sub.conn.Close()
	h.mu.Lock()
	if current, ok := h.subscribers[id]; ok && current == sub {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
	h.enqueue(sim.Command{ActorID: id, Type: sim.CommandLeave, IssuedAt: time.Now()})
}

// Broadcast pushes one tick's snapshot to every subscriber. Wired as the
// loop's AfterStep hook.
func (h *Hub) Broadcast(result sim.StepResult) {
	if h == nil {
		return
	}
	msg := stateMessage{Type: "state", ServerTime: result.Now.UnixMilli(), Snapshot: result.Snapshot}
	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("state marshal failed: %v", err)
		}
		return
	}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		if err := sub.write(data); err != nil {
			if h.logger != nil {
				h.logger.Printf("broadcast to %s failed: %v", id, err)
			}
		}
	}
	if h.counter != nil {
		h.counter.RecordBroadcast(len(data)*len(subs), len(result.Snapshot.Entities))
	}
}

// Subscribers reports the live subscriber count.
func (h *Hub) Subscribers() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *Hub) newPlayerID() string {
	return fmt.Sprintf("player-%d", h.nextID.Add(1))
}

func (h *Hub) enqueue(cmd sim.Command) {
	if h == nil || h.loop == nil {
		return
	}
	if ok, reason := h.loop.Enqueue(cmd); !ok && h.logger != nil {
		h.logger.Printf("command rejected actor=%s type=%s reason=%s", cmd.ActorID, cmd.Type, reason)
	}
}
