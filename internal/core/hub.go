package core

import (
	"sort"
	"sync"

	"github.com/dkeye/careline/internal/domain"
	"github.com/dkeye/careline/internal/metrics"
	"github.com/rs/zerolog/log"
)

// DropFunc is called for every connection whose send buffer rejected a frame.
type DropFunc func(id domain.ConnID, conn SignalConnection)

type hubEntry struct {
	meta  *domain.Member
	conn  SignalConnection
	rooms map[domain.RoomKey]struct{}
}

// Hub is a threadsafe in-memory connection set with room membership.
// It never closes adapter-owned resources.
type Hub struct {
	mu     sync.RWMutex
	conns  map[domain.ConnID]*hubEntry
	rooms  map[domain.RoomKey]map[domain.ConnID]struct{}
	onDrop DropFunc
}

var _ Transport = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		conns: make(map[domain.ConnID]*hubEntry),
		rooms: make(map[domain.RoomKey]map[domain.ConnID]struct{}),
	}
}

// OnDrop installs the backpressure callback. Must be set before traffic starts.
func (h *Hub) OnDrop(fn DropFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDrop = fn
}

func (h *Hub) Attach(meta *domain.Member, conn SignalConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[meta.Conn] = &hubEntry{
		meta:  meta,
		conn:  conn,
		rooms: make(map[domain.RoomKey]struct{}),
	}
	metrics.Connections.Set(float64(len(h.conns)))
	log.Info().Str("module", "core.hub").Str("conn", string(meta.Conn)).Str("device", meta.Device).Msg("connection attached")
}

// Detach forgets the connection and drops it from every room it joined.
func (h *Hub) Detach(id domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.conns[id]
	if !ok {
		return
	}
	for room := range e.rooms {
		h.removeFromRoom(id, room)
	}
	delete(h.conns, id)
	metrics.Connections.Set(float64(len(h.conns)))
	log.Info().Str("module", "core.hub").Str("conn", string(id)).Int("rooms", len(e.rooms)).Msg("connection detached")
}

func (h *Hub) Join(id domain.ConnID, room domain.RoomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.conns[id]
	if !ok {
		log.Debug().Str("module", "core.hub").Str("conn", string(id)).Str("room", string(room)).Msg("join for unknown connection")
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[domain.ConnID]struct{})
		h.rooms[room] = members
	}
	members[id] = struct{}{}
	e.rooms[room] = struct{}{}
	log.Info().Str("module", "core.hub").Str("conn", string(id)).Str("room", string(room)).Msg("joined room")
}

func (h *Hub) Leave(id domain.ConnID, room domain.RoomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := h.conns[id]; ok {
		delete(e.rooms, room)
	}
	h.removeFromRoom(id, room)
	log.Info().Str("module", "core.hub").Str("conn", string(id)).Str("room", string(room)).Msg("left room")
}

// removeFromRoom must be called with h.mu held.
func (h *Hub) removeFromRoom(id domain.ConnID, room domain.RoomKey) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) EmitTo(id domain.ConnID, event string, data any) bool {
	frame, ok := h.encode(event, data)
	if !ok {
		return false
	}
	h.mu.RLock()
	e, found := h.conns[id]
	h.mu.RUnlock()
	if !found {
		log.Debug().Str("module", "core.hub").Str("conn", string(id)).Str("event", event).Msg("emit to unknown connection")
		return false
	}
	res := h.deliver(event, frame, []*hubEntry{e})
	return res.SendTo == 1
}

func (h *Hub) EmitRoom(room domain.RoomKey, event string, data any) PublishResult {
	frame, ok := h.encode(event, data)
	if !ok {
		return PublishResult{}
	}
	h.mu.RLock()
	targets := make([]*hubEntry, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		targets = append(targets, h.conns[id])
	}
	h.mu.RUnlock()
	res := h.deliver(event, frame, targets)
	log.Debug().Str("module", "core.hub").Str("room", string(room)).Str("event", event).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("room emit")
	return res
}

func (h *Hub) Broadcast(event string, data any) PublishResult {
	frame, ok := h.encode(event, data)
	if !ok {
		return PublishResult{}
	}
	h.mu.RLock()
	targets := make([]*hubEntry, 0, len(h.conns))
	for _, e := range h.conns {
		targets = append(targets, e)
	}
	h.mu.RUnlock()
	res := h.deliver(event, frame, targets)
	log.Debug().Str("module", "core.hub").Str("event", event).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast")
	return res
}

// Members returns the sorted connection ids currently in room.
func (h *Hub) Members(room domain.RoomKey) []domain.ConnID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.ConnID, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) encode(event string, data any) (Frame, bool) {
	frame, err := Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "core.hub").Str("event", event).Msg("encode frame")
		return nil, false
	}
	return frame, true
}

func (h *Hub) deliver(event string, frame Frame, targets []*hubEntry) PublishResult {
	res := PublishResult{}
	var dropped []*hubEntry
	for _, e := range targets {
		if err := e.conn.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, e.meta.Conn)
			dropped = append(dropped, e)
			continue
		}
		res.SendTo++
	}
	metrics.FramesSent.WithLabelValues(event).Add(float64(res.SendTo))
	if len(dropped) == 0 {
		return res
	}
	metrics.FramesDropped.WithLabelValues(event).Add(float64(len(dropped)))
	h.mu.RLock()
	onDrop := h.onDrop
	h.mu.RUnlock()
	for _, e := range dropped {
		log.Warn().Str("module", "core.hub").Str("conn", string(e.meta.Conn)).Str("event", event).Msg("frame dropped")
		if onDrop != nil {
			onDrop(e.meta.Conn, e.conn)
		}
	}
	return res
}
