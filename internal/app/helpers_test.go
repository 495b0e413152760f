package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	frames []core.Envelope
}

func (r *recorder) TrySend(f core.Frame) error {
	env, err := core.Decode(f)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, env)
	return nil
}

func (r *recorder) Close() {}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.frames))
	for _, f := range r.frames {
		out = append(out, f.Event)
	}
	return out
}

// only returns the data of the single frame with the given event.
func (r *recorder) only(t *testing.T, event string) json.RawMessage {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []json.RawMessage
	for _, f := range r.frames {
		if f.Event == event {
			found = append(found, f.Data)
		}
	}
	require.Len(t, found, 1, "frames of %s", event)
	return found[0]
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

type fixture struct {
	hub        *core.Hub
	registry   *Registry
	rooms      *Router
	presence   *Presence
	chat       *ChatRelay
	calls      *CallSignaling
	reconciler *Reconciler
}

func newFixture(opts CallOptions, notify HangupNotify) *fixture {
	hub := core.NewHub()
	reg := NewRegistry()
	rooms := NewRouter(hub, "", "")
	presence := NewPresence(reg, hub)
	calls := NewCallSignaling(reg, hub, opts)
	return &fixture{
		hub:        hub,
		registry:   reg,
		rooms:      rooms,
		presence:   presence,
		chat:       NewChatRelay(rooms),
		calls:      calls,
		reconciler: NewReconciler(reg, presence, calls, hub, notify),
	}
}

func (f *fixture) connect(id domain.ConnID) *recorder {
	r := &recorder{}
	f.hub.Attach(domain.NewMember(id, ""), r)
	return r
}

func (f *fixture) disconnect(id domain.ConnID) {
	f.hub.Detach(id)
	f.reconciler.Reconcile(id)
}
