package orch

import (
	"sync"

	"github.com/dkeye/careline/internal/app"
	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
	"github.com/rs/zerolog/log"
)

type Options struct {
	PairSeparator string
	AdminRoom     domain.RoomKey
	Calls         app.CallOptions
	Hangup        app.HangupNotify
	Policy        app.Policy
}

// Orchestrator is the single entry point of the transport adapter. Handlers
// run one at a time so each event completes before the next one starts.
type Orchestrator struct {
	mu sync.Mutex

	Hub        *core.Hub
	Registry   *app.Registry
	Rooms      *app.Router
	Presence   *app.Presence
	Chat       *app.ChatRelay
	Calls      *app.CallSignaling
	Reconciler *app.Reconciler
	Policy     app.Policy
}

func New(hub *core.Hub, opts Options) *Orchestrator {
	reg := app.NewRegistry()
	rooms := app.NewRouter(hub, opts.PairSeparator, opts.AdminRoom)
	presence := app.NewPresence(reg, hub)
	calls := app.NewCallSignaling(reg, hub, opts.Calls)
	policy := opts.Policy
	if policy == nil {
		policy = app.DropPolicy{}
	}

	o := &Orchestrator{
		Hub:        hub,
		Registry:   reg,
		Rooms:      rooms,
		Presence:   presence,
		Chat:       app.NewChatRelay(rooms),
		Calls:      calls,
		Reconciler: app.NewReconciler(reg, presence, calls, hub, opts.Hangup),
		Policy:     policy,
	}
	hub.OnDrop(o.onDrop)
	return o
}

func (o *Orchestrator) OnConnect(meta *domain.Member, conn core.SignalConnection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Hub.Attach(meta, conn)
	o.Hub.EmitTo(meta.Conn, domain.EventConnected, struct {
		ConnectionID domain.ConnID `json:"connectionId"`
	}{meta.Conn})
}

// OnDisconnect drops the connection from the transport and reconciles
// registry and call state in the same step.
func (o *Orchestrator) OnDisconnect(id domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Hub.Detach(id)
	o.Reconciler.Reconcile(id)
}

func (o *Orchestrator) onDrop(id domain.ConnID, conn core.SignalConnection) {
	switch o.Policy.OnBackPressure(id) {
	case app.KickMember:
		log.Warn().Str("module", "orch").Str("conn", string(id)).Msg("kicking slow connection")
		conn.Close()
	case app.DropFrame:
	}
}
