package app

import (
	"fmt"

	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
	"github.com/rs/zerolog/log"
)

type HangupNotify string

const (
	// HangupAny tells an arbitrary other registered connection that the call ended.
	// It does not know who the actual peer was.
	HangupAny HangupNotify = "any"
	// HangupPeer tells the peers of the attempts the connection took part in.
	HangupPeer HangupNotify = "peer"
)

func ParseHangupNotify(s string) (HangupNotify, error) {
	switch HangupNotify(s) {
	case "", HangupAny:
		return HangupAny, nil
	case HangupPeer:
		return HangupPeer, nil
	}
	return "", fmt.Errorf("unknown hangup notify mode %q", s)
}

// Reconciler cleans up registry and call state after a transport disconnect.
type Reconciler struct {
	registry *Registry
	presence *Presence
	calls    *CallSignaling
	tr       core.Transport
	notify   HangupNotify
}

func NewReconciler(registry *Registry, presence *Presence, calls *CallSignaling, tr core.Transport, notify HangupNotify) *Reconciler {
	if notify == "" {
		notify = HangupAny
	}
	return &Reconciler{registry: registry, presence: presence, calls: calls, tr: tr, notify: notify}
}

// Reconcile must run once per disconnected connection, after the transport
// has dropped it.
func (r *Reconciler) Reconcile(conn domain.ConnID) {
	user, registered := r.registry.Remove(conn)
	peers := r.calls.DropConn(conn)
	r.presence.Broadcast()

	logger := log.With().Str("module", "app.reconciler").Str("conn", string(conn)).Str("user", string(user)).Logger()

	switch r.notify {
	case HangupPeer:
		// peers are told whether or not conn registered
		for _, peer := range peers {
			r.tr.EmitTo(peer, domain.EventCallEnded, CallControl{From: conn})
			logger.Info().Str("peer", string(peer)).Msg("call ended by disconnect")
		}
	default:
		if !registered {
			return
		}
		other, ok := r.registry.AnyOther(user)
		if !ok {
			return
		}
		r.tr.EmitTo(other, domain.EventCallEnded, CallControl{From: conn})
		logger.Info().Str("notified", string(other)).Msg("call ended by disconnect")
	}
}
