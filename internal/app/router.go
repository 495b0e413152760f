package app

import (
	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultAdminRoom domain.RoomKey = "admins"

// Router computes room keys and issues join/leave/emit calls on the transport.
// It holds no membership of its own.
type Router struct {
	tr        core.Transport
	sep       string
	adminRoom domain.RoomKey
}

func NewRouter(tr core.Transport, sep string, adminRoom domain.RoomKey) *Router {
	if sep == "" {
		sep = domain.DefaultPairSeparator
	}
	if adminRoom == "" {
		adminRoom = DefaultAdminRoom
	}
	return &Router{tr: tr, sep: sep, adminRoom: adminRoom}
}

func (r *Router) PairKey(a, b domain.UserID) domain.RoomKey {
	return domain.PairKey(a, b, r.sep)
}

func (r *Router) AdminRoom() domain.RoomKey { return r.adminRoom }

// IdentityRoom is the room used for unicast-by-identity delivery.
func (r *Router) IdentityRoom(id domain.UserID) domain.RoomKey {
	return domain.RoomKey(id)
}

func (r *Router) JoinPairRoom(conn domain.ConnID, a, b domain.UserID) domain.RoomKey {
	key := r.PairKey(a, b)
	r.tr.Join(conn, key)
	log.Debug().Str("module", "app.router").Str("conn", string(conn)).Str("room", string(key)).Msg("join pair room")
	return key
}

func (r *Router) LeavePairRoom(conn domain.ConnID, a, b domain.UserID) domain.RoomKey {
	key := r.PairKey(a, b)
	r.tr.Leave(conn, key)
	return key
}

func (r *Router) JoinNamedRoom(conn domain.ConnID, name domain.RoomKey) {
	r.tr.Join(conn, name)
	log.Debug().Str("module", "app.router").Str("conn", string(conn)).Str("room", string(name)).Msg("join named room")
}

func (r *Router) EmitToPair(a, b domain.UserID, event string, payload any) core.PublishResult {
	return r.tr.EmitRoom(r.PairKey(a, b), event, payload)
}

func (r *Router) EmitToNamed(name domain.RoomKey, event string, payload any) core.PublishResult {
	return r.tr.EmitRoom(name, event, payload)
}
