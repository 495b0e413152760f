package orch

import (
	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
)

func (o *Orchestrator) JoinChat(id domain.ConnID, user, doctor domain.UserID) domain.RoomKey {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Rooms.JoinPairRoom(id, user, doctor)
}

func (o *Orchestrator) LeaveChat(id domain.ConnID, user, doctor domain.UserID) domain.RoomKey {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Rooms.LeavePairRoom(id, user, doctor)
}

func (o *Orchestrator) JoinAdmin(id domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Rooms.JoinNamedRoom(id, o.Rooms.AdminRoom())
}

// JoinIdentity subscribes the connection to the room keyed by a user or doctor id.
func (o *Orchestrator) JoinIdentity(id domain.ConnID, who domain.UserID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Rooms.JoinNamedRoom(id, o.Rooms.IdentityRoom(who))
}

// Notify emits to a named room on behalf of an out-of-band collaborator.
func (o *Orchestrator) Notify(room domain.RoomKey, event string, data any) core.PublishResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Rooms.EmitToNamed(room, event, data)
}
