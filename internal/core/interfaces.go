package core

import "github.com/dkeye/careline/internal/domain"

// PublishResult reports delivery stats/backpressure to callers.
type PublishResult struct {
	SendTo  int
	Dropped []domain.ConnID
}

// Transport is the grouping and addressing primitive the signaling
// components are built on. Emission is fire-and-forget: nothing is queued
// for connections that are not attached.
type Transport interface {
	Join(id domain.ConnID, room domain.RoomKey)
	Leave(id domain.ConnID, room domain.RoomKey)
	EmitTo(id domain.ConnID, event string, data any) bool
	EmitRoom(room domain.RoomKey, event string, data any) PublishResult
	Broadcast(event string, data any) PublishResult
}
