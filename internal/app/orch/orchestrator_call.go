package orch

import (
	"encoding/json"

	"github.com/dkeye/careline/internal/domain"
)

func (o *Orchestrator) RegisterUser(id domain.ConnID, user domain.UserID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Presence.Register(id, user)
}

func (o *Orchestrator) CallUser(id domain.ConnID, to, from domain.UserID, offer json.RawMessage) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Calls.Initiate(id, from, to, offer)
}

func (o *Orchestrator) AcceptCall(id, to domain.ConnID, answer json.RawMessage) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Calls.Accept(id, to, answer)
}

func (o *Orchestrator) ICECandidate(id, to domain.ConnID, candidate json.RawMessage) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Calls.Candidate(id, to, candidate)
}

func (o *Orchestrator) RejectCall(id, to domain.ConnID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Calls.Reject(id, to)
}

func (o *Orchestrator) EndCall(id, to domain.ConnID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Calls.End(id, to)
}

func (o *Orchestrator) OnlineUsers() []domain.UserID {
	return o.Registry.Snapshot()
}
