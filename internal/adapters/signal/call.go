package signal

import (
	"encoding/json"

	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
	"github.com/rs/zerolog/log"
)

// callTarget is the common part of the control events: the connection id the
// client received in incomingCall (or as callerConnectionId).
type callTarget struct {
	To domain.ConnID `json:"to"`
}

func (ctl *SignalWSController) decodeCall(c *WsSignalConn, env core.Envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Str("event", env.Event).Msg("bad call payload")
		ctl.sendError(c, env.Event, "bad_payload")
		return false
	}
	return true
}

func (ctl *SignalWSController) handleRegister(c *WsSignalConn, env core.Envelope) {
	user, ok := decodeID(env.Data)
	if !ok {
		ctl.sendError(c, env.Event, "bad_payload")
		return
	}
	ctl.Orch.RegisterUser(c.id, user)
}

func (ctl *SignalWSController) handleCallUser(c *WsSignalConn, env core.Envelope) {
	var p struct {
		To    domain.UserID   `json:"to"`
		From  domain.UserID   `json:"from"`
		Offer json.RawMessage `json:"offer"`
	}
	if !ctl.decodeCall(c, env, &p) {
		return
	}
	ctl.Orch.CallUser(c.id, p.To, p.From, p.Offer)
}

func (ctl *SignalWSController) handleAcceptCall(c *WsSignalConn, env core.Envelope) {
	var p struct {
		callTarget
		Answer json.RawMessage `json:"answer"`
	}
	if !ctl.decodeCall(c, env, &p) {
		return
	}
	ctl.Orch.AcceptCall(c.id, p.To, p.Answer)
}

func (ctl *SignalWSController) handleCandidate(c *WsSignalConn, env core.Envelope) {
	var p struct {
		callTarget
		Candidate json.RawMessage `json:"candidate"`
	}
	if !ctl.decodeCall(c, env, &p) {
		return
	}
	ctl.Orch.ICECandidate(c.id, p.To, p.Candidate)
}

func (ctl *SignalWSController) handleRejectCall(c *WsSignalConn, env core.Envelope) {
	var p callTarget
	if !ctl.decodeCall(c, env, &p) {
		return
	}
	ctl.Orch.RejectCall(c.id, p.To)
}

func (ctl *SignalWSController) handleEndCall(c *WsSignalConn, env core.Envelope) {
	var p callTarget
	if !ctl.decodeCall(c, env, &p) {
		return
	}
	ctl.Orch.EndCall(c.id, p.To)
}
