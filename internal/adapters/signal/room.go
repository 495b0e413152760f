package signal

import (
	"encoding/json"

	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
	"github.com/rs/zerolog/log"
)

type chatRoomPayload struct {
	UserID   domain.UserID `json:"userId"`
	DoctorID domain.UserID `json:"doctorId"`
}

func (ctl *SignalWSController) decodeChatRoom(c *WsSignalConn, env core.Envelope) (chatRoomPayload, bool) {
	var p chatRoomPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("event", env.Event).Msg("bad chat room payload")
		ctl.sendError(c, env.Event, "bad_payload")
		return p, false
	}
	if p.UserID.Validate() != nil || p.DoctorID.Validate() != nil {
		ctl.sendError(c, env.Event, "bad_payload")
		return p, false
	}
	return p, true
}

func (ctl *SignalWSController) handleJoinChat(c *WsSignalConn, env core.Envelope) {
	if !ctl.allowJoin(c, env.Event) {
		return
	}
	p, ok := ctl.decodeChatRoom(c, env)
	if !ok {
		return
	}
	room := ctl.Orch.JoinChat(c.id, p.UserID, p.DoctorID)
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("room", string(room)).Msg("join chat")
}

func (ctl *SignalWSController) handleLeaveChat(c *WsSignalConn, env core.Envelope) {
	p, ok := ctl.decodeChatRoom(c, env)
	if !ok {
		return
	}
	ctl.Orch.LeaveChat(c.id, p.UserID, p.DoctorID)
}

func (ctl *SignalWSController) handleJoinAdmin(c *WsSignalConn, env core.Envelope) {
	if !ctl.allowJoin(c, env.Event) {
		return
	}
	ctl.Orch.JoinAdmin(c.id)
}

// handleJoinIdentity serves both joinUserRoom and joinDoctorRoom.
func (ctl *SignalWSController) handleJoinIdentity(c *WsSignalConn, env core.Envelope) {
	if !ctl.allowJoin(c, env.Event) {
		return
	}
	id, ok := decodeID(env.Data)
	if !ok {
		ctl.sendError(c, env.Event, "bad_payload")
		return
	}
	ctl.Orch.JoinIdentity(c.id, id)
}

// decodeID accepts a bare JSON string or an object carrying userId or doctorId.
func decodeID(raw json.RawMessage) (domain.UserID, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		id := domain.UserID(s)
		return id, id.Validate() == nil
	}
	var obj struct {
		UserID   domain.UserID `json:"userId"`
		DoctorID domain.UserID `json:"doctorId"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	id := obj.UserID
	if id == "" {
		id = obj.DoctorID
	}
	return id, id.Validate() == nil
}
