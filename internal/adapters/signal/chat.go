package signal

import (
	"encoding/json"

	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleSendMessage(c *WsSignalConn, env core.Envelope) {
	if err := ctl.Orch.SendMessage(env.Data); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("bad message payload")
		ctl.sendError(c, env.Event, "bad_payload")
	}
}

func (ctl *SignalWSController) handleMessageDeleted(c *WsSignalConn, env core.Envelope) {
	var p struct {
		MessageID string        `json:"messageId"`
		UserID    domain.UserID `json:"userId"`
		DoctorID  domain.UserID `json:"doctorId"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("bad delete payload")
		ctl.sendError(c, env.Event, "bad_payload")
		return
	}
	ctl.Orch.DeleteMessage(p.MessageID, p.UserID, p.DoctorID)
}
