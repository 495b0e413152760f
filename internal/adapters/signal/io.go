package signal

import (
	"context"
	"time"

	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
	"github.com/dkeye/careline/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// DeviceTokenKey is the gin context key holding the device session token.
const DeviceTokenKey = "device_token"

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump owns the disconnect: when it returns the connection is gone for good.
func (ctl *SignalWSController) readPump(cancel context.CancelFunc, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.Orch.OnDisconnect(c.id)
		ctl.Limiter.Prune()
	}()

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(c, data)
	}
}

func (ctl *SignalWSController) handleSignal(c *WsSignalConn, data []byte) {
	env, err := core.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("bad json")
		ctl.sendError(c, "", "bad_json")
		return
	}
	metrics.EventsReceived.WithLabelValues(eventLabel(env.Event)).Inc()

	switch env.Event {
	case domain.EventJoinChatRoom:
		ctl.handleJoinChat(c, env)
	case domain.EventLeaveChatRoom:
		ctl.handleLeaveChat(c, env)
	case domain.EventJoinAdminRoom:
		ctl.handleJoinAdmin(c, env)
	case domain.EventJoinUserRoom, domain.EventJoinDoctorRoom:
		ctl.handleJoinIdentity(c, env)
	case domain.EventSendMessage:
		ctl.handleSendMessage(c, env)
	case domain.EventMessageDeleted:
		ctl.handleMessageDeleted(c, env)
	case domain.EventRegisterUser:
		ctl.handleRegister(c, env)
	case domain.EventCallUser:
		ctl.handleCallUser(c, env)
	case domain.EventAcceptCall:
		ctl.handleAcceptCall(c, env)
	case domain.EventICECandidate:
		ctl.handleCandidate(c, env)
	case domain.EventRejectCall:
		ctl.handleRejectCall(c, env)
	case domain.EventEndCall:
		ctl.handleEndCall(c, env)
	case domain.EventPing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("event", env.Event).Msg("unknown event")
	}
}

var knownEvents = map[string]struct{}{
	domain.EventJoinChatRoom:   {},
	domain.EventLeaveChatRoom:  {},
	domain.EventJoinAdminRoom:  {},
	domain.EventJoinUserRoom:   {},
	domain.EventJoinDoctorRoom: {},
	domain.EventSendMessage:    {},
	domain.EventMessageDeleted: {},
	domain.EventRegisterUser:   {},
	domain.EventCallUser:       {},
	domain.EventAcceptCall:     {},
	domain.EventICECandidate:   {},
	domain.EventRejectCall:     {},
	domain.EventEndCall:        {},
	domain.EventPing:           {},
}

// eventLabel keeps metric label cardinality bounded.
func eventLabel(name string) string {
	if _, ok := knownEvents[name]; ok {
		return name
	}
	return "unknown"
}

func (ctl *SignalWSController) send(c *WsSignalConn, event string, v any) {
	frame, err := core.Encode(event, v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", event).Msg("send encode")
		return
	}
	_ = c.TrySend(frame)
}

type errorPayload struct {
	Error string `json:"error"`
	Event string `json:"event,omitempty"`
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, event, code string) {
	ctl.send(c, domain.EventError, errorPayload{Error: code, Event: event})
}
