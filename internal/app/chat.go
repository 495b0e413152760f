package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/careline/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrBadPayload = errors.New("bad payload")

// ChatRelay forwards chat events to pair rooms. It persists nothing.
type ChatRelay struct {
	rooms *Router
}

func NewChatRelay(rooms *Router) *ChatRelay {
	return &ChatRelay{rooms: rooms}
}

type messageRoute struct {
	Sender   domain.UserID `json:"sender"`
	Receiver domain.UserID `json:"receiver"`
}

// RelayMessage emits the message verbatim to every connection in the
// sender/receiver pair room, the sender's own connections included.
func (c *ChatRelay) RelayMessage(message json.RawMessage) error {
	var rt messageRoute
	if err := json.Unmarshal(message, &rt); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	res := c.rooms.EmitToPair(rt.Sender, rt.Receiver, domain.EventReceiveMessage, message)
	log.Debug().Str("module", "app.chat").Str("sender", string(rt.Sender)).Str("receiver", string(rt.Receiver)).Int("sent_to", res.SendTo).Msg("message relayed")
	return nil
}

type MessageDeleted struct {
	MessageID string `json:"messageId"`
}

func (c *ChatRelay) RelayDeletion(messageID string, user, counterparty domain.UserID) {
	res := c.rooms.EmitToPair(user, counterparty, domain.EventMessageDeleted, MessageDeleted{MessageID: messageID})
	log.Debug().Str("module", "app.chat").Str("message", messageID).Int("sent_to", res.SendTo).Msg("deletion relayed")
}
