package orch

import (
	"encoding/json"

	"github.com/dkeye/careline/internal/domain"
)

func (o *Orchestrator) SendMessage(message json.RawMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Chat.RelayMessage(message)
}

func (o *Orchestrator) DeleteMessage(messageID string, user, doctor domain.UserID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Chat.RelayDeletion(messageID, user, doctor)
}
