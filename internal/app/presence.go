package app

import (
	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
	"github.com/rs/zerolog/log"
)

// Presence publishes registry changes to every connection. Delivery is best-effort.
type Presence struct {
	registry *Registry
	tr       core.Transport
}

func NewPresence(registry *Registry, tr core.Transport) *Presence {
	return &Presence{registry: registry, tr: tr}
}

func (p *Presence) Register(conn domain.ConnID, user domain.UserID) {
	p.publish(p.registry.Register(conn, user))
}

func (p *Presence) Broadcast() {
	p.publish(p.registry.Snapshot())
}

func (p *Presence) publish(users []domain.UserID) {
	res := p.tr.Broadcast(domain.EventUserList, users)
	log.Debug().Str("module", "app.presence").Int("users", len(users)).Int("sent_to", res.SendTo).Msg("presence broadcast")
}
