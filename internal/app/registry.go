package app

import (
	"sort"
	"sync"

	"github.com/dkeye/careline/internal/domain"
	"github.com/dkeye/careline/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Registry maps live connections to the users that registered for calls.
// A user resolves to at most one connection: the last one that registered.
type Registry struct {
	mu     sync.RWMutex
	byConn map[domain.ConnID]domain.UserID
	byUser map[domain.UserID]domain.ConnID
}

func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[domain.ConnID]domain.UserID),
		byUser: make(map[domain.UserID]domain.ConnID),
	}
}

// Register inserts or overwrites the mapping and returns the new presence snapshot.
func (r *Registry) Register(conn domain.ConnID, user domain.UserID) []domain.UserID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byConn[conn]; ok && prev != user {
		if r.byUser[prev] == conn {
			delete(r.byUser, prev)
		}
	}
	if old, ok := r.byUser[user]; ok && old != conn {
		delete(r.byConn, old)
		log.Info().Str("module", "app.registry").Str("user", string(user)).Str("old_conn", string(old)).Str("conn", string(conn)).Msg("registration overwritten")
	}
	r.byConn[conn] = user
	r.byUser[user] = conn
	metrics.RegisteredUsers.Set(float64(len(r.byUser)))
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Str("user", string(user)).Msg("registered")
	return r.snapshotLocked()
}

func (r *Registry) Lookup(user domain.UserID) (domain.ConnID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byUser[user]
	return conn, ok
}

// UserOf returns the user registered on conn, if any.
func (r *Registry) UserOf(conn domain.ConnID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byConn[conn]
	return user, ok
}

// Remove deletes the entry of conn if present. It is idempotent.
func (r *Registry) Remove(conn domain.ConnID) (domain.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byConn[conn]
	if !ok {
		return "", false
	}
	delete(r.byConn, conn)
	if r.byUser[user] == conn {
		delete(r.byUser, user)
	}
	metrics.RegisteredUsers.Set(float64(len(r.byUser)))
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Str("user", string(user)).Msg("unregistered")
	return user, true
}

// Snapshot lists all registered users, sorted.
func (r *Registry) Snapshot() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []domain.UserID {
	out := make([]domain.UserID, 0, len(r.byUser))
	for u := range r.byUser {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AnyOther returns some registered connection whose user differs from user.
// The lowest connection id wins so the choice is stable.
func (r *Registry) AnyOther(user domain.UserID) (domain.ConnID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		best  domain.ConnID
		found bool
	)
	for conn, u := range r.byConn {
		if u == user {
			continue
		}
		if !found || conn < best {
			best, found = conn, true
		}
	}
	return best, found
}
