package app

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
	"github.com/dkeye/careline/internal/metrics"
	"github.com/rs/zerolog/log"
)

// CallOptions enables behavior stricter than plain relaying. The zero value
// relays every control event to the caller-supplied target.
type CallOptions struct {
	// Strict drops accept/reject/end events that do not match a live attempt.
	Strict bool
	// RingTimeout fails attempts that are still ringing after this long. 0 disables.
	RingTimeout time.Duration
}

type IncomingCall struct {
	From               domain.UserID   `json:"from"`
	Offer              json.RawMessage `json:"offer,omitempty"`
	CallerConnectionID domain.ConnID   `json:"callerConnectionId"`
}

type CallFailed struct {
	To     domain.UserID `json:"to"`
	Reason string        `json:"reason"`
}

type CallAccepted struct {
	From   domain.ConnID   `json:"from"`
	Answer json.RawMessage `json:"answer,omitempty"`
}

type ICECandidate struct {
	From      domain.ConnID   `json:"from"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// CallControl is the payload of callRejected and callEnded.
type CallControl struct {
	From domain.ConnID `json:"from"`
}

const (
	ReasonUnavailable = "unavailable"
	ReasonTimeout     = "timeout"
)

// callKey is the unordered pair of connections taking part in an attempt.
type callKey struct {
	a, b domain.ConnID
}

func keyOf(x, y domain.ConnID) callKey {
	if y < x {
		x, y = y, x
	}
	return callKey{a: x, b: y}
}

// CallSignaling relays WebRTC offer/answer/candidate and call control
// between two connections and tracks each attempt's state.
type CallSignaling struct {
	mu       sync.Mutex
	registry *Registry
	tr       core.Transport
	opts     CallOptions
	attempts map[callKey]*domain.CallAttempt
	timers   map[callKey]*time.Timer
}

func NewCallSignaling(registry *Registry, tr core.Transport, opts CallOptions) *CallSignaling {
	return &CallSignaling{
		registry: registry,
		tr:       tr,
		opts:     opts,
		attempts: make(map[callKey]*domain.CallAttempt),
		timers:   make(map[callKey]*time.Timer),
	}
}

// Initiate rings the connection registered for callee. When callee is not
// registered only the caller hears back, with callFailed.
func (s *CallSignaling) Initiate(from domain.ConnID, caller, callee domain.UserID, offer json.RawMessage) bool {
	target, ok := s.registry.Lookup(callee)
	if !ok {
		s.tr.EmitTo(from, domain.EventCallFailed, CallFailed{To: callee, Reason: ReasonUnavailable})
		metrics.Calls.WithLabelValues(metrics.OutcomeFailed).Inc()
		log.Info().Str("module", "app.calls").Str("conn", string(from)).Str("callee", string(callee)).Msg("callee unreachable")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyOf(from, target)
	s.discardLocked(key)
	attempt := domain.NewCallAttempt(caller, callee, from, target)
	s.attempts[key] = attempt
	if s.opts.RingTimeout > 0 {
		s.timers[key] = time.AfterFunc(s.opts.RingTimeout, func() { s.expire(key, attempt) })
	}

	s.tr.EmitTo(target, domain.EventIncomingCall, IncomingCall{
		From:               caller,
		Offer:              offer,
		CallerConnectionID: from,
	})
	metrics.Calls.WithLabelValues(metrics.OutcomeRinging).Inc()
	log.Info().Str("module", "app.calls").Str("caller", string(caller)).Str("callee", string(callee)).Str("target", string(target)).Msg("ringing")
	return true
}

func (s *CallSignaling) Accept(from, to domain.ConnID, answer json.RawMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := keyOf(from, to)
	if !s.advanceLocked(key, from, domain.CallAccepted, false) {
		return false
	}
	if a, ok := s.attempts[key]; ok && a.State == domain.CallAccepted {
		s.stopTimerLocked(key)
	}
	s.tr.EmitTo(to, domain.EventCallAccepted, CallAccepted{From: from, Answer: answer})
	metrics.Calls.WithLabelValues(metrics.OutcomeAccepted).Inc()
	return true
}

// Candidate is relayed in every state, ringing included.
func (s *CallSignaling) Candidate(from, to domain.ConnID, candidate json.RawMessage) bool {
	return s.tr.EmitTo(to, domain.EventICECandidate, ICECandidate{From: from, Candidate: candidate})
}

func (s *CallSignaling) Reject(from, to domain.ConnID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := keyOf(from, to)
	if !s.advanceLocked(key, from, domain.CallRejected, true) {
		return false
	}
	s.tr.EmitTo(to, domain.EventCallRejected, CallControl{From: from})
	metrics.Calls.WithLabelValues(metrics.OutcomeRejected).Inc()
	return true
}

func (s *CallSignaling) End(from, to domain.ConnID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := keyOf(from, to)
	if !s.advanceLocked(key, from, domain.CallEnded, true) {
		return false
	}
	s.tr.EmitTo(to, domain.EventCallEnded, CallControl{From: from})
	metrics.Calls.WithLabelValues(metrics.OutcomeEnded).Inc()
	return true
}

// DropConn discards every attempt conn takes part in and returns the peers.
func (s *CallSignaling) DropConn(conn domain.ConnID) []domain.ConnID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var peers []domain.ConnID
	for key, a := range s.attempts {
		peer, ok := a.Peer(conn)
		if !ok {
			continue
		}
		peers = append(peers, peer)
		s.discardLocked(key)
	}
	return peers
}

// Attempt returns a copy of the attempt between two connections.
func (s *CallSignaling) Attempt(x, y domain.ConnID) (domain.CallAttempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[keyOf(x, y)]
	if !ok {
		return domain.CallAttempt{}, false
	}
	return *a, true
}

func (s *CallSignaling) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

// advanceLocked applies a transition requested by from to the attempt under
// key. Without a matching attempt the event still goes through unless Strict
// is set. Accept and reject only match when sent by the callee.
// Terminal states discard the attempt when discard is true.
func (s *CallSignaling) advanceLocked(key callKey, from domain.ConnID, to domain.CallState, discard bool) bool {
	a, ok := s.attempts[key]
	if !ok {
		if s.opts.Strict {
			log.Warn().Str("module", "app.calls").Str("a", string(key.a)).Str("b", string(key.b)).Str("to", to.String()).Msg("no attempt, dropped")
			return false
		}
		return true
	}
	if (to == domain.CallAccepted || to == domain.CallRejected) && from != a.CalleeConn {
		if s.opts.Strict {
			log.Warn().Str("module", "app.calls").Str("conn", string(from)).Str("to", to.String()).Msg("answer from caller side, dropped")
			return false
		}
		log.Debug().Str("module", "app.calls").Str("conn", string(from)).Str("to", to.String()).Msg("answer from caller side, state kept")
		return true
	}
	if err := a.Transition(to); err != nil {
		if s.opts.Strict {
			log.Warn().Err(err).Str("module", "app.calls").Str("from", a.State.String()).Str("to", to.String()).Msg("transition refused")
			return false
		}
		log.Debug().Err(err).Str("module", "app.calls").Str("from", a.State.String()).Str("to", to.String()).Msg("transition ignored")
	}
	if discard && a.State.Terminal() {
		s.discardLocked(key)
	}
	return true
}

func (s *CallSignaling) expire(key callKey, attempt *domain.CallAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempts[key] != attempt || attempt.State != domain.CallRinging {
		return
	}
	_ = attempt.Transition(domain.CallFailed)
	s.discardLocked(key)
	s.tr.EmitTo(attempt.CallerConn, domain.EventCallFailed, CallFailed{To: attempt.CalleeID, Reason: ReasonTimeout})
	s.tr.EmitTo(attempt.CalleeConn, domain.EventCallEnded, CallControl{From: attempt.CallerConn})
	metrics.Calls.WithLabelValues(metrics.OutcomeTimeout).Inc()
	log.Info().Str("module", "app.calls").Str("caller", string(attempt.CallerID)).Str("callee", string(attempt.CalleeID)).Msg("ring timeout")
}

func (s *CallSignaling) stopTimerLocked(key callKey) {
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

func (s *CallSignaling) discardLocked(key callKey) {
	s.stopTimerLocked(key)
	delete(s.attempts, key)
}
