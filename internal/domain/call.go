package domain

import (
	"errors"
	"time"
)

var ErrInvalidTransition = errors.New("invalid call state transition")

type CallState int

const (
	CallRinging CallState = iota
	CallAccepted
	CallEnded
	CallRejected
	CallFailed
)

func (s CallState) String() string {
	switch s {
	case CallRinging:
		return "ringing"
	case CallAccepted:
		return "accepted"
	case CallEnded:
		return "ended"
	case CallRejected:
		return "rejected"
	case CallFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s CallState) Terminal() bool {
	return s == CallEnded || s == CallRejected || s == CallFailed
}

// CallAttempt is one caller/callee signaling exchange.
type CallAttempt struct {
	CallerID   UserID
	CalleeID   UserID
	CallerConn ConnID
	CalleeConn ConnID
	State      CallState
	StartedAt  time.Time
}

func NewCallAttempt(caller, callee UserID, callerConn, calleeConn ConnID) *CallAttempt {
	return &CallAttempt{
		CallerID:   caller,
		CalleeID:   callee,
		CallerConn: callerConn,
		CalleeConn: calleeConn,
		State:      CallRinging,
		StartedAt:  time.Now(),
	}
}

// Transition moves the attempt along Ringing -> {Accepted, Rejected, Ended, Failed}
// and Accepted -> Ended.
func (a *CallAttempt) Transition(to CallState) error {
	switch a.State {
	case CallRinging:
		if to == CallRinging {
			return ErrInvalidTransition
		}
	case CallAccepted:
		if to != CallEnded {
			return ErrInvalidTransition
		}
	default:
		return ErrInvalidTransition
	}
	a.State = to
	return nil
}

// Peer returns the other side of the attempt as seen from conn.
func (a *CallAttempt) Peer(conn ConnID) (ConnID, bool) {
	switch conn {
	case a.CallerConn:
		return a.CalleeConn, true
	case a.CalleeConn:
		return a.CallerConn, true
	}
	return "", false
}
