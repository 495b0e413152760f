// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxIDLen = 128

var (
	ErrIDEmpty   = errors.New("id empty")
	ErrIDTooLong = errors.New("id too long")
)

// UserID is the stable identity of a patient, doctor or admin.
type UserID string

// ConnID identifies one live transport session (one tab or device).
type ConnID string

// NewConnID is a tiny helper to avoid ad-hoc uuid calls in adapters.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

func (u UserID) Validate() error {
	if len(u) == 0 {
		return ErrIDEmpty
	}
	if len(u) > MaxIDLen {
		return ErrIDTooLong
	}
	return nil
}
