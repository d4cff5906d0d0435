package model

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ClaimRequest asks to take an open slot
type ClaimRequest struct {
	ParticipantID ParticipantID `validate:"required"`
	Team          TeamID        `validate:"required,oneof=A B"`
	Index         *int          `validate:"required"`
	Name          string        `validate:"required"`
}

// Normalized returns the request with surrounding whitespace removed
func (r ClaimRequest) Normalized() ClaimRequest {
	r.ParticipantID = ParticipantID(strings.TrimSpace(string(r.ParticipantID)))
	r.Name = strings.TrimSpace(r.Name)
	return r
}

// Validate checks the request shape, returning ErrBadRequest on failure
func (r ClaimRequest) Validate() error {
	if err := validate.Struct(r.Normalized()); err != nil {
		return ErrBadRequest
	}
	return nil
}

// UnclaimRequest asks to release a slot the participant holds
type UnclaimRequest struct {
	ParticipantID ParticipantID `validate:"required"`
	Team          TeamID        `validate:"required,oneof=A B"`
	Index         *int          `validate:"required"`
}

// Normalized returns the request with surrounding whitespace removed
func (r UnclaimRequest) Normalized() UnclaimRequest {
	r.ParticipantID = ParticipantID(strings.TrimSpace(string(r.ParticipantID)))
	return r
}

// Validate checks the request shape, returning ErrBadRequest on failure
func (r UnclaimRequest) Validate() error {
	if err := validate.Struct(r.Normalized()); err != nil {
		return ErrBadRequest
	}
	return nil
}

// CreateInput is the untrusted organizer input for a new lineup.
// Every field is optional; NormalizeCreate fills defaults.
type CreateInput struct {
	TeamAName    string
	TeamBName    string
	TeamAColor   string
	TeamBColor   string
	PlayersCount *float64
	Roster       *Roster
	Positions    *Positions
}
