package model

import "errors"

// Reason is the stable machine-readable code for a rejected operation
type Reason string

const (
	ReasonBadRequest  Reason = "bad_request"
	ReasonNotFound    Reason = "not_found"
	ReasonLinkExpired Reason = "link_expired"
	ReasonOutOfRange  Reason = "out_of_range"
	ReasonAlreadyUsed Reason = "already_used"
	ReasonSlotTaken   Reason = "slot_taken"
	ReasonNotYourSlot Reason = "not_your_slot"
)

// Common errors used across the application
var (
	// Input errors
	ErrBadRequest = errors.New("malformed request")
	ErrOutOfRange = errors.New("slot index out of range")

	// Lifecycle errors
	ErrLineupNotFound = errors.New("lineup not found")
	ErrLinkExpired    = errors.New("lineup link has expired")

	// Conflict errors
	ErrAlreadyUsed = errors.New("participant already holds a slot")
	ErrSlotTaken   = errors.New("slot is already taken")
	ErrNotYourSlot = errors.New("slot is not held by this participant")

	// Storage errors
	ErrLineupExists    = errors.New("lineup id already exists")
	ErrVersionConflict = errors.New("lineup was modified concurrently")
	ErrContention      = errors.New("too many concurrent modifications")
)

var reasonErrors = map[Reason]error{
	ReasonBadRequest:  ErrBadRequest,
	ReasonNotFound:    ErrLineupNotFound,
	ReasonLinkExpired: ErrLinkExpired,
	ReasonOutOfRange:  ErrOutOfRange,
	ReasonAlreadyUsed: ErrAlreadyUsed,
	ReasonSlotTaken:   ErrSlotTaken,
	ReasonNotYourSlot: ErrNotYourSlot,
}

// Err returns the sentinel error for the reason
func (r Reason) Err() error {
	if err, ok := reasonErrors[r]; ok {
		return err
	}
	return errors.New(string(r))
}

// ReasonOf returns the reason code carried by err, if any
func ReasonOf(err error) (Reason, bool) {
	for reason, sentinel := range reasonErrors {
		if errors.Is(err, sentinel) {
			return reason, true
		}
	}
	return "", false
}
