// Package claim decides slot claims and releases against a lineup snapshot.
// It performs no I/O; callers load the lineup, ask for a Decision and persist
// the returned roster only when the decision is accepted.
package claim

import (
	"strings"
	"time"

	"github.com/mcoot/lineupsheet/internal/model"
)

// Decision is the outcome of a claim or unclaim request
type Decision struct {
	Accepted bool
	Reason   model.Reason // set when rejected
	Roster   model.Roster // full mutated roster when accepted
}

// Err returns nil for an accepted decision, otherwise the reason's sentinel error
func (d Decision) Err() error {
	if d.Accepted {
		return nil
	}
	return d.Reason.Err()
}

func accept(roster model.Roster) Decision {
	return Decision{Accepted: true, Roster: roster}
}

func reject(reason model.Reason) Decision {
	return Decision{Reason: reason}
}

// DecideClaim checks a claim in a fixed order, first failure wins:
// request shape, expiry, index range, one slot per participant, slot occupancy.
func DecideClaim(lineup *model.Lineup, now time.Time, req model.ClaimRequest) Decision {
	if req.Validate() != nil {
		return reject(model.ReasonBadRequest)
	}
	req = req.Normalized()

	if lineup.IsExpired(now) {
		return reject(model.ReasonLinkExpired)
	}

	slots := lineup.Roster.Team(req.Team)
	index := *req.Index
	if index < 0 || index >= lineup.PlayersCount || index >= len(slots) {
		return reject(model.ReasonOutOfRange)
	}

	// Scans all stored slots, including those beyond PlayersCount.
	if _, _, owns := lineup.Roster.OwnerOf(req.ParticipantID); owns {
		return reject(model.ReasonAlreadyUsed)
	}

	if strings.TrimSpace(slots[index].Name) != "" {
		return reject(model.ReasonSlotTaken)
	}

	roster := lineup.Roster.Clone()
	target := &roster.Team(req.Team)[index]
	target.Name = req.Name
	target.ClaimedBy = req.ParticipantID
	return accept(roster)
}

// DecideUnclaim releases a slot only for the participant that holds it.
// Open slots, slots held by someone else and nonexistent slots all yield
// not_your_slot so ownership is never revealed.
func DecideUnclaim(lineup *model.Lineup, now time.Time, req model.UnclaimRequest) Decision {
	if req.Validate() != nil {
		return reject(model.ReasonBadRequest)
	}
	req = req.Normalized()

	if lineup.IsExpired(now) {
		return reject(model.ReasonLinkExpired)
	}

	slots := lineup.Roster.Team(req.Team)
	index := *req.Index
	if index < 0 || index >= len(slots) || slots[index].ClaimedBy != req.ParticipantID {
		return reject(model.ReasonNotYourSlot)
	}

	roster := lineup.Roster.Clone()
	target := &roster.Team(req.Team)[index]
	target.Name = ""
	target.ClaimedBy = ""
	return accept(roster)
}
