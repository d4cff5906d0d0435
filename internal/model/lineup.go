package model

import (
	"encoding/json"
	"slices"
	"time"
)

// LineupID is the opaque share-link token identifying a lineup
type LineupID string

// ParticipantID is the client-supplied identifier of whoever claims a slot
type ParticipantID string

// TeamID selects one of the two rosters
type TeamID string

const (
	TeamA TeamID = "A"
	TeamB TeamID = "B"
)

// Teams lists both rosters in scan order
var Teams = []TeamID{TeamA, TeamB}

const (
	// RosterSize is the fixed number of stored slots per team
	RosterSize = 11

	MinPlayersCount     = 7
	MaxPlayersCount     = 11
	DefaultPlayersCount = 11

	// LinkLifetime is how long a lineup accepts reads and claims after creation
	LinkLifetime = 48 * time.Hour

	DefaultTeamAName  = "فريق A"
	DefaultTeamBName  = "فريق B"
	DefaultTeamAColor = "#2563eb"
	DefaultTeamBColor = "#dc2626"
)

// Slot is a single roster position
type Slot struct {
	Number    int           `json:"number"`
	Name      string        `json:"name"`
	ClaimedBy ParticipantID `json:"claimed_by,omitempty"`
}

// IsOpen reports whether nobody holds the slot
func (s Slot) IsOpen() bool {
	return s.ClaimedBy == ""
}

// Roster holds both teams' slots
type Roster struct {
	A []Slot `json:"A"`
	B []Slot `json:"B"`
}

// NewRoster returns two empty rosters of RosterSize slots each
func NewRoster() Roster {
	return Roster{A: newSlots(), B: newSlots()}
}

func newSlots() []Slot {
	slots := make([]Slot, RosterSize)
	for i := range slots {
		slots[i] = Slot{Number: i + 1}
	}
	return slots
}

// Team returns the slots for the given team, or nil for an unknown team
func (r Roster) Team(team TeamID) []Slot {
	switch team {
	case TeamA:
		return r.A
	case TeamB:
		return r.B
	default:
		return nil
	}
}

// Clone returns a deep copy so callers can mutate without aliasing a snapshot
func (r Roster) Clone() Roster {
	return Roster{
		A: slices.Clone(r.A),
		B: slices.Clone(r.B),
	}
}

// OwnerOf returns the team and index of the slot held by the participant
func (r Roster) OwnerOf(participant ParticipantID) (TeamID, int, bool) {
	if participant == "" {
		return "", 0, false
	}
	for _, team := range Teams {
		for i, slot := range r.Team(team) {
			if slot.ClaimedBy == participant {
				return team, i, true
			}
		}
	}
	return "", 0, false
}

// Positions is per-team layout metadata passed through untouched
type Positions struct {
	A []json.RawMessage `json:"A"`
	B []json.RawMessage `json:"B"`
}

// Lineup is a shareable two-team sheet
type Lineup struct {
	ID           LineupID  `json:"id"`
	TeamAName    string    `json:"team_a_name"`
	TeamBName    string    `json:"team_b_name"`
	TeamAColor   string    `json:"team_a_color"`
	TeamBColor   string    `json:"team_b_color"`
	PlayersCount int       `json:"players_count"`
	Positions    Positions `json:"positions"`
	Roster       Roster    `json:"roster"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`

	// Version is bumped on every roster replacement and guards concurrent writes
	Version int64 `json:"version"`
}

// IsExpired reports whether the link is past its cutoff at the given time
func (l *Lineup) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// Clone returns a deep copy of the lineup
func (l *Lineup) Clone() *Lineup {
	c := *l
	c.Roster = l.Roster.Clone()
	c.Positions = Positions{
		A: slices.Clone(l.Positions.A),
		B: slices.Clone(l.Positions.B),
	}
	return &c
}
