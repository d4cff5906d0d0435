package response

import (
	"encoding/json"
	"time"

	"github.com/mcoot/lineupsheet/internal/model"
)

// Lineup is the public projection of a lineup. The roster is returned as-is,
// including who claimed each slot.
type Lineup struct {
	ID           string          `json:"id"`
	TeamAName    string          `json:"team_a_name"`
	TeamBName    string          `json:"team_b_name"`
	TeamAColor   string          `json:"team_a_color"`
	TeamBColor   string          `json:"team_b_color"`
	PlayersCount int             `json:"players_count"`
	Positions    model.Positions `json:"positions"`
	Roster       model.Roster    `json:"roster"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// LineupFromModel converts a model.Lineup to a response Lineup
func LineupFromModel(l *model.Lineup) Lineup {
	positions := l.Positions
	if positions.A == nil {
		positions.A = []json.RawMessage{}
	}
	if positions.B == nil {
		positions.B = []json.RawMessage{}
	}
	return Lineup{
		ID:           string(l.ID),
		TeamAName:    l.TeamAName,
		TeamBName:    l.TeamBName,
		TeamAColor:   l.TeamAColor,
		TeamBColor:   l.TeamBColor,
		PlayersCount: l.PlayersCount,
		Positions:    positions,
		Roster:       l.Roster,
		CreatedAt:    l.CreatedAt,
		ExpiresAt:    l.ExpiresAt,
	}
}

// CreatedLineup is the response for creating a lineup
type CreatedLineup struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RosterUpdate is the response for a successful claim or unclaim
type RosterUpdate struct {
	OK     bool         `json:"ok"`
	Roster model.Roster `json:"roster"`
}

// Health is the response for the health endpoint
type Health struct {
	Status         string `json:"status"`
	Storage        string `json:"storage"`
	MemoryFallback bool   `json:"memory_fallback"`
}
