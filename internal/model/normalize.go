package model

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// NormalizeCreate builds a valid lineup from organizer input.
// Nothing is rejected: missing or unusable values fall back to defaults.
// The returned lineup has no ID; the caller assigns one.
func NormalizeCreate(in CreateInput, now time.Time) *Lineup {
	roster := NewRoster()
	if in.Roster != nil {
		roster = normalizeRoster(*in.Roster)
	}

	positions := Positions{A: []json.RawMessage{}, B: []json.RawMessage{}}
	if in.Positions != nil {
		if in.Positions.A != nil {
			positions.A = in.Positions.A
		}
		if in.Positions.B != nil {
			positions.B = in.Positions.B
		}
	}

	return &Lineup{
		TeamAName:    orDefault(in.TeamAName, DefaultTeamAName),
		TeamBName:    orDefault(in.TeamBName, DefaultTeamBName),
		TeamAColor:   orDefault(in.TeamAColor, DefaultTeamAColor),
		TeamBColor:   orDefault(in.TeamBColor, DefaultTeamBColor),
		PlayersCount: ClampPlayersCount(in.PlayersCount),
		Positions:    positions,
		Roster:       roster,
		CreatedAt:    now,
		ExpiresAt:    now.Add(LinkLifetime),
		Version:      1,
	}
}

// ClampPlayersCount coerces a requested count into [MinPlayersCount, MaxPlayersCount].
// Absent, zero and non-finite values mean DefaultPlayersCount.
func ClampPlayersCount(requested *float64) int {
	if requested == nil {
		return DefaultPlayersCount
	}
	v := *requested
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultPlayersCount
	}
	n := int(math.Trunc(v))
	if n == 0 {
		return DefaultPlayersCount
	}
	return min(max(n, MinPlayersCount), MaxPlayersCount)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// normalizeRoster makes a caller-built roster satisfy the slot invariants:
// RosterSize slots per team numbered from 1, a name iff an owner, one slot per owner.
func normalizeRoster(in Roster) Roster {
	out := NewRoster()
	seen := make(map[ParticipantID]bool)
	for _, team := range Teams {
		src := in.Team(team)
		dst := out.Team(team)
		for i := 0; i < RosterSize && i < len(src); i++ {
			name := strings.TrimSpace(src[i].Name)
			owner := ParticipantID(strings.TrimSpace(string(src[i].ClaimedBy)))
			if name == "" || owner == "" || seen[owner] {
				continue
			}
			seen[owner] = true
			dst[i].Name = name
			dst[i].ClaimedBy = owner
		}
	}
	return out
}
