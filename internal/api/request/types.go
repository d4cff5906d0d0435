package request

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mcoot/lineupsheet/internal/model"
)

// CreateLineupRequest is the request body for creating a lineup.
// Every field is optional and nothing here is ever rejected: values of the
// wrong type are treated as absent and replaced with defaults.
type CreateLineupRequest struct {
	TeamAName    json.RawMessage `json:"team_a_name,omitempty"`
	TeamBName    json.RawMessage `json:"team_b_name,omitempty"`
	TeamAColor   json.RawMessage `json:"team_a_color,omitempty"`
	TeamBColor   json.RawMessage `json:"team_b_color,omitempty"`
	PlayersCount json.RawMessage `json:"players_count,omitempty"`
	Roster       json.RawMessage `json:"roster,omitempty"`
	Positions    json.RawMessage `json:"positions,omitempty"`
}

// ToInput converts the request into normalization input
func (r CreateLineupRequest) ToInput() model.CreateInput {
	in := model.CreateInput{
		TeamAName:    parseString(r.TeamAName),
		TeamBName:    parseString(r.TeamBName),
		TeamAColor:   parseString(r.TeamAColor),
		TeamBColor:   parseString(r.TeamBColor),
		PlayersCount: parseCount(r.PlayersCount),
	}

	var roster model.Roster
	if len(r.Roster) > 0 && json.Unmarshal(r.Roster, &roster) == nil && (roster.A != nil || roster.B != nil) {
		in.Roster = &roster
	}

	var positions model.Positions
	if len(r.Positions) > 0 && json.Unmarshal(r.Positions, &positions) == nil {
		in.Positions = &positions
	}
	return in
}

// parseString returns the value of a JSON string and "" for any other type
func parseString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// parseCount accepts a JSON number or a numeric string
func parseCount(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &v
		}
	}
	return nil
}

// ClaimRequest is the request body for claiming a slot.
// Index must be a JSON integer; anything else fails decoding.
type ClaimRequest struct {
	ParticipantID string `json:"participant_id"`
	Team          string `json:"team"`
	Index         *int   `json:"index"`
	Name          string `json:"name"`
}

// ToModel converts the request body into a model request
func (r ClaimRequest) ToModel() model.ClaimRequest {
	return model.ClaimRequest{
		ParticipantID: model.ParticipantID(r.ParticipantID),
		Team:          model.TeamID(r.Team),
		Index:         r.Index,
		Name:          r.Name,
	}
}

// UnclaimRequest is the request body for releasing a slot
type UnclaimRequest struct {
	ParticipantID string `json:"participant_id"`
	Team          string `json:"team"`
	Index         *int   `json:"index"`
}

// ToModel converts the request body into a model request
func (r UnclaimRequest) ToModel() model.UnclaimRequest {
	return model.UnclaimRequest{
		ParticipantID: model.ParticipantID(r.ParticipantID),
		Team:          model.TeamID(r.Team),
		Index:         r.Index,
	}
}
