package mongo

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mcoot/lineupsheet/internal/model"
)

type slotDocument struct {
	Number    int    `bson:"number"`
	Name      string `bson:"name"`
	ClaimedBy string `bson:"claimed_by"`
}

type rosterDocument struct {
	A []slotDocument `bson:"A"`
	B []slotDocument `bson:"B"`
}

// positionsDocument stores each client position as a native BSON value
type positionsDocument struct {
	A []any `bson:"A"`
	B []any `bson:"B"`
}

// lineupDocument is the persisted shape
type lineupDocument struct {
	ID           string            `bson:"_id"`
	TeamAName    string            `bson:"team_a_name"`
	TeamBName    string            `bson:"team_b_name"`
	TeamAColor   string            `bson:"team_a_color"`
	TeamBColor   string            `bson:"team_b_color"`
	PlayersCount int               `bson:"players_count"`
	Positions    positionsDocument `bson:"positions"`
	Roster       rosterDocument    `bson:"roster"`
	CreatedAt    time.Time         `bson:"created_at"`
	ExpiresAt    time.Time         `bson:"expires_at"`
	Version      int64             `bson:"version"`
}

func toDocument(l *model.Lineup) (*lineupDocument, error) {
	positions, err := toPositionsDocument(l.Positions)
	if err != nil {
		return nil, fmt.Errorf("encode positions: %w", err)
	}
	return &lineupDocument{
		ID:           string(l.ID),
		TeamAName:    l.TeamAName,
		TeamBName:    l.TeamBName,
		TeamAColor:   l.TeamAColor,
		TeamBColor:   l.TeamBColor,
		PlayersCount: l.PlayersCount,
		Positions:    positions,
		Roster:       toRosterDocument(l.Roster),
		CreatedAt:    l.CreatedAt,
		ExpiresAt:    l.ExpiresAt,
		Version:      l.Version,
	}, nil
}

func (d *lineupDocument) toModel() (*model.Lineup, error) {
	positions, err := d.Positions.toModel()
	if err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	return &model.Lineup{
		ID:           model.LineupID(d.ID),
		TeamAName:    d.TeamAName,
		TeamBName:    d.TeamBName,
		TeamAColor:   d.TeamAColor,
		TeamBColor:   d.TeamBColor,
		PlayersCount: d.PlayersCount,
		Positions:    positions,
		Roster:       d.Roster.toModel(),
		CreatedAt:    d.CreatedAt.UTC(),
		ExpiresAt:    d.ExpiresAt.UTC(),
		Version:      d.Version,
	}, nil
}

func toPositionsDocument(p model.Positions) (positionsDocument, error) {
	a, err := toBSONValues(p.A)
	if err != nil {
		return positionsDocument{}, err
	}
	b, err := toBSONValues(p.B)
	if err != nil {
		return positionsDocument{}, err
	}
	return positionsDocument{A: a, B: b}, nil
}

func (p positionsDocument) toModel() (model.Positions, error) {
	a, err := toJSONValues(p.A)
	if err != nil {
		return model.Positions{}, err
	}
	b, err := toJSONValues(p.B)
	if err != nil {
		return model.Positions{}, err
	}
	return model.Positions{A: a, B: b}, nil
}

// toBSONValues decodes each item into maps, slices and scalars the driver
// encodes as embedded documents, arrays and BSON scalars
func toBSONValues(items []json.RawMessage) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		var v any
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func toJSONValues(items []any) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(plainValue(item))
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// plainValue rewrites decoded BSON containers so they marshal as JSON
// objects and arrays instead of key/value pair lists
func plainValue(v any) any {
	switch t := v.(type) {
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plainValue(e.Value)
		}
		return m
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = plainValue(e)
		}
		return m
	case bson.A:
		return plainSlice(t)
	case []any:
		return plainSlice(t)
	default:
		return v
	}
}

func plainSlice(items []any) []any {
	out := make([]any, len(items))
	for i, e := range items {
		out[i] = plainValue(e)
	}
	return out
}

func toRosterDocument(r model.Roster) rosterDocument {
	return rosterDocument{A: toSlotDocuments(r.A), B: toSlotDocuments(r.B)}
}

func toSlotDocuments(slots []model.Slot) []slotDocument {
	out := make([]slotDocument, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotDocument{Number: s.Number, Name: s.Name, ClaimedBy: string(s.ClaimedBy)})
	}
	return out
}

func (r rosterDocument) toModel() model.Roster {
	return model.Roster{A: toSlots(r.A), B: toSlots(r.B)}
}

func toSlots(docs []slotDocument) []model.Slot {
	out := make([]model.Slot, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.Slot{Number: d.Number, Name: d.Name, ClaimedBy: model.ParticipantID(d.ClaimedBy)})
	}
	return out
}
