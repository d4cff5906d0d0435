package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	// participant marks the caller's own slot in text output
	participant string
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case CreatedLineup:
		o.printCreated(v)
	case Lineup:
		o.printLineup(v)
	case RosterUpdate:
		o.printRosterUpdate(v)
	case Participant:
		_, _ = fmt.Fprintln(o.w, v.ID)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// CreatedLineup response type (matches API)
type CreatedLineup struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Slot response type
type Slot struct {
	Number    int    `json:"number"`
	Name      string `json:"name"`
	ClaimedBy string `json:"claimed_by,omitempty"`
}

// Roster response type
type Roster struct {
	A []Slot `json:"A"`
	B []Slot `json:"B"`
}

// Lineup response type
type Lineup struct {
	ID           string          `json:"id"`
	TeamAName    string          `json:"team_a_name"`
	TeamBName    string          `json:"team_b_name"`
	TeamAColor   string          `json:"team_a_color"`
	TeamBColor   string          `json:"team_b_color"`
	PlayersCount int             `json:"players_count"`
	Positions    json.RawMessage `json:"positions"`
	Roster       Roster          `json:"roster"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// RosterUpdate response type for claim and unclaim
type RosterUpdate struct {
	OK     bool   `json:"ok"`
	Roster Roster `json:"roster"`
}

// Participant is the caller's identity
type Participant struct {
	ID string `json:"participant_id"`
}

// HealthResult response type
type HealthResult struct {
	Status         string `json:"status"`
	Storage        string `json:"storage"`
	MemoryFallback bool   `json:"memory_fallback"`
}

func (o *Output) printCreated(c CreatedLineup) {
	_, _ = fmt.Fprintf(o.w, "Lineup: %s\n", c.ID)
	_, _ = fmt.Fprintf(o.w, "Expires: %s\n", c.ExpiresAt.Local().Format(time.RFC1123))
}

func (o *Output) printLineup(l Lineup) {
	_, _ = fmt.Fprintf(o.w, "Lineup: %s\n", l.ID)
	_, _ = fmt.Fprintf(o.w, "Players per team: %d\n", l.PlayersCount)
	_, _ = fmt.Fprintf(o.w, "Expires: %s\n", l.ExpiresAt.Local().Format(time.RFC1123))
	o.printTeam(fmt.Sprintf("%s (A, %s)", l.TeamAName, l.TeamAColor), l.Roster.A, l.PlayersCount)
	o.printTeam(fmt.Sprintf("%s (B, %s)", l.TeamBName, l.TeamBColor), l.Roster.B, l.PlayersCount)
}

func (o *Output) printRosterUpdate(u RosterUpdate) {
	_, _ = fmt.Fprintln(o.w, "OK")
	o.printTeam("Team A", u.Roster.A, len(u.Roster.A))
	o.printTeam("Team B", u.Roster.B, len(u.Roster.B))
}

func (o *Output) printTeam(title string, slots []Slot, count int) {
	_, _ = fmt.Fprintf(o.w, "\n%s:\n", title)
	for i, s := range slots {
		if i >= count {
			break
		}
		name := s.Name
		if name == "" {
			name = "(open)"
		}
		marker := ""
		if o.participant != "" && s.ClaimedBy == o.participant {
			marker = " *"
		}
		_, _ = fmt.Fprintf(o.w, "  [%d] #%d %s%s\n", i, s.Number, name, marker)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.w, "Storage: %s\n", h.Storage)
	if h.MemoryFallback {
		_, _ = fmt.Fprintln(o.w, "Warning: running on in-memory fallback storage")
	}
}
