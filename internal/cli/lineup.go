package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	var (
		teamA, teamB           string
		teamAColor, teamBColor string
		players                int
		positions              string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new lineup and print its share id",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			setIfNotEmpty(req, "team_a_name", teamA)
			setIfNotEmpty(req, "team_b_name", teamB)
			setIfNotEmpty(req, "team_a_color", teamAColor)
			setIfNotEmpty(req, "team_b_color", teamBColor)
			if players > 0 {
				req["players_count"] = players
			}
			if positions != "" {
				if !json.Valid([]byte(positions)) {
					return fmt.Errorf("--positions must be valid JSON")
				}
				req["positions"] = json.RawMessage(positions)
			}

			var result CreatedLineup

			if err := client.Post(cmd.Context(), "/api/v1/lineups", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&teamA, "team-a", "", "Team A name (default: server default)")
	cmd.Flags().StringVar(&teamB, "team-b", "", "Team B name (default: server default)")
	cmd.Flags().StringVar(&teamAColor, "team-a-color", "", "Team A color")
	cmd.Flags().StringVar(&teamBColor, "team-b-color", "", "Team B color")
	cmd.Flags().IntVar(&players, "players", 0, "Players per team, 7 to 11 (default: server default)")
	cmd.Flags().StringVar(&positions, "positions", "", `Formation JSON, e.g. {"A":[...],"B":[...]}`)

	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a lineup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Lineup

			if err := client.Get(cmd.Context(), lineupPath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.participant = cfg.Participant
			out.Print(result)
			return nil
		},
	}
}

func newClaimCmd() *cobra.Command {
	var (
		team  string
		index int
		name  string
	)

	cmd := &cobra.Command{
		Use:   "claim <id>",
		Short: "Claim an open slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			participant, err := cfg.EnsureParticipant()
			if err != nil {
				return fmt.Errorf("resolve participant: %w", err)
			}

			req := map[string]any{
				"participant_id": participant,
				"team":           strings.ToUpper(team),
				"index":          index,
				"name":           name,
			}
			var result RosterUpdate

			if err := client.Post(cmd.Context(), lineupPath(args[0], "claim"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.participant = participant
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Team: A or B (required)")
	cmd.Flags().IntVar(&index, "index", 0, "Zero-based slot index (required)")
	cmd.Flags().StringVar(&name, "name", "", "Name to show on the slot (required)")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("index")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUnclaimCmd() *cobra.Command {
	var (
		team  string
		index int
	)

	cmd := &cobra.Command{
		Use:   "unclaim <id>",
		Short: "Release a slot you hold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			participant, err := cfg.EnsureParticipant()
			if err != nil {
				return fmt.Errorf("resolve participant: %w", err)
			}

			req := map[string]any{
				"participant_id": participant,
				"team":           strings.ToUpper(team),
				"index":          index,
			}
			var result RosterUpdate

			if err := client.Post(cmd.Context(), lineupPath(args[0], "unclaim"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.participant = participant
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Team: A or B (required)")
	cmd.Flags().IntVar(&index, "index", 0, "Zero-based slot index (required)")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("index")

	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the participant id used for claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			participant, err := cfg.EnsureParticipant()
			if err != nil {
				return fmt.Errorf("resolve participant: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(Participant{ID: participant})
			return nil
		},
	}
}

func setIfNotEmpty(m map[string]any, key, val string) {
	if val != "" {
		m[key] = val
	}
}
