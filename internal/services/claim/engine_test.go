package claim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lineupsheet/internal/model"
)

type EngineSuite struct {
	suite.Suite
	now    time.Time
	lineup *model.Lineup
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.lineup = s.newLineup(11)
}

func (s *EngineSuite) newLineup(playersCount float64) *model.Lineup {
	l := model.NormalizeCreate(model.CreateInput{PlayersCount: &playersCount}, s.now)
	l.ID = "LINEUP"
	return l
}

func idx(i int) *int {
	return &i
}

func claimReq(participant string, team model.TeamID, index int, name string) model.ClaimRequest {
	return model.ClaimRequest{
		ParticipantID: model.ParticipantID(participant),
		Team:          team,
		Index:         idx(index),
		Name:          name,
	}
}

func unclaimReq(participant string, team model.TeamID, index int) model.UnclaimRequest {
	return model.UnclaimRequest{
		ParticipantID: model.ParticipantID(participant),
		Team:          team,
		Index:         idx(index),
	}
}

// apply claims and commits the roster, failing the test on rejection
func (s *EngineSuite) apply(req model.ClaimRequest) {
	d := DecideClaim(s.lineup, s.now, req)
	s.Require().True(d.Accepted, "claim rejected: %s", d.Reason)
	s.lineup.Roster = d.Roster
}

func (s *EngineSuite) assertRejected(d Decision, reason model.Reason) {
	s.False(d.Accepted)
	s.Equal(reason, d.Reason)
	s.ErrorIs(d.Err(), reason.Err())
}

// Claim tests

func (s *EngineSuite) TestClaimOpenSlot() {
	d := DecideClaim(s.lineup, s.now, claimReq("p1", model.TeamA, 0, "  Ali  "))

	s.Require().True(d.Accepted)
	s.NoError(d.Err())
	s.Equal(model.Slot{Number: 1, Name: "Ali", ClaimedBy: "p1"}, d.Roster.A[0])
	s.Len(d.Roster.A, model.RosterSize)
	s.Len(d.Roster.B, model.RosterSize)
}

func (s *EngineSuite) TestClaimDoesNotMutateSnapshot() {
	d := DecideClaim(s.lineup, s.now, claimReq("p1", model.TeamB, 3, "Ali"))
	s.Require().True(d.Accepted)

	s.True(s.lineup.Roster.B[3].IsOpen())
	s.Empty(s.lineup.Roster.B[3].Name)
}

func (s *EngineSuite) TestClaimBadRequest() {
	cases := map[string]model.ClaimRequest{
		"missing participant": claimReq("", model.TeamA, 0, "Ali"),
		"unknown team":        claimReq("p1", "C", 0, "Ali"),
		"missing index":       {ParticipantID: "p1", Team: model.TeamA, Name: "Ali"},
		"blank name":          claimReq("p1", model.TeamA, 0, "   "),
	}
	for name, req := range cases {
		s.Run(name, func() {
			s.assertRejected(DecideClaim(s.lineup, s.now, req), model.ReasonBadRequest)
		})
	}
}

func (s *EngineSuite) TestClaimBadRequestWinsOverExpiry() {
	late := s.lineup.ExpiresAt.Add(time.Hour)
	d := DecideClaim(s.lineup, late, claimReq("p1", model.TeamA, 0, ""))
	s.assertRejected(d, model.ReasonBadRequest)
}

func (s *EngineSuite) TestClaimExpiredWinsOverRange() {
	late := s.lineup.ExpiresAt.Add(time.Second)
	d := DecideClaim(s.lineup, late, claimReq("p1", model.TeamA, 50, "Ali"))
	s.assertRejected(d, model.ReasonLinkExpired)
}

func (s *EngineSuite) TestClaimAtExactCutoffIsAllowed() {
	d := DecideClaim(s.lineup, s.lineup.ExpiresAt, claimReq("p1", model.TeamA, 0, "Ali"))
	s.True(d.Accepted)
}

func (s *EngineSuite) TestClaimAfterFortyEightHoursAndOneSecond() {
	late := s.now.Add(48*time.Hour + time.Second)
	d := DecideClaim(s.lineup, late, claimReq("p1", model.TeamA, 0, "Ali"))
	s.assertRejected(d, model.ReasonLinkExpired)
}

func (s *EngineSuite) TestClaimRespectsPlayersCount() {
	s.lineup = s.newLineup(9)

	s.True(DecideClaim(s.lineup, s.now, claimReq("p1", model.TeamA, 8, "Ali")).Accepted)
	s.assertRejected(DecideClaim(s.lineup, s.now, claimReq("p1", model.TeamA, 9, "Ali")), model.ReasonOutOfRange)
	s.assertRejected(DecideClaim(s.lineup, s.now, claimReq("p1", model.TeamB, 10, "Ali")), model.ReasonOutOfRange)
}

func (s *EngineSuite) TestClaimNegativeIndexOutOfRange() {
	s.assertRejected(DecideClaim(s.lineup, s.now, claimReq("p1", model.TeamA, -1, "Ali")), model.ReasonOutOfRange)
}

func (s *EngineSuite) TestClaimOutOfRangeWinsOverAlreadyUsed() {
	s.lineup = s.newLineup(7)
	s.apply(claimReq("p1", model.TeamA, 0, "Ali"))

	d := DecideClaim(s.lineup, s.now, claimReq("p1", model.TeamA, 7, "Ali"))
	s.assertRejected(d, model.ReasonOutOfRange)
}

func (s *EngineSuite) TestClaimSecondSlotAcrossTeamsRejected() {
	s.apply(claimReq("p1", model.TeamA, 2, "Ali"))

	d := DecideClaim(s.lineup, s.now, claimReq("p1", model.TeamB, 5, "Ali2"))
	s.assertRejected(d, model.ReasonAlreadyUsed)
	s.True(s.lineup.Roster.B[5].IsOpen())
}

func (s *EngineSuite) TestAlreadyUsedWinsOverSlotTaken() {
	s.apply(claimReq("p1", model.TeamA, 0, "Ali"))
	s.apply(claimReq("p2", model.TeamA, 1, "Sara"))

	d := DecideClaim(s.lineup, s.now, claimReq("p1", model.TeamA, 1, "Ali"))
	s.assertRejected(d, model.ReasonAlreadyUsed)
}

func (s *EngineSuite) TestAlreadyUsedScansSlotsBeyondPlayersCount() {
	s.lineup = s.newLineup(7)
	s.lineup.Roster.B[10] = model.Slot{Number: 11, Name: "Ali", ClaimedBy: "p1"}

	d := DecideClaim(s.lineup, s.now, claimReq("p1", model.TeamA, 0, "Ali"))
	s.assertRejected(d, model.ReasonAlreadyUsed)
}

func (s *EngineSuite) TestClaimTakenSlot() {
	s.apply(claimReq("p1", model.TeamA, 0, "Ali"))

	d := DecideClaim(s.lineup, s.now, claimReq("p2", model.TeamA, 0, "Sara"))
	s.assertRejected(d, model.ReasonSlotTaken)
	s.Equal(model.ParticipantID("p1"), s.lineup.Roster.A[0].ClaimedBy)
}

func (s *EngineSuite) TestClaimSameIndexOnOtherTeamIsIndependent() {
	s.apply(claimReq("p1", model.TeamA, 0, "Ali"))

	d := DecideClaim(s.lineup, s.now, claimReq("p2", model.TeamB, 0, "Sara"))
	s.True(d.Accepted)
}

// Unclaim tests

func (s *EngineSuite) TestUnclaimOwnSlotRestoresOpenState() {
	original := s.lineup.Roster.A[4]
	s.apply(claimReq("p1", model.TeamA, 4, "Ali"))

	d := DecideUnclaim(s.lineup, s.now, unclaimReq("p1", model.TeamA, 4))
	s.Require().True(d.Accepted)
	s.Equal(original, d.Roster.A[4])
	s.Equal("", d.Roster.A[4].Name)
	s.True(d.Roster.A[4].IsOpen())
}

func (s *EngineSuite) TestUnclaimAllowsClaimingAgain() {
	s.apply(claimReq("p1", model.TeamA, 4, "Ali"))
	d := DecideUnclaim(s.lineup, s.now, unclaimReq("p1", model.TeamA, 4))
	s.Require().True(d.Accepted)
	s.lineup.Roster = d.Roster

	s.True(DecideClaim(s.lineup, s.now, claimReq("p1", model.TeamB, 0, "Ali")).Accepted)
}

func (s *EngineSuite) TestUnclaimSomeoneElsesSlot() {
	s.apply(claimReq("p1", model.TeamA, 0, "Ali"))

	d := DecideUnclaim(s.lineup, s.now, unclaimReq("p2", model.TeamA, 0))
	s.assertRejected(d, model.ReasonNotYourSlot)
	s.Equal(model.ParticipantID("p1"), s.lineup.Roster.A[0].ClaimedBy)
}

func (s *EngineSuite) TestUnclaimOpenSlot() {
	d := DecideUnclaim(s.lineup, s.now, unclaimReq("p1", model.TeamA, 0))
	s.assertRejected(d, model.ReasonNotYourSlot)
}

func (s *EngineSuite) TestUnclaimNonexistentSlot() {
	s.assertRejected(DecideUnclaim(s.lineup, s.now, unclaimReq("p1", model.TeamA, 11)), model.ReasonNotYourSlot)
	s.assertRejected(DecideUnclaim(s.lineup, s.now, unclaimReq("p1", model.TeamA, -1)), model.ReasonNotYourSlot)
}

func (s *EngineSuite) TestUnclaimBoundsAgainstRosterNotPlayersCount() {
	s.lineup = s.newLineup(7)
	s.lineup.Roster.A[9] = model.Slot{Number: 10, Name: "Ali", ClaimedBy: "p1"}

	d := DecideUnclaim(s.lineup, s.now, unclaimReq("p1", model.TeamA, 9))
	s.True(d.Accepted)
}

func (s *EngineSuite) TestUnclaimBadRequest() {
	s.assertRejected(DecideUnclaim(s.lineup, s.now, unclaimReq("", model.TeamA, 0)), model.ReasonBadRequest)
	s.assertRejected(DecideUnclaim(s.lineup, s.now, unclaimReq("p1", "Z", 0)), model.ReasonBadRequest)
	s.assertRejected(DecideUnclaim(s.lineup, s.now, model.UnclaimRequest{ParticipantID: "p1", Team: model.TeamA}), model.ReasonBadRequest)
}

func (s *EngineSuite) TestUnclaimExpired() {
	s.apply(claimReq("p1", model.TeamA, 0, "Ali"))

	late := s.lineup.ExpiresAt.Add(time.Second)
	d := DecideUnclaim(s.lineup, late, unclaimReq("p1", model.TeamA, 0))
	s.assertRejected(d, model.ReasonLinkExpired)
}

// Property-style checks

func (s *EngineSuite) TestOneSlotPerParticipantAcrossManyAttempts() {
	participants := []string{"p1", "p2", "p3"}
	for _, team := range model.Teams {
		for i := 0; i < s.lineup.PlayersCount; i++ {
			for _, p := range participants {
				d := DecideClaim(s.lineup, s.now, claimReq(p, team, i, "name-"+p))
				if d.Accepted {
					s.lineup.Roster = d.Roster
				}
			}
		}
	}

	owned := map[model.ParticipantID]int{}
	for _, team := range model.Teams {
		for _, slot := range s.lineup.Roster.Team(team) {
			if slot.ClaimedBy != "" {
				owned[slot.ClaimedBy]++
				s.NotEmpty(slot.Name)
			} else {
				s.Empty(slot.Name)
			}
		}
	}
	s.Len(owned, len(participants))
	for p, n := range owned {
		s.Equal(1, n, "participant %s owns %d slots", p, n)
	}
}
