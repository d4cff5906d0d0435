package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lineupsheet/internal/api"
	"github.com/mcoot/lineupsheet/internal/factory"
	"github.com/mcoot/lineupsheet/internal/testutil"
)

type cliHarness struct {
	serverURL       string
	participantFile string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	for _, key := range []string{"LINEUPCTL_SERVER", "LINEUPCTL_PARTICIPANT", "LINEUPCTL_PARTICIPANT_FILE"} {
		t.Setenv(key, "")
	}

	app := factory.NewTestApp()
	srv := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:        testutil.NopLogger(),
		LineupService: app.LineupService,
		Storage:       app.Storage,
		StorageType:   app.StorageType,
		Metrics:       app.Metrics,
	}))
	t.Cleanup(srv.Close)

	return &cliHarness{
		serverURL:       srv.URL,
		participantFile: filepath.Join(t.TempDir(), "lineupctl", "participant"),
	}
}

// run executes the CLI and returns stdout, stderr and the command error
func (h *cliHarness) run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer

	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{
		"--server", h.serverURL,
		"--participant-file", h.participantFile,
	}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (h *cliHarness) runJSON(t *testing.T, result any, args ...string) {
	t.Helper()

	stdout, _, err := h.run(append([]string{"--output", "json"}, args...)...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), result), stdout)
}

func (h *cliHarness) create(t *testing.T, args ...string) string {
	t.Helper()

	var created CreatedLineup
	h.runJSON(t, &created, append([]string{"create"}, args...)...)
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestCreateAndGet(t *testing.T) {
	h := newHarness(t)

	id := h.create(t, "--team-a", "Reds", "--players", "9", "--positions", `{"A":[{"x":1}],"B":[]}`)

	var lineup Lineup
	h.runJSON(t, &lineup, "get", id)
	assert.Equal(t, id, lineup.ID)
	assert.Equal(t, "Reds", lineup.TeamAName)
	assert.Equal(t, 9, lineup.PlayersCount)
	assert.Len(t, lineup.Roster.A, 11)
	assert.JSONEq(t, `{"A":[{"x":1}],"B":[]}`, string(lineup.Positions))
}

func TestCreateRejectsInvalidPositions(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("create", "--positions", "{not json")
	assert.ErrorContains(t, err, "--positions")
}

func TestGetUnknownLineup(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("get", "NOPE")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "not_found", apiErr.Code)
}

func TestClaimGeneratesAndPersistsParticipant(t *testing.T) {
	h := newHarness(t)
	id := h.create(t)

	var update RosterUpdate
	h.runJSON(t, &update, "claim", id, "--team", "b", "--index", "3", "--name", "Ali")
	assert.True(t, update.OK)
	assert.Equal(t, "Ali", update.Roster.B[3].Name)

	data, err := os.ReadFile(h.participantFile)
	require.NoError(t, err)
	participant := strings.TrimSpace(string(data))
	_, err = uuid.Parse(participant)
	require.NoError(t, err)
	assert.Equal(t, participant, update.Roster.B[3].ClaimedBy)

	var me Participant
	h.runJSON(t, &me, "whoami")
	assert.Equal(t, participant, me.ID)
}

func TestClaimConflicts(t *testing.T) {
	h := newHarness(t)
	id := h.create(t)

	_, _, err := h.run("--participant", "p1", "claim", id, "--team", "A", "--index", "0", "--name", "Ali")
	require.NoError(t, err)

	_, _, err = h.run("--participant", "p2", "claim", id, "--team", "A", "--index", "0", "--name", "Sam")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "slot_taken", apiErr.Code)

	_, _, err = h.run("--participant", "p1", "claim", id, "--team", "B", "--index", "0", "--name", "Ali")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "already_used", apiErr.Code)
}

func TestClaimRequiresFlags(t *testing.T) {
	h := newHarness(t)
	id := h.create(t)

	_, _, err := h.run("claim", id, "--team", "A", "--name", "Ali")
	assert.ErrorContains(t, err, "index")
}

func TestUnclaim(t *testing.T) {
	h := newHarness(t)
	id := h.create(t)

	_, _, err := h.run("--participant", "p1", "claim", id, "--team", "A", "--index", "2", "--name", "Ali")
	require.NoError(t, err)

	_, _, err = h.run("--participant", "p2", "unclaim", id, "--team", "A", "--index", "2")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not_your_slot", apiErr.Code)

	var update RosterUpdate
	h.runJSON(t, &update, "--participant", "p1", "unclaim", id, "--team", "A", "--index", "2")
	assert.True(t, update.OK)
	assert.Empty(t, update.Roster.A[2].Name)
	assert.Empty(t, update.Roster.A[2].ClaimedBy)
}

func TestTextOutputMarksOwnSlot(t *testing.T) {
	h := newHarness(t)
	id := h.create(t, "--team-a", "Reds", "--players", "7")

	_, _, err := h.run("--participant", "p1", "claim", id, "--team", "A", "--index", "1", "--name", "Ali")
	require.NoError(t, err)

	stdout, _, err := h.run("--participant", "p1", "get", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Lineup: "+id)
	assert.Contains(t, stdout, "Players per team: 7")
	assert.Contains(t, stdout, "[1] #2 Ali *")
	assert.Contains(t, stdout, "[0] #1 (open)")
	assert.NotContains(t, stdout, "[7]")
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("health")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Status: ok")
	assert.Contains(t, stdout, "Storage: memory")
	assert.NotContains(t, stdout, "Warning")
}

func TestVerboseTracesRequests(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run("--verbose", "health")
	require.NoError(t, err)
	assert.Contains(t, stderr, "> GET "+h.serverURL+"/api/v1/health")
	assert.Contains(t, stderr, "< 200 OK")
}

func TestEnsureParticipant(t *testing.T) {
	dir := t.TempDir()

	t.Run("explicit id wins", func(t *testing.T) {
		c := &Config{Participant: "p1", ParticipantFile: filepath.Join(dir, "unused")}
		id, err := c.EnsureParticipant()
		require.NoError(t, err)
		assert.Equal(t, "p1", id)
		assert.NoFileExists(t, c.ParticipantFile)
	})

	t.Run("reads existing file", func(t *testing.T) {
		path := filepath.Join(dir, "existing")
		require.NoError(t, os.WriteFile(path, []byte("  stored-id \n"), 0o600))

		c := &Config{ParticipantFile: path}
		id, err := c.EnsureParticipant()
		require.NoError(t, err)
		assert.Equal(t, "stored-id", id)
	})

	t.Run("generates once and reuses", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "participant")

		first, err := (&Config{ParticipantFile: path}).EnsureParticipant()
		require.NoError(t, err)
		second, err := (&Config{ParticipantFile: path}).EnsureParticipant()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("unreadable path fails", func(t *testing.T) {
		c := &Config{ParticipantFile: dir}
		_, err := c.EnsureParticipant()
		assert.Error(t, err)
		assert.False(t, errors.Is(err, os.ErrNotExist))
	})
}
