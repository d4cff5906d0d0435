package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lineupsheet/internal/api"
	"github.com/mcoot/lineupsheet/internal/api/middleware"
	"github.com/mcoot/lineupsheet/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath      string
	serverURL       string
	participantFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "lineupctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/lineupctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath:      binaryPath,
		serverURL:       serverURL,
		participantFile: filepath.Join(t.TempDir(), "participant"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	return r.runAs("", args...)
}

// runAs runs the CLI with an explicit participant id; empty uses the participant file
func (r *cliRunner) runAs(participant string, args ...string) (string, error) {
	fullArgs := []string{
		"--server", r.serverURL,
		"--participant-file", r.participantFile,
		"--output", "json",
	}
	if participant != "" {
		fullArgs = append(fullArgs, "--participant", participant)
	}

	cmd := exec.Command(r.binaryPath, append(fullArgs, args...)...)
	cmd.Env = append(os.Environ(), "LINEUPCTL_PARTICIPANT=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Create application
	app, err := factory.New(context.Background(), factory.Config{
		Logger:      logger,
		StorageType: factory.StorageTypeMemory,
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		LineupService: app.LineupService,
		Storage:       app.Storage,
		StorageType:   app.StorageType,
		Metrics:       app.Metrics,
		RateLimiter:   middleware.NewRateLimiter(100, 100, false, app.Metrics),
	})

	server := api.NewServer(router, api.DefaultServerConfig(), logger)

	// Start server
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

type createdResponse struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type slotResponse struct {
	Number    int    `json:"number"`
	Name      string `json:"name"`
	ClaimedBy string `json:"claimed_by"`
}

type rosterResponse struct {
	A []slotResponse `json:"A"`
	B []slotResponse `json:"B"`
}

type lineupResponse struct {
	ID           string         `json:"id"`
	TeamAName    string         `json:"team_a_name"`
	TeamBName    string         `json:"team_b_name"`
	PlayersCount int            `json:"players_count"`
	Roster       rosterResponse `json:"roster"`
}

type rosterUpdateResponse struct {
	OK     bool           `json:"ok"`
	Roster rosterResponse `json:"roster"`
}

type participantResponse struct {
	ID string `json:"participant_id"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "memory", resp.Storage)
}

func TestCLI_CreateAndGet(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("create", "--team-a", "Reds", "--team-b", "Blues", "--players", "8")
	require.NoError(t, err, "output: %s", output)

	var created createdResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	assert.Len(t, created.ID, 12)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), created.ExpiresAt, time.Minute)

	output, err = cli.run("get", created.ID)
	require.NoError(t, err, "output: %s", output)

	var lineup lineupResponse
	require.NoError(t, json.Unmarshal([]byte(output), &lineup))
	assert.Equal(t, "Reds", lineup.TeamAName)
	assert.Equal(t, "Blues", lineup.TeamBName)
	assert.Equal(t, 8, lineup.PlayersCount)
	assert.Len(t, lineup.Roster.A, 11)

	output, err = cli.run("get", "NOSUCHLINEUP")
	assert.Error(t, err)
	assert.Contains(t, output, "not_found")
}

func TestCLI_FullClaimFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("create")
	require.NoError(t, err, "output: %s", output)
	var created createdResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	id := created.ID

	// First use generates the participant id and keeps it
	output, err = cli.run("whoami")
	require.NoError(t, err, "output: %s", output)
	var me participantResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	require.NotEmpty(t, me.ID)

	output, err = cli.run("claim", id, "--team", "A", "--index", "4", "--name", "Ali")
	require.NoError(t, err, "output: %s", output)
	var update rosterUpdateResponse
	require.NoError(t, json.Unmarshal([]byte(output), &update))
	assert.True(t, update.OK)
	assert.Equal(t, "Ali", update.Roster.A[4].Name)
	assert.Equal(t, me.ID, update.Roster.A[4].ClaimedBy)

	// Another participant cannot take or release the slot
	output, err = cli.runAs("someone-else", "claim", id, "--team", "A", "--index", "4", "--name", "Sam")
	assert.Error(t, err)
	assert.Contains(t, output, "slot_taken")

	output, err = cli.runAs("someone-else", "unclaim", id, "--team", "A", "--index", "4")
	assert.Error(t, err)
	assert.Contains(t, output, "not_your_slot")

	// The holder can claim nothing else until releasing
	output, err = cli.run("claim", id, "--team", "B", "--index", "0", "--name", "Ali")
	assert.Error(t, err)
	assert.Contains(t, output, "already_used")

	output, err = cli.run("unclaim", id, "--team", "A", "--index", "4")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &update))
	assert.Empty(t, update.Roster.A[4].Name)

	output, err = cli.runAs("someone-else", "claim", id, "--team", "A", "--index", "4", "--name", "Sam")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("get", id)
	require.NoError(t, err, "output: %s", output)
	var lineup lineupResponse
	require.NoError(t, json.Unmarshal([]byte(output), &lineup))
	assert.Equal(t, "Sam", lineup.Roster.A[4].Name)
	assert.Equal(t, "someone-else", lineup.Roster.A[4].ClaimedBy)
}
