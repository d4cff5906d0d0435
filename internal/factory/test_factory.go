package factory

import (
	"time"

	"github.com/mcoot/lineupsheet/internal/dependencies/mocks"
	"github.com/mcoot/lineupsheet/internal/metrics"
	"github.com/mcoot/lineupsheet/internal/services/lineup"
	"github.com/mcoot/lineupsheet/internal/storage/memory"
	"github.com/mcoot/lineupsheet/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
	MemoryStore *memory.Storage
}

// NewTestApp creates an App backed by memory storage with mocked time and IDs
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := Config{
		EvictionGrace: time.Hour,
		SweepInterval: time.Minute,
		ServiceConfig: lineup.DefaultConfig(),
	}
	app := newWithDependencies(store, mockClock, mockRandom, metrics.NewRecorder(), cfg, testutil.NopLogger())

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		MemoryStore: store,
	}
}
