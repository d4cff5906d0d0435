package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Config holds CLI configuration
type Config struct {
	ServerURL       string
	Participant     string
	ParticipantFile string
	Output          string
	Verbose         bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:       getEnvOrDefault("LINEUPCTL_SERVER", "http://localhost:10000"),
		Participant:     os.Getenv("LINEUPCTL_PARTICIPANT"),
		ParticipantFile: getEnvOrDefault("LINEUPCTL_PARTICIPANT_FILE", defaultParticipantFile()),
		Output:          "text",
		Verbose:         false,
	}
}

// EnsureParticipant resolves the participant id used for claims.
// An explicit id wins; otherwise the id stored in ParticipantFile is used,
// and a fresh one is generated and saved when the file does not exist yet.
func (c *Config) EnsureParticipant() (string, error) {
	if c.Participant != "" {
		return c.Participant, nil
	}

	data, err := os.ReadFile(c.ParticipantFile)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			c.Participant = id
			return id, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	id := uuid.NewString()
	if err := c.SaveParticipant(id); err != nil {
		return "", err
	}
	return id, nil
}

// SaveParticipant saves the participant id to the participant file
func (c *Config) SaveParticipant(id string) error {
	c.Participant = id

	dir := filepath.Dir(c.ParticipantFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.ParticipantFile, []byte(id+"\n"), 0600)
}

func defaultParticipantFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lineupctl/participant"
	}
	return filepath.Join(home, ".lineupctl", "participant")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
