package redis

import (
	"fmt"

	"github.com/mcoot/lineupsheet/internal/model"
)

// Key prefix for all lineup data
const keyPrefix = "lineupsheet"

// lineupKey returns the Redis key for a Lineup
func lineupKey(id model.LineupID) string {
	return fmt.Sprintf("%s:lineup:%s", keyPrefix, id)
}
