package objectclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyGenerator builds object keys of the form {folder}/{millis}-{name}.
//
// With the timestamp strategy two calls carrying the same folder and name in
// the same millisecond yield the same key and the second upload overwrites
// the first. The timestamp-uuid strategy adds a random segment to avoid that.
type KeyGenerator struct {
	strategy string
	now      func() time.Time
	suffix   func() string
}

// NewKeyGenerator returns a generator for the given strategy.
func NewKeyGenerator(strategy string) *KeyGenerator {
	if strategy == "" {
		strategy = KeyStrategyTimestamp
	}
	return &KeyGenerator{
		strategy: strategy,
		now:      time.Now,
		suffix:   randomSuffix,
	}
}

// Generate returns the key for name under folder. An empty folder becomes
// DefaultFolder.
func (g *KeyGenerator) Generate(folder, name string) string {
	if folder == "" {
		folder = DefaultFolder
	}
	folder = strings.TrimSuffix(folder, "/")
	millis := g.now().UnixMilli()
	if g.strategy == KeyStrategyTimestampUUID {
		return fmt.Sprintf("%s/%d-%s-%s", folder, millis, g.suffix(), name)
	}
	return fmt.Sprintf("%s/%d-%s", folder, millis, name)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
