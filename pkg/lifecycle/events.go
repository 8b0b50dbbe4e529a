package lifecycle

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event describes a store occurrence that can be fanned out to hooks.
type Event struct {
	ID         string
	Verb       string
	StateType  string
	Identity   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// NormalizeEvent trims whitespace, clones metadata, and ensures an event ID
// and timestamp are present.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.ID = strings.TrimSpace(event.ID)
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.StateType = strings.TrimSpace(event.StateType)
	normalized.Identity = strings.TrimSpace(event.Identity)
	normalized.Channel = strings.TrimSpace(event.Channel)
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.ID == "" {
		normalized.ID = uuid.NewString()
	}
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
