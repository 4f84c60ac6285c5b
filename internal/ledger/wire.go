package ledger

import (
	"time"

	"github.com/google/uuid"
)

// TopicEntryVisited carries visit events from the redirect path to the
// persisting consumer.
const TopicEntryVisited = "entry.visited"

// EntryVisitedEvent is the wire form of a visit, published on every
// successful resolution.
type EntryVisitedEvent struct {
	EntryID   uuid.UUID  `json:"entryId"`
	VisitorID *uuid.UUID `json:"visitorId,omitempty"`
	VisitedAt time.Time  `json:"visitedAt"`
	ClientIP  string     `json:"clientIp,omitempty"`
	UserAgent string     `json:"userAgent,omitempty"`
	Referrer  string     `json:"referrer,omitempty"`
}
