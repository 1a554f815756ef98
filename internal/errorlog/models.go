package errorlog

import (
	"encoding/json"
	"time"
)

// Entry is a system-detected failure the operator may need to act on.
// Lifecycle: created unresolved, then resolved exactly once (re-resolving is
// an idempotent rewrite of the resolution fields).
type Entry struct {
	ID         int64           `json:"id"`
	Type       string          `json:"type"`
	Message    string          `json:"message"`
	Source     string          `json:"source,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	Resolved   bool            `json:"resolved"`
	ResolvedAt *time.Time      `json:"resolvedAt,omitempty"`
	ResolvedBy string          `json:"resolvedBy,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}
