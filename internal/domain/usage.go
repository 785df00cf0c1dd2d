package domain

import "time"

// Usage event types recorded for generation requests.
const (
	UsageEventPlanGenerate   = "PLAN_GENERATE"
	UsageEventDetailGenerate = "DETAIL_GENERATE"
)

// UsageEvent is an append-only record of one generation request.
type UsageEvent struct {
	UserID    string
	EventType string
	Success   bool
	LatencyMS int
	Country   string
	CreatedAt time.Time
}
