package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Priority ranks a generated action.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// NormalizePriority maps arbitrary model output to a valid Priority, defaulting
// to MEDIUM for anything unrecognized.
func NormalizePriority(raw string) Priority {
	switch Priority(strings.ToUpper(strings.TrimSpace(raw))) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	case PriorityMedium:
		return PriorityMedium
	default:
		return PriorityMedium
	}
}

// ProjectPlan is a user's business-planning record that anchors generated
// actions. Created once; mutated only by appending PlanActions.
type ProjectPlan struct {
	ID                 string
	Title              string
	Description        string
	Sector             string
	SectorDetails      map[string]any
	MarketingMaturity  string
	MarketingGoal      string
	CommercialMaturity string
	CommercialGoal     string
	UserID             string
	Actions            []PlanAction
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PlanAction is one AI-generated strategic recommendation attached to a
// ProjectPlan. Order is 1-based and gapless within its plan.
type PlanAction struct {
	ID            string
	Title         string
	Description   string
	Priority      Priority
	Order         int
	IsSelected    bool
	ProjectPlanID string
	CreatedAt     time.Time
}

// DetailedAction is an AI-generated elaboration of a single PlanAction.
// Description holds the serialized detailedDescription object; its
// objective/execution/conclusion/subtasks fields are opaque to the server.
type DetailedAction struct {
	ID           string
	Title        string
	Description  json.RawMessage
	Order        int
	PlanActionID string
	CreatedAt    time.Time
}
