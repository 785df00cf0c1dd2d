package completion

import (
	"encoding/json"
	"strings"

	"stratplan/internal/domain"
)

// ActionDraft is one parsed action before persistence assigns identity.
type ActionDraft struct {
	Title       string
	Description string
	Priority    domain.Priority
	Order       int
}

type planPayload struct {
	Actions *[]actionPayload `json:"actions"`
}

type actionPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type detailPayload struct {
	DetailedDescription json.RawMessage `json:"detailedDescription"`
}

// ParsePlanActions parses the model output for the initial generation flow.
// The actions field must be an array; entries beyond maxActions are discarded
// (Unlimited disables truncation); order is reassigned 1-based from array
// position and invalid priorities default to MEDIUM.
func ParsePlanActions(raw string, maxActions int) ([]ActionDraft, error) {
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return nil, &MalformedResponseError{Field: "actions", Err: errEmptyPayload}
	}
	var payload planPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &MalformedResponseError{Field: "actions", Err: err}
	}
	if payload.Actions == nil {
		return nil, &MalformedResponseError{Field: "actions"}
	}
	entries := *payload.Actions
	if maxActions != domain.Unlimited && len(entries) > maxActions {
		entries = entries[:maxActions]
	}
	drafts := make([]ActionDraft, 0, len(entries))
	for i, entry := range entries {
		drafts = append(drafts, ActionDraft{
			Title:       strings.TrimSpace(entry.Title),
			Description: strings.TrimSpace(entry.Description),
			Priority:    domain.NormalizePriority(entry.Priority),
			Order:       i + 1,
		})
	}
	return drafts, nil
}

// ParseDetailedAction parses the model output for the detail-expansion flow.
// The detailedDescription field must be a non-null object; its contents are
// returned verbatim and treated as opaque by callers.
func ParseDetailedAction(raw string) (json.RawMessage, error) {
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return nil, &MalformedResponseError{Field: "detailedDescription", Err: errEmptyPayload}
	}
	var payload detailPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &MalformedResponseError{Field: "detailedDescription", Err: err}
	}
	if !isJSONObject(payload.DetailedDescription) {
		return nil, &MalformedResponseError{Field: "detailedDescription"}
	}
	return payload.DetailedDescription, nil
}

var errEmptyPayload = jsonError("empty payload")

type jsonError string

func (e jsonError) Error() string { return string(e) }

func isJSONObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}

// extractJSONFragment tolerates prose or code fences around the JSON body that
// some models emit despite the json_object response format.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
