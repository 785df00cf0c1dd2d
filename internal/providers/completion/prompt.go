package completion

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// notProvided is the literal marker embedded for empty optional fields so the
// rendered prompt stays deterministic regardless of input completeness.
const notProvided = "not provided"

const planSystemMessage = "You are a senior marketing and commercial strategy consultant. You only respond with valid JSON, no prose wrapper."

const detailSystemMessage = "You are a senior marketing and commercial strategy consultant expanding one strategic action into an execution plan. You only respond with valid JSON, no prose wrapper."

// PlanContext carries the business context for the initial action generation.
type PlanContext struct {
	Title              string
	Description        string
	Sector             string
	SectorDetails      map[string]any
	MarketingMaturity  string
	MarketingGoal      string
	CommercialMaturity string
	CommercialGoal     string
	// MaxActions bounds the requested list; Unlimited (-1) requests no bound.
	MaxActions int
}

// DetailContext carries the context for expanding a single action.
type DetailContext struct {
	ProjectTitle      string
	Sector            string
	MarketingGoal     string
	CommercialGoal    string
	ActionTitle       string
	ActionDescription string
}

// BuildPlanPrompt renders the message pair for generating the prioritized
// action list. Every input field is embedded by label in a fixed order.
func BuildPlanPrompt(ctx PlanContext) Messages {
	sb := &strings.Builder{}
	sb.WriteString("Create a prioritized list of strategic marketing and commercial actions for the business below. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"actions":[{"title":string,"description":string,"priority":"LOW"|"MEDIUM"|"HIGH"}]}`)
	sb.WriteString(". Order actions from most to least impactful.")
	if ctx.MaxActions >= 0 {
		fmt.Fprintf(sb, " Return at most %d actions.", ctx.MaxActions)
	}
	sb.WriteString("\nBusiness context:")
	writeField(sb, "title", ctx.Title)
	writeField(sb, "description", ctx.Description)
	writeField(sb, "sector", titleCase(ctx.Sector))
	writeField(sb, "sector_details", renderSectorDetails(ctx.SectorDetails))
	writeField(sb, "marketing_maturity", ctx.MarketingMaturity)
	writeField(sb, "marketing_goal", ctx.MarketingGoal)
	writeField(sb, "commercial_maturity", ctx.CommercialMaturity)
	writeField(sb, "commercial_goal", ctx.CommercialGoal)
	return Messages{System: planSystemMessage, User: sb.String()}
}

// BuildDetailPrompt renders the message pair for expanding one action into a
// detailed sub-plan.
func BuildDetailPrompt(ctx DetailContext) Messages {
	sb := &strings.Builder{}
	sb.WriteString("Expand the strategic action below into a detailed execution plan. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"detailedDescription":{"objective":string,"execution":string,"conclusion":string,"subtasks":string[]}}`)
	sb.WriteString(".\nContext:")
	writeField(sb, "project_title", ctx.ProjectTitle)
	writeField(sb, "sector", titleCase(ctx.Sector))
	writeField(sb, "marketing_goal", ctx.MarketingGoal)
	writeField(sb, "commercial_goal", ctx.CommercialGoal)
	writeField(sb, "action_title", ctx.ActionTitle)
	writeField(sb, "action_description", ctx.ActionDescription)
	return Messages{System: detailSystemMessage, User: sb.String()}
}

func writeField(sb *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = notProvided
	}
	fmt.Fprintf(sb, "\n%s: %s", label, value)
}

// renderSectorDetails flattens the free-form detail map deterministically:
// keys sorted, list values joined with commas.
func renderSectorDetails(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, renderDetailValue(details[k])))
	}
	return strings.Join(parts, "; ")
}

func renderDetailValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.Und).String(s)
}
