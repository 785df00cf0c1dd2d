package completion

import (
	"strings"
	"testing"
)

func TestBuildPlanPromptEmbedsEveryFieldInOrder(t *testing.T) {
	t.Parallel()
	msgs := BuildPlanPrompt(PlanContext{
		Title:              "Corner Bakery",
		Description:        "neighborhood bakery",
		Sector:             "food service",
		SectorDetails:      map[string]any{"channels": []string{"storefront", "delivery"}, "audience": "families"},
		MarketingMaturity:  "beginner",
		MarketingGoal:      "grow local awareness",
		CommercialMaturity: "intermediate",
		CommercialGoal:     "increase repeat sales",
		MaxActions:         5,
	})
	if msgs.System == "" {
		t.Fatal("system message is empty")
	}
	labels := []string{
		"title: Corner Bakery",
		"description: neighborhood bakery",
		"sector: Food Service",
		"sector_details: audience=families; channels=storefront, delivery",
		"marketing_maturity: beginner",
		"marketing_goal: grow local awareness",
		"commercial_maturity: intermediate",
		"commercial_goal: increase repeat sales",
	}
	last := -1
	for _, label := range labels {
		idx := strings.Index(msgs.User, label)
		if idx < 0 {
			t.Fatalf("user message missing %q:\n%s", label, msgs.User)
		}
		if idx < last {
			t.Fatalf("label %q out of order", label)
		}
		last = idx
	}
	if !strings.Contains(msgs.User, "at most 5 actions") {
		t.Fatalf("user message missing action bound:\n%s", msgs.User)
	}
}

func TestBuildPlanPromptFallsBackToNotProvided(t *testing.T) {
	t.Parallel()
	msgs := BuildPlanPrompt(PlanContext{
		Title:       "Corner Bakery",
		Description: "neighborhood bakery",
		Sector:      "food",
		MaxActions:  5,
	})
	for _, label := range []string{"sector_details: not provided", "marketing_goal: not provided", "commercial_maturity: not provided"} {
		if !strings.Contains(msgs.User, label) {
			t.Fatalf("user message missing %q:\n%s", label, msgs.User)
		}
	}
}

func TestBuildPlanPromptIsDeterministic(t *testing.T) {
	t.Parallel()
	ctx := PlanContext{
		Title:         "Shop",
		Description:   "desc",
		Sector:        "retail",
		SectorDetails: map[string]any{"b": "2", "a": "1", "c": "3"},
		MaxActions:    3,
	}
	first := BuildPlanPrompt(ctx)
	for i := 0; i < 10; i++ {
		if got := BuildPlanPrompt(ctx); got != first {
			t.Fatalf("prompt differs between calls:\n%s\n---\n%s", first.User, got.User)
		}
	}
}

func TestBuildPlanPromptUnboundedOmitsLimit(t *testing.T) {
	t.Parallel()
	msgs := BuildPlanPrompt(PlanContext{Title: "t", Description: "d", Sector: "s", MaxActions: -1})
	if strings.Contains(msgs.User, "at most") {
		t.Fatalf("unbounded prompt should not carry an action bound:\n%s", msgs.User)
	}
}

func TestBuildDetailPromptEmbedsActionContext(t *testing.T) {
	t.Parallel()
	msgs := BuildDetailPrompt(DetailContext{
		ProjectTitle:      "Corner Bakery",
		Sector:            "food",
		MarketingGoal:     "grow",
		CommercialGoal:    "sell",
		ActionTitle:       "Launch loyalty program",
		ActionDescription: "reward repeat customers",
	})
	for _, label := range []string{
		"project_title: Corner Bakery",
		"action_title: Launch loyalty program",
		"action_description: reward repeat customers",
		"detailedDescription",
	} {
		if !strings.Contains(msgs.User, label) {
			t.Fatalf("user message missing %q:\n%s", label, msgs.User)
		}
	}
}
