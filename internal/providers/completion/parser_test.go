package completion

import (
	"errors"
	"testing"

	"stratplan/internal/domain"
)

func TestParsePlanActionsAssignsOrderAndDefaultsPriority(t *testing.T) {
	t.Parallel()
	raw := `{"actions":[{"title":"A","description":"d"},{"title":"B","description":"d2","priority":"HIGH"}]}`
	drafts, err := ParsePlanActions(raw, 10)
	if err != nil {
		t.Fatalf("ParsePlanActions returned error: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("len(drafts) = %d, want 2", len(drafts))
	}
	if drafts[0].Order != 1 || drafts[1].Order != 2 {
		t.Fatalf("orders = [%d, %d], want [1, 2]", drafts[0].Order, drafts[1].Order)
	}
	if drafts[0].Priority != domain.PriorityMedium {
		t.Fatalf("drafts[0].Priority = %q, want MEDIUM", drafts[0].Priority)
	}
	if drafts[1].Priority != domain.PriorityHigh {
		t.Fatalf("drafts[1].Priority = %q, want HIGH", drafts[1].Priority)
	}
}

func TestParsePlanActionsTruncatesToMax(t *testing.T) {
	t.Parallel()
	raw := `{"actions":[{"title":"A","description":"d"},{"title":"B","description":"d2","priority":"HIGH"}]}`
	drafts, err := ParsePlanActions(raw, 1)
	if err != nil {
		t.Fatalf("ParsePlanActions returned error: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("len(drafts) = %d, want 1", len(drafts))
	}
	if drafts[0].Title != "A" {
		t.Fatalf("drafts[0].Title = %q, want %q", drafts[0].Title, "A")
	}
}

func TestParsePlanActionsUnlimitedSkipsTruncation(t *testing.T) {
	t.Parallel()
	raw := `{"actions":[{"title":"A"},{"title":"B"},{"title":"C"}]}`
	drafts, err := ParsePlanActions(raw, domain.Unlimited)
	if err != nil {
		t.Fatalf("ParsePlanActions returned error: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("len(drafts) = %d, want 3", len(drafts))
	}
}

func TestParsePlanActionsOverwritesModelOrder(t *testing.T) {
	t.Parallel()
	raw := `{"actions":[{"title":"A","order":7},{"title":"B","order":3}]}`
	drafts, err := ParsePlanActions(raw, 10)
	if err != nil {
		t.Fatalf("ParsePlanActions returned error: %v", err)
	}
	if drafts[0].Order != 1 || drafts[1].Order != 2 {
		t.Fatalf("orders = [%d, %d], want [1, 2]", drafts[0].Order, drafts[1].Order)
	}
}

func TestParsePlanActionsMalformed(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		raw  string
	}{
		{name: "missing actions key", raw: `{"foo":[]}`},
		{name: "actions null", raw: `{"actions":null}`},
		{name: "actions not array", raw: `{"actions":"x"}`},
		{name: "not json", raw: `hello there`},
		{name: "empty", raw: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParsePlanActions(tc.raw, 10)
			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("error = %v, want MalformedResponseError", err)
			}
		})
	}
}

func TestParsePlanActionsToleratesCodeFence(t *testing.T) {
	t.Parallel()
	raw := "```json\n{\"actions\":[{\"title\":\"A\",\"description\":\"d\"}]}\n```"
	drafts, err := ParsePlanActions(raw, 10)
	if err != nil {
		t.Fatalf("ParsePlanActions returned error: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Title != "A" {
		t.Fatalf("drafts = %+v, want one titled A", drafts)
	}
}

func TestParseDetailedAction(t *testing.T) {
	t.Parallel()
	raw := `{"detailedDescription":{"objective":"o","execution":"e","conclusion":"c","subtasks":["s1"]}}`
	description, err := ParseDetailedAction(raw)
	if err != nil {
		t.Fatalf("ParseDetailedAction returned error: %v", err)
	}
	if len(description) == 0 {
		t.Fatal("description is empty")
	}
}

func TestParseDetailedActionMalformed(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		raw  string
	}{
		{name: "missing key", raw: `{"actions":[]}`},
		{name: "null object", raw: `{"detailedDescription":null}`},
		{name: "array instead of object", raw: `{"detailedDescription":[1]}`},
		{name: "scalar", raw: `{"detailedDescription":"text"}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDetailedAction(tc.raw)
			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("error = %v, want MalformedResponseError", err)
			}
		})
	}
}
