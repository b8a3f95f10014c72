package planning

import (
	"testing"

	"go-skillagent/pkg/models"
)

func catalog() map[string]models.Skill {
	return map[string]models.Skill{
		"crm.lookup": {Key: "crm.lookup", Name: "Look up contact", Active: true},
		"crm.update": {Key: "crm.update", Name: "Update contact", Active: true},
	}
}

func TestBuildPlan_ResolvesStepsAndOrders(t *testing.T) {
	answer := "Here is the plan:\n" + `{
		"steps": [
			{"skillKey": "crm.lookup", "purpose": "find the contact", "input": {"name": "Ada"}},
			{"skillKey": "crm.update", "purpose": "update the contact"}
		],
		"gaps": [],
		"canAccomplish": "Both steps are covered."
	}`

	plan, err := buildPlan(answer, catalog())
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(plan.Steps))
	}
	for i, step := range plan.Steps {
		if step.Order != i {
			t.Fatalf("step %d has order %d", i, step.Order)
		}
		if step.Status != models.StepStatusPending {
			t.Fatalf("step %d starts as %s", i, step.Status)
		}
		if step.Skill == nil {
			t.Fatalf("step %d is missing its catalog snapshot", i)
		}
	}
	if plan.Steps[0].InputContext["name"] != "Ada" {
		t.Fatalf("input context = %v", plan.Steps[0].InputContext)
	}
	if plan.CanAccomplish != "Both steps are covered." {
		t.Fatalf("canAccomplish = %q", plan.CanAccomplish)
	}
}

func TestBuildPlan_UnknownSkillBecomesGap(t *testing.T) {
	answer := `{
		"steps": [
			{"skillKey": "crm.lookup", "purpose": "find the contact"},
			{"skillKey": "email.send", "purpose": "send a note"}
		],
		"gaps": [{"capability": "calendar", "suggestion": "Connect a calendar"}],
		"canAccomplish": "Partially."
	}`

	plan, err := buildPlan(answer, catalog())
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Steps) != 1 || plan.Steps[0].SkillKey != "crm.lookup" {
		t.Fatalf("steps = %v, want only the resolvable one", plan.Steps)
	}
	// The surviving step keeps a dense order.
	if plan.Steps[0].Order != 0 {
		t.Fatalf("order = %d, want 0", plan.Steps[0].Order)
	}
	if len(plan.Gaps) != 2 {
		t.Fatalf("gaps = %v, want the model's gap plus the unknown skill", plan.Gaps)
	}
}

func TestBuildPlan_RejectsGarbage(t *testing.T) {
	if _, err := buildPlan("no json at all", catalog()); err == nil {
		t.Fatal("want error for answer without json")
	}
}

func TestValidatePlan(t *testing.T) {
	e := NewWithChain(nil)

	good, err := buildPlan(`{"steps": [{"skillKey": "crm.lookup", "purpose": "x"}], "gaps": [], "canAccomplish": "y"}`, catalog())
	if err != nil {
		t.Fatal(err)
	}
	if v := e.ValidatePlan(good); !v.Valid {
		t.Fatalf("issues = %v, want none", v.Issues)
	}

	bad := &models.ExecutionPlan{Steps: []*models.PlannedStep{
		{SkillKey: "crm.lookup", Purpose: "", Order: 1, Status: models.StepStatusRunning},
		{SkillKey: "crm.lookup", Purpose: "again", Order: 1, Status: models.StepStatusPending},
	}}
	v := e.ValidatePlan(bad)
	if v.Valid {
		t.Fatal("want invalid")
	}
	// wrong order, empty purpose, non-pending status, duplicate key
	if len(v.Issues) < 4 {
		t.Fatalf("issues = %v, want at least 4", v.Issues)
	}

	if v := e.ValidatePlan(nil); v.Valid {
		t.Fatal("nil plan must be invalid")
	}
}
