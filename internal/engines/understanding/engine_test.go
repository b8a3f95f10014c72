package understanding

import (
	"testing"

	"go-skillagent/internal/orchestrator"
	"go-skillagent/pkg/models"
)

func TestParseAssessment_AppliesThreshold(t *testing.T) {
	e := NewWithChains(nil, nil, 5, 0.8)

	confident, err := e.parseAssessment(`{"understood": true, "confidence": 0.9, "extractedContext": {"repo": "core"}}`)
	if err != nil {
		t.Fatal(err)
	}
	if !confident.Understood {
		t.Fatal("confidence above threshold must be understood")
	}
	if confident.ExtractedContext["repo"] != "core" {
		t.Fatalf("extracted = %v", confident.ExtractedContext)
	}

	hesitant, err := e.parseAssessment(`{"understood": true, "confidence": 0.5, "question": "Which repo?"}`)
	if err != nil {
		t.Fatal(err)
	}
	if hesitant.Understood {
		t.Fatal("confidence below threshold must not be understood")
	}

	if _, err := e.parseAssessment("not json"); err == nil {
		t.Fatal("want error for garbage completion")
	}
}

func TestApplyBudget_ForcesConvergence(t *testing.T) {
	e := NewWithChains(nil, nil, 2, 0.8)

	for i := 0; i < 2; i++ {
		a := &orchestrator.Assessment{Understood: false}
		e.applyBudget(a)
		if a.Understood {
			t.Fatalf("question %d should still be allowed", i+1)
		}
	}

	exhausted := &orchestrator.Assessment{Understood: false}
	e.applyBudget(exhausted)
	if !exhausted.Understood {
		t.Fatal("budget exhaustion must force convergence")
	}

	e.Reset()
	fresh := &orchestrator.Assessment{Understood: false}
	e.applyBudget(fresh)
	if fresh.Understood {
		t.Fatal("reset must restore the question budget")
	}
}

func TestParseExtraction_DegradesToRawAnswer(t *testing.T) {
	got := parseExtraction(`{"region": "eu-west-1"}`, "somewhere in europe")
	if got["region"] != "eu-west-1" {
		t.Fatalf("extracted = %v", got)
	}

	degraded := parseExtraction("no structure here", "somewhere in europe")
	if degraded["answer"] != "somewhere in europe" {
		t.Fatalf("degraded = %v, want the raw answer kept", degraded)
	}
}

func TestBuildGoal_FoldsAssessments(t *testing.T) {
	e := NewWithChains(nil, nil, 5, 0.8)

	goal := e.BuildGoal("ship the release", []*orchestrator.Assessment{
		{ExtractedContext: map[string]any{"repo": "core"}},
		{ExtractedContext: map[string]any{"env": "prod"}},
	}, map[string]any{"tenant": "acme"})

	if goal.Statement != "ship the release" {
		t.Fatalf("statement = %q", goal.Statement)
	}
	for key, want := range map[string]any{"tenant": "acme", "repo": "core", "env": "prod"} {
		if goal.Context[key] != want {
			t.Fatalf("context[%s] = %v, want %v", key, goal.Context[key], want)
		}
	}
}

func TestCreateQuestionMessage(t *testing.T) {
	e := NewWithChains(nil, nil, 5, 0.8)

	msg := e.CreateQuestionMessage(&orchestrator.Assessment{Question: "Which repo?", MissingInfo: []string{"repo"}})
	if msg.Type != models.MessageTypeQuestion || msg.Content != "Which repo?" || msg.ID == "" {
		t.Fatalf("message = %+v", msg)
	}
	payload, ok := msg.Payload.(models.QuestionPayload)
	if !ok || len(payload.MissingInfo) != 1 {
		t.Fatalf("payload = %+v", msg.Payload)
	}

	fallback := e.CreateQuestionMessage(&orchestrator.Assessment{})
	if fallback.Content == "" {
		t.Fatal("empty question must get a fallback")
	}
}
