package analyzer

import (
	"testing"

	"tensorc/internal/manifest"
)

func TestAnalyzeFeedbackLoop(t *testing.T) {
	m := &manifest.Manifest{
		Sources: map[string]manifest.SourceDef{"state": {}},
		Programs: []manifest.ProgramEntry{
			{ID: "P", Path: "p.json"},
			{ID: "Q", Path: "q.json"},
		},
		Links: []manifest.Link{
			{Source: "P.out", Destination: "sources.state"},
			{Source: "sources.state", Destination: "Q.in"},
			{Source: "Q.out", Destination: "P.in2"},
		},
	}

	plan, err := Analyze(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Feedback) != 1 {
		t.Fatalf("expected 1 feedback link, got %d", len(plan.Feedback))
	}

	order := make([]string, len(plan.Programs))
	for i, p := range plan.Programs {
		order[i] = p.ID
	}
	if order[0] != "Q" || order[1] != "P" {
		t.Fatalf("expected order [Q P], got %v", order)
	}

	qBinding := plan.Programs[0].InputBindings["in"]
	if !qBinding.IsResource || qBinding.ResourceID != "state" {
		t.Fatalf("expected Q.in bound to resource state, got %+v", qBinding)
	}

	pBinding := plan.Programs[1].InputBindings["in2"]
	if pBinding.IsResource || pBinding.SourceProgram != "Q" || pBinding.SourcePort != "out" {
		t.Fatalf("expected P.in2 bound to Q.out, got %+v", pBinding)
	}
}

func TestAnalyzeDetectsProgramCycle(t *testing.T) {
	m := &manifest.Manifest{
		Programs: []manifest.ProgramEntry{{ID: "A", Path: "a.json"}, {ID: "B", Path: "b.json"}},
		Links: []manifest.Link{
			{Source: "A.out", Destination: "B.in"},
			{Source: "B.out", Destination: "A.in"},
		},
	}
	if _, err := Analyze(m); err == nil {
		t.Fatal("expected cycle detection error")
	}
}
