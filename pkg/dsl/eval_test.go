package dsl

import (
	"testing"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pkg/utils"
)

func testCandidate() *core.Candidate {
	c := core.NewCandidate("c1", "Grouper")
	c.Popularity = 22
	c.Followers = 40000
	c.Genres = []string{"ambient", "drone"}
	c.Sources = []string{"search", "related"}
	c.OverlapsDislike = true
	c.PutLabel("recall_source", utils.Label{Value: "search", Source: "recall.search"})
	return c
}

func TestEvaluate(t *testing.T) {
	rctx := core.NewRecommendContext(core.Preferences{})
	rctx.Queries = []string{"underground ambient"}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"empty expr is true", "", true},
		{"popularity gate", "candidate.popularity <= 35", true},
		{"followers gate", "candidate.followers >= 100000", false},
		{"genre membership", `"ambient" in candidate.genres`, true},
		{"source membership", `candidate.sources.exists(s, s == "related")`, true},
		{"overlap flags", "candidate.overlaps_dislike && !candidate.overlaps_hate", true},
		{"logical combo", `candidate.popularity <= 20 && "drone" in candidate.genres`, false},
		{"label accessor", `label.recall_source == "search"`, true},
		{"rctx queries", `rctx.queries.size() == 1`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEval(testCandidate(), rctx).Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	rctx := core.NewRecommendContext(core.Preferences{})

	if _, err := NewEval(testCandidate(), rctx).Evaluate("candidate.popularity +"); err == nil {
		t.Error("expected compile error for malformed expression")
	}
	if _, err := NewEval(testCandidate(), rctx).Evaluate("candidate.popularity + 1"); err == nil {
		t.Error("expected error for non-boolean result")
	}
}
