package recall

import (
	"context"
	"testing"

	"github.com/adheep04/algorhythmn/core"
)

func TestTrimKeepsMostUnderground(t *testing.T) {
	candidates := []*core.Candidate{
		named("C", core.SourceSearch, 30),
		named("A", core.SourceSearch, 10),
		named("B", core.SourceSearch, 20),
	}
	rctx := core.NewRecommendContext(core.Preferences{})
	out, err := (&Trim{Target: 2}).Process(context.Background(), rctx, candidates)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d", len(out))
	}
	if out[0].Name != "A" || out[1].Name != "B" {
		t.Errorf("kept %v %v, want lowest popularity first", out[0].Name, out[1].Name)
	}
	if rctx.Diag.TrimmedCount != 1 || rctx.Diag.TotalCandidates != 2 {
		t.Errorf("diag trimmed=%d total=%d", rctx.Diag.TrimmedCount, rctx.Diag.TotalCandidates)
	}
}

func TestTrimRetainsOverlapFlagged(t *testing.T) {
	flagged := named("Hated", core.SourceSearch, 90)
	flagged.OverlapsHate = true
	candidates := []*core.Candidate{
		named("A", core.SourceSearch, 10),
		named("B", core.SourceSearch, 20),
		flagged,
	}
	rctx := core.NewRecommendContext(core.Preferences{})
	out, err := (&Trim{Target: 2}).Process(context.Background(), rctx, candidates)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	var hasFlagged bool
	for _, c := range out {
		if c.Name == "Hated" {
			hasFlagged = true
		}
	}
	if !hasFlagged {
		t.Error("overlap-flagged candidates must survive trimming")
	}
	if len(out) != 2 {
		t.Errorf("len(out) = %d", len(out))
	}
}

func TestTrimTieBreakByName(t *testing.T) {
	candidates := []*core.Candidate{
		named("Zeta", core.SourceSearch, 10),
		named("Alpha", core.SourceSearch, 10),
	}
	rctx := core.NewRecommendContext(core.Preferences{})
	out, _ := (&Trim{Target: 1}).Process(context.Background(), rctx, candidates)
	if out[0].Name != "Alpha" {
		t.Errorf("tie must break by normalized name, got %s", out[0].Name)
	}
}

func TestTrimNoop(t *testing.T) {
	candidates := []*core.Candidate{named("A", core.SourceSearch, 10)}
	rctx := core.NewRecommendContext(core.Preferences{})
	out, _ := (&Trim{Target: 5}).Process(context.Background(), rctx, candidates)
	if len(out) != 1 || rctx.Diag.TotalCandidates != 1 {
		t.Errorf("out=%v total=%d", out, rctx.Diag.TotalCandidates)
	}
}
