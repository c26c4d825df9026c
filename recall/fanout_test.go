package recall

import (
	"context"
	"errors"
	"testing"

	"github.com/adheep04/algorhythmn/core"
)

type stubSource struct {
	name       string
	candidates []*core.Candidate
	err        error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Recall(context.Context, *core.RecommendContext) ([]*core.Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	// 每次返回新副本，模拟来源各自构造候选
	out := make([]*core.Candidate, len(s.candidates))
	for i, c := range s.candidates {
		clone := *c
		out[i] = &clone
	}
	return out, nil
}

func named(name, source string, popularity int) *core.Candidate {
	c := core.NewCandidate("id-"+name, name)
	c.Popularity = popularity
	c.AddSource(source, "")
	return c
}

func TestFanoutMergeOrderIsDeclarationOrder(t *testing.T) {
	fanout := &Fanout{Sources: []Source{
		&stubSource{name: core.SourceSearch, candidates: []*core.Candidate{
			named("Plaid", core.SourceSearch, 33),
			named("Ochre", core.SourceSearch, 15),
		}},
		&stubSource{name: core.SourceRelated, candidates: []*core.Candidate{
			named("Bibio", core.SourceRelated, 34),
		}},
	}}

	for run := 0; run < 5; run++ {
		rctx := core.NewRecommendContext(core.Preferences{})
		out, err := fanout.Process(context.Background(), rctx, nil)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if len(out) != 3 {
			t.Fatalf("len(out) = %d", len(out))
		}
		if out[0].Name != "Plaid" || out[1].Name != "Ochre" || out[2].Name != "Bibio" {
			t.Fatalf("merge order not deterministic: %v %v %v", out[0].Name, out[1].Name, out[2].Name)
		}
	}
}

func TestFanoutDedupMerges(t *testing.T) {
	a := named("Ochre", core.SourceSearch, 20)
	b := named("ochre", core.SourceRelated, 15)
	fanout := &Fanout{Sources: []Source{
		&stubSource{name: core.SourceSearch, candidates: []*core.Candidate{a}},
		&stubSource{name: core.SourceRelated, candidates: []*core.Candidate{b}},
	}}

	rctx := core.NewRecommendContext(core.Preferences{})
	out, err := fanout.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want deduped 1", len(out))
	}
	merged := out[0]
	if merged.Popularity != 15 {
		t.Errorf("popularity = %d, want min 15", merged.Popularity)
	}
	if !merged.HasSource(core.SourceSearch) || !merged.HasSource(core.SourceRelated) {
		t.Errorf("sources = %v", merged.Sources)
	}
	if rctx.Diag.Duplicates != 1 {
		t.Errorf("Duplicates = %d", rctx.Diag.Duplicates)
	}
}

func TestFanoutDedupIsIdempotent(t *testing.T) {
	fanout := &Fanout{Sources: []Source{
		&stubSource{name: core.SourceSearch, candidates: []*core.Candidate{
			named("Ochre", core.SourceSearch, 20),
			named("Plaid", core.SourceSearch, 33),
		}},
		&stubSource{name: core.SourceRelated, candidates: []*core.Candidate{
			named("ochre", core.SourceRelated, 15),
		}},
	}}

	rctx := core.NewRecommendContext(core.Preferences{})
	pool, err := fanout.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	duplicatesAfterFirst := rctx.Diag.Duplicates

	// 已去重的池再过一遍合并必须原样返回
	again := fanout.merge(rctx, [][]*core.Candidate{pool})
	if len(again) != len(pool) {
		t.Fatalf("second merge changed pool size: %d -> %d", len(pool), len(again))
	}
	for i := range pool {
		if again[i] != pool[i] {
			t.Errorf("pool[%d] replaced on second merge", i)
		}
		if again[i].Name != pool[i].Name || again[i].Popularity != pool[i].Popularity {
			t.Errorf("pool[%d] mutated: %+v", i, again[i])
		}
	}
	if rctx.Diag.Duplicates != duplicatesAfterFirst {
		t.Errorf("Duplicates = %d, second merge of a deduped pool must not count new ones", rctx.Diag.Duplicates)
	}
}

func TestFanoutSourceFailureIsSoft(t *testing.T) {
	fanout := &Fanout{Sources: []Source{
		&stubSource{name: core.SourceSearch, err: errors.New("catalog down")},
		&stubSource{name: core.SourceRelated, candidates: []*core.Candidate{
			named("Bibio", core.SourceRelated, 34),
		}},
	}}

	rctx := core.NewRecommendContext(core.Preferences{})
	out, err := fanout.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("source failure must not fail the fanout: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Bibio" {
		t.Errorf("out = %v", out)
	}
	if rctx.Diag.SkippedCalls != 1 {
		t.Errorf("SkippedCalls = %d", rctx.Diag.SkippedCalls)
	}
}

func TestFanoutNoSources(t *testing.T) {
	fanout := &Fanout{}
	out, err := fanout.Process(context.Background(), core.NewRecommendContext(core.Preferences{}), nil)
	if err != nil || out != nil {
		t.Errorf("out=%v err=%v", out, err)
	}
}
