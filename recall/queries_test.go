package recall

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/adheep04/algorhythmn/core"
)

func newTestContext(prefs core.Preferences, profile *core.TasteProfile) *core.RecommendContext {
	rctx := core.NewRecommendContext(prefs)
	rctx.Profile = profile
	return rctx
}

func TestQueryGeneratorDeterministic(t *testing.T) {
	profile := &core.TasteProfile{Genres: []string{"idm", "ambient"}}
	g := &QueryGenerator{Cfg: core.DefaultConfig()}

	first := g.Generate(context.Background(), newTestContext(core.Preferences{}, profile))
	second := g.Generate(context.Background(), newTestContext(core.Preferences{}, profile))
	if !reflect.DeepEqual(first, second) {
		t.Error("same profile must yield identical queries")
	}
	if first[0] != "underground idm" {
		t.Errorf("first query = %q", first[0])
	}
}

func TestQueryGeneratorCap(t *testing.T) {
	profile := &core.TasteProfile{
		Genres: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
	}
	cfg := core.DefaultConfig()
	cfg.MaxQueries = 12
	g := &QueryGenerator{Cfg: cfg}

	queries := g.Generate(context.Background(), newTestContext(core.Preferences{}, profile))
	if len(queries) != 12 {
		t.Errorf("len(queries) = %d, want 12", len(queries))
	}
}

func TestQueryGeneratorEraModifiers(t *testing.T) {
	profile := &core.TasteProfile{
		Genres:         []string{"shoegaze"},
		EraPreferences: []string{"90s"},
	}
	g := &QueryGenerator{Cfg: core.DefaultConfig()}
	queries := g.Generate(context.Background(), newTestContext(core.Preferences{}, profile))

	var found bool
	for _, q := range queries {
		if q == "90s shoegaze" {
			found = true
		}
	}
	if !found {
		t.Errorf("era modifier missing from %v", queries)
	}
}

func TestQueryGeneratorEmptyProfileFallsBackToLoved(t *testing.T) {
	g := &QueryGenerator{Cfg: core.DefaultConfig()}
	rctx := newTestContext(core.Preferences{Love: []string{"Autechre"}}, &core.TasteProfile{})
	queries := g.Generate(context.Background(), rctx)
	if len(queries) == 0 || !strings.HasSuffix(queries[0], "Autechre") {
		t.Errorf("queries = %v", queries)
	}
}

func TestQueryGeneratorDefault(t *testing.T) {
	g := &QueryGenerator{Cfg: core.DefaultConfig()}
	queries := g.Generate(context.Background(), newTestContext(core.Preferences{}, &core.TasteProfile{}))
	if len(queries) != 1 || queries[0] != defaultQuery {
		t.Errorf("queries = %v", queries)
	}
}

type stubReasoning struct {
	profile map[string]any
	queries []string
	scores  map[string]float64
	err     error
}

func (s *stubReasoning) GenerateTasteProfile(context.Context, core.Preferences) (map[string]any, error) {
	return s.profile, s.err
}

func (s *stubReasoning) ExpandQueries(context.Context, *core.TasteProfile, []string) ([]string, error) {
	return s.queries, s.err
}

func (s *stubReasoning) ScoreSubjective(context.Context, core.ArtistContext) (map[string]float64, error) {
	return s.scores, s.err
}

func TestQueryGeneratorExpansionRejectsArtistNames(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.ExpandWithLLM = true
	g := &QueryGenerator{
		Cfg:       cfg,
		Reasoning: &stubReasoning{queries: []string{"braindance compilation", "Aphex Twin"}},
	}
	rctx := newTestContext(
		core.Preferences{Love: []string{"Aphex Twin"}},
		&core.TasteProfile{Genres: []string{"idm"}},
	)
	queries := g.Generate(context.Background(), rctx)

	for _, q := range queries {
		if q == "Aphex Twin" {
			t.Error("expansion must not emit preference artist names")
		}
	}
	var expanded bool
	for _, q := range queries {
		if q == "braindance compilation" {
			expanded = true
		}
	}
	if !expanded {
		t.Errorf("expanded query missing from %v", queries)
	}
}

func TestQueryGeneratorExpansionFailSoft(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.ExpandWithLLM = true
	g := &QueryGenerator{
		Cfg:       cfg,
		Reasoning: &stubReasoning{err: errors.New("boom")},
	}
	rctx := newTestContext(core.Preferences{}, &core.TasteProfile{Genres: []string{"idm"}})
	queries := g.Generate(context.Background(), rctx)
	if len(queries) == 0 {
		t.Fatal("deterministic queries must survive expansion failure")
	}
	if rctx.Diag.SkippedCalls != 1 {
		t.Errorf("SkippedCalls = %d", rctx.Diag.SkippedCalls)
	}
}
