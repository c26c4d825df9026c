package model

import (
	"math"
	"strings"
	"testing"

	"github.com/adheep04/algorhythmn/core"
)

func TestWeightedDistanceBounds(t *testing.T) {
	m := NewTasteModel(nil)

	same := embWith(map[string]float64{core.DimEnergy: 0.4})
	if d := m.WeightedDistance(same, same.Clone()); d != 0 {
		t.Errorf("distance to self = %v", d)
	}

	zero := core.NewEmbedding()
	for _, dim := range core.Dimensions() {
		zero.Set(dim, 0)
	}
	one := core.NewEmbedding()
	for _, dim := range core.Dimensions() {
		one.Set(dim, 1)
	}
	if d := m.WeightedDistance(zero, one); math.Abs(d-1) > 1e-9 {
		t.Errorf("max distance = %v, want 1", d)
	}
}

func TestMinDistanceEmptyRefs(t *testing.T) {
	m := NewTasteModel(nil)
	if d := m.MinDistance(embWith(nil), nil); d != 0.5 {
		t.Errorf("MinDistance(empty refs) = %v, want neutral 0.5", d)
	}
}

func TestScoreSimilarity(t *testing.T) {
	m := NewTasteModel(nil)
	loved := []core.Embedding{embWith(map[string]float64{core.DimEnergy: 0.9})}

	close := core.NewCandidate("1", "Close")
	close.Embedding = embWith(map[string]float64{core.DimEnergy: 0.88})
	far := core.NewCandidate("2", "Far")
	far.Embedding = embWith(map[string]float64{core.DimEnergy: 0.1})

	sc := m.Score(close, loved, nil)
	sf := m.Score(far, loved, nil)
	if sc.AggregateScore <= sf.AggregateScore {
		t.Errorf("closer candidate must score higher: %v vs %v", sc.AggregateScore, sf.AggregateScore)
	}
	if sc.PenaltyScore != 0 {
		t.Errorf("no hated refs, penalty = %v", sc.PenaltyScore)
	}
}

func TestScoreHatePenaltyOutweighsDislike(t *testing.T) {
	m := NewTasteModel(nil)
	loved := []core.Embedding{embWith(nil)}

	base := core.NewCandidate("1", "Base")
	base.Embedding = embWith(nil)
	disliked := core.NewCandidate("2", "Disliked")
	disliked.Embedding = embWith(nil)
	disliked.OverlapsDislike = true
	hated := core.NewCandidate("3", "Hated")
	hated.Embedding = embWith(nil)
	hated.OverlapsHate = true
	both := core.NewCandidate("4", "Both")
	both.Embedding = embWith(nil)
	both.OverlapsDislike = true
	both.OverlapsHate = true

	sBase := m.Score(base, loved, nil)
	sDis := m.Score(disliked, loved, nil)
	sHate := m.Score(hated, loved, nil)
	sBoth := m.Score(both, loved, nil)

	if !(sBase.AggregateScore > sDis.AggregateScore && sDis.AggregateScore > sHate.AggregateScore) {
		t.Errorf("ordering base=%v dislike=%v hate=%v", sBase.AggregateScore, sDis.AggregateScore, sHate.AggregateScore)
	}
	// hate 优先，不叠加 dislike 的加罚
	if sBoth.PenaltyScore != sHate.PenaltyScore {
		t.Errorf("both=%v hate=%v, hate takes precedence", sBoth.PenaltyScore, sHate.PenaltyScore)
	}
}

func TestScoreAggregateClamped(t *testing.T) {
	m := NewTasteModel(nil)
	hatedRef := embWith(nil)

	c := core.NewCandidate("1", "Worst")
	c.Embedding = hatedRef.Clone() // 与厌恶向量完全重合
	c.OverlapsHate = true

	s := m.Score(c, []core.Embedding{embWith(map[string]float64{core.DimEnergy: 1})}, []core.Embedding{hatedRef})
	if s.AggregateScore < -1 || s.AggregateScore > 1 {
		t.Errorf("aggregate out of range: %v", s.AggregateScore)
	}
	if s.AggregateScore != -1 {
		t.Errorf("fully repelled candidate should clamp to -1, got %v", s.AggregateScore)
	}
}

func TestScoreRationale(t *testing.T) {
	m := NewTasteModel(nil)

	c := core.NewCandidate("1", "X")
	c.Embedding = embWith(nil)
	if got := m.Score(c, nil, nil).Rationale; got != "no reference embeddings" {
		t.Errorf("rationale = %q", got)
	}

	c.OverlapsHate = true
	s := m.Score(c, []core.Embedding{embWith(nil)}, nil)
	if !strings.HasPrefix(s.Rationale, "closest on ") || !strings.Contains(s.Rationale, "flags=hate") {
		t.Errorf("rationale = %q", s.Rationale)
	}
}
