package model

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/adheep04/algorhythmn/core"
)

// 排斥项中的固定加罚。命中 hate 清单的加罚显著高于 dislike。
const (
	hateOverlapPenalty    = 1.0
	dislikeOverlapPenalty = 0.5
)

// TasteModel 是基于加权欧氏距离的口味打分模型。
//
// 所有距离都使用学习到的维度权重（权重和为 1，各维度取值在 [0,1]），
// 因此距离天然落在 [0,1] 区间，1-距离 即为有界的相似度：
//   - similarity = 1 - min(加权距离到任一挚爱向量)
//   - penalty    = (1 - min(加权距离到任一厌恶向量)) + 重叠加罚
//   - aggregate  = clamp(similarity - penalty, -1, 1)
//
// 没有参考向量时相似项 / 排斥项取中性值（0.5 / 0）。
type TasteModel struct {
	Weights core.DimensionWeights
}

// NewTasteModel 创建打分模型；weights 为空时使用均匀权重。
func NewTasteModel(weights core.DimensionWeights) *TasteModel {
	if len(weights) == 0 {
		weights = core.UniformWeights()
	}
	return &TasteModel{Weights: weights}
}

func (m *TasteModel) Name() string { return "taste" }

// WeightedDistance 计算两个向量之间的加权欧氏距离。
// d = sqrt(sum(w_i * (a_i - b_i)^2))，取值范围 [0,1]。
func (m *TasteModel) WeightedDistance(a, b core.Embedding) float64 {
	var sum float64
	for dim, w := range m.Weights {
		d := a[dim] - b[dim]
		sum += w * d * d
	}
	return math.Sqrt(sum)
}

// MinDistance 返回到一组参考向量的最小加权距离。
// 参考集为空时返回中性值 0.5。
func (m *TasteModel) MinDistance(e core.Embedding, refs []core.Embedding) float64 {
	if len(refs) == 0 {
		return 0.5
	}
	min := math.Inf(1)
	for _, ref := range refs {
		if d := m.WeightedDistance(e, ref); d < min {
			min = d
		}
	}
	return min
}

// Score 对单个候选打分。
// loved/hated 是参考向量集（hated 含直接 hate 打分与 overlaps_hate 候选的向量）。
func (m *TasteModel) Score(c *core.Candidate, loved, hated []core.Embedding) *core.ScoredCandidate {
	distLoved := m.MinDistance(c.Embedding, loved)
	similarity := 1 - distLoved

	var penalty float64
	if len(hated) > 0 {
		penalty = 1 - m.MinDistance(c.Embedding, hated)
	}
	if c.OverlapsHate {
		penalty += hateOverlapPenalty
	} else if c.OverlapsDislike {
		penalty += dislikeOverlapPenalty
	}

	aggregate := similarity - penalty
	if aggregate > 1 {
		aggregate = 1
	}
	if aggregate < -1 {
		aggregate = -1
	}

	return &core.ScoredCandidate{
		Candidate:       c,
		SimilarityScore: similarity,
		PenaltyScore:    penalty,
		AggregateScore:  aggregate,
		Rationale:       m.rationale(c, loved),
	}
}

// rationale 生成可读的打分依据：贡献最大的两个维度（按 weight * 接近度）。
func (m *TasteModel) rationale(c *core.Candidate, loved []core.Embedding) string {
	if len(loved) == 0 {
		return "no reference embeddings"
	}

	// 找到最近的挚爱向量
	nearest := loved[0]
	best := m.WeightedDistance(c.Embedding, nearest)
	for _, ref := range loved[1:] {
		if d := m.WeightedDistance(c.Embedding, ref); d < best {
			best = d
			nearest = ref
		}
	}

	type contrib struct {
		dim   string
		value float64
	}
	contribs := make([]contrib, 0, core.DimensionCount)
	for dim, w := range m.Weights {
		delta := math.Abs(c.Embedding[dim] - nearest[dim])
		contribs = append(contribs, contrib{dim: dim, value: w * (1 - delta)})
	}
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].value != contribs[j].value {
			return contribs[i].value > contribs[j].value
		}
		return contribs[i].dim < contribs[j].dim
	})

	parts := make([]string, 0, 2)
	for _, ct := range contribs {
		parts = append(parts, fmt.Sprintf("%s=%.2f", ct.dim, ct.value))
		if len(parts) == 2 {
			break
		}
	}

	r := "closest on " + strings.Join(parts, ", ")
	if flags := flagSummary(c); flags != "" {
		r += "; " + flags
	}
	return r
}

func flagSummary(c *core.Candidate) string {
	switch {
	case c.OverlapsHate:
		return "flags=hate"
	case c.OverlapsDislike:
		return "flags=dislike"
	default:
		return ""
	}
}
