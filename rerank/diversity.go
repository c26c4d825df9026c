package rerank

import (
	"context"
	"math"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/model"
	"github.com/adheep04/algorhythmn/pipeline"
	"github.com/adheep04/algorhythmn/pkg/utils"
)

// newSourceBonus 是首次引入新发现来源时的 MMR 加分，鼓励来源覆盖。
const newSourceBonus = 0.05

// Diversity 是贪心 MMR（Maximal Marginal Relevance）多样性选取节点。
//
// 打了 overlaps_dislike / overlaps_hate 标记的候选不参与选取，
// 无论多样性权重取什么值都不会进入终选集。
//
// 选取规则（逐个贪心，天然有序有状态）：
//  1. 聚合分先做 min-max 归一到 [0,1]
//  2. final = (1-λ) * base + λ * min_distance_to_selected
//     其中 min_distance_to_selected 是到已选集合的最小加权距离（首个候选取 1）
//  3. 首次引入新来源加 newSourceBonus
//  4. 选满 Target 或池子耗尽为止
//
// 选取后做来源覆盖兜底：若某来源在终选集缺席且池中仍有该来源的合格候选，
// 用它替换超额来源中排名最低的已选项。
//
// 产出写入 rctx.Slate / rctx.Backlog，并上报终选集的平均两两距离。
type Diversity struct {
	// Lambda 是多样性权重 λ，越大越偏向多样性。取值被钳到 [0,1]。
	Lambda float64

	// Target 是终选集大小，<=0 时取默认值 30
	Target int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(rctx.Scored) == 0 {
		return candidates, nil
	}

	target := n.Target
	if target <= 0 {
		target = core.DefaultConfig().TargetRecommendations
	}
	lambda := core.Clamp01(n.Lambda)

	m := model.NewTasteModel(rctx.Weights)

	// 合格池：未被负向标记的候选，保持排序阶段给出的顺序
	eligible := make([]*core.ScoredCandidate, 0, len(rctx.Scored))
	for _, sc := range rctx.Scored {
		if sc == nil || sc.Candidate == nil {
			continue
		}
		if sc.Candidate.OverlapsHate || sc.Candidate.OverlapsDislike {
			continue
		}
		eligible = append(eligible, sc)
	}

	selected := n.selectGreedy(eligible, m, lambda, target)
	selected = n.ensureCoverage(selected, eligible, m)

	// Slate 按选取顺序，Backlog 按排序顺序排除已选项
	inSlate := make(map[*core.ScoredCandidate]bool, len(selected))
	for _, sc := range selected {
		inSlate[sc] = true
		sc.Candidate.PutLabel("selected", utils.Label{Value: "true", Source: n.Name()})
	}
	backlog := make([]*core.ScoredCandidate, 0, len(rctx.Scored)-len(selected))
	for _, sc := range rctx.Scored {
		if sc == nil || inSlate[sc] {
			continue
		}
		backlog = append(backlog, sc)
	}

	rctx.Slate = selected
	rctx.Backlog = backlog
	rctx.Diag.DiversityScore = meanPairwiseDistance(selected, m)

	out := make([]*core.Candidate, len(selected))
	for i, sc := range selected {
		out[i] = sc.Candidate
	}
	return out, nil
}

// selectGreedy 执行贪心 MMR 主循环。
func (n *Diversity) selectGreedy(
	eligible []*core.ScoredCandidate,
	m *model.TasteModel,
	lambda float64,
	target int,
) []*core.ScoredCandidate {
	if len(eligible) == 0 {
		return nil
	}

	// 聚合分 min-max 归一，保证与距离同量纲
	minScore, maxScore := eligible[0].AggregateScore, eligible[0].AggregateScore
	for _, sc := range eligible[1:] {
		if sc.AggregateScore < minScore {
			minScore = sc.AggregateScore
		}
		if sc.AggregateScore > maxScore {
			maxScore = sc.AggregateScore
		}
	}
	scoreRange := maxScore - minScore
	if scoreRange < 1e-6 {
		scoreRange = 1e-6
	}

	selected := make([]*core.ScoredCandidate, 0, target)
	selectedSources := make(map[string]bool)
	remaining := make([]*core.ScoredCandidate, len(eligible))
	copy(remaining, eligible)

	for len(remaining) > 0 && len(selected) < target {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i, sc := range remaining {
			base := (sc.AggregateScore - minScore) / scoreRange

			diversity := 1.0
			if len(selected) > 0 {
				minDist := math.Inf(1)
				for _, picked := range selected {
					d := m.WeightedDistance(sc.Candidate.Embedding, picked.Candidate.Embedding)
					if d < minDist {
						minDist = d
					}
				}
				diversity = core.Clamp01(minDist)
			}

			final := (1-lambda)*base + lambda*diversity
			if !coversSelectedSource(sc.Candidate, selectedSources) {
				final += newSourceBonus
			}

			// 平手保持 remaining 的既有顺序（排序阶段的确定性顺序）
			if final > bestScore {
				bestScore = final
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}
		pick := remaining[bestIdx]
		selected = append(selected, pick)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		for _, s := range pick.Candidate.Sources {
			selectedSources[s] = true
		}
	}

	return selected
}

// ensureCoverage 做来源覆盖兜底：缺席来源若有合格候选，
// 替换超额来源中排名最低的已选项。
func (n *Diversity) ensureCoverage(
	selected, eligible []*core.ScoredCandidate,
	m *model.TasteModel,
) []*core.ScoredCandidate {
	if len(selected) == 0 {
		return selected
	}

	inSlate := make(map[*core.ScoredCandidate]bool, len(selected))
	coverage := make(map[string]int)
	for _, sc := range selected {
		inSlate[sc] = true
		for _, s := range sc.Candidate.Sources {
			coverage[s]++
		}
	}

	for _, source := range []string{core.SourceSearch, core.SourceRelated, core.SourceCross} {
		if coverage[source] > 0 {
			continue
		}

		// 缺席来源的最佳合格候选（eligible 已按聚合分有序）
		var substitute *core.ScoredCandidate
		for _, sc := range eligible {
			if !inSlate[sc] && sc.Candidate.HasSource(source) {
				substitute = sc
				break
			}
		}
		if substitute == nil {
			continue
		}

		// 被替换者：超额来源中排名最低（slate 尾部起）且移除后不产生新缺口
		victimIdx := -1
		for i := len(selected) - 1; i >= 0; i-- {
			if removable(selected[i].Candidate, coverage) {
				victimIdx = i
				break
			}
		}
		if victimIdx < 0 {
			continue
		}

		victim := selected[victimIdx]
		delete(inSlate, victim)
		for _, s := range victim.Candidate.Sources {
			coverage[s]--
		}
		selected[victimIdx] = substitute
		inSlate[substitute] = true
		for _, s := range substitute.Candidate.Sources {
			coverage[s]++
		}
	}

	return selected
}

// removable 判断移除该候选是否会让某个已覆盖来源清零。
func removable(c *core.Candidate, coverage map[string]int) bool {
	for _, s := range c.Sources {
		if coverage[s] <= 1 {
			return false
		}
	}
	return true
}

func coversSelectedSource(c *core.Candidate, selectedSources map[string]bool) bool {
	if len(selectedSources) == 0 {
		return true
	}
	for _, s := range c.Sources {
		if selectedSources[s] {
			return true
		}
	}
	return false
}

// meanPairwiseDistance 计算终选集的平均两两加权距离，单元素集合取 1。
func meanPairwiseDistance(selected []*core.ScoredCandidate, m *model.TasteModel) float64 {
	if len(selected) == 0 {
		return 0
	}
	if len(selected) == 1 {
		return 1
	}
	var sum float64
	var count int
	for i, a := range selected {
		for _, b := range selected[i+1:] {
			sum += m.WeightedDistance(a.Candidate.Embedding, b.Candidate.Embedding)
			count++
		}
	}
	return core.Clamp01(sum / float64(count))
}
