package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/model"
	"github.com/adheep04/algorhythmn/pipeline"
	"github.com/adheep04/algorhythmn/pkg/utils"
)

// TasteNode 是口味排序 Node：
// 1. 从挚爱向量学习维度权重（方差倒数，写入 rctx.Weights）
// 2. 用 TasteModel 对每个候选计算相似 / 排斥 / 聚合得分
// 3. 按确定性规则排序：聚合分降序 > 相似分降序 > 来源优先级 > 规范名
//
// 打分结果写入 rctx.Scored，与返回的候选序列一一对应。
// 空候选集是硬失败：池子为空说明召回整体失效，排序无从谈起。
type TasteNode struct{}

func (n *TasteNode) Name() string        { return "rank.taste" }
func (n *TasteNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *TasteNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 {
		return nil, core.ErrEmptyCandidatePool
	}

	weights := model.InverseVarianceWeights(rctx.LovedEmbeddings)
	rctx.Weights = weights

	// hated 参考集 = 直接 hate 打分的向量 + 被打 overlaps_hate 标记的候选向量
	hated := make([]core.Embedding, 0, len(rctx.HatedEmbeddings))
	hated = append(hated, rctx.HatedEmbeddings...)
	for _, c := range candidates {
		if c != nil && c.OverlapsHate && len(c.Embedding) > 0 {
			hated = append(hated, c.Embedding)
		}
	}

	m := model.NewTasteModel(weights)

	scored := make([]*core.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		sc := m.Score(c, rctx.LovedEmbeddings, hated)
		c.PutLabel("rank_model", utils.Label{Value: m.Name(), Source: "rank"})
		c.PutLabel("aggregate_score", utils.Label{
			Value:  fmt.Sprintf("%.4f", sc.AggregateScore),
			Source: "rank",
		})
		scored = append(scored, sc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.AggregateScore != b.AggregateScore {
			return a.AggregateScore > b.AggregateScore
		}
		if a.SimilarityScore != b.SimilarityScore {
			return a.SimilarityScore > b.SimilarityScore
		}
		ra, rb := a.Candidate.BestSourceRank(), b.Candidate.BestSourceRank()
		if ra != rb {
			return ra < rb
		}
		return a.Candidate.NormName() < b.Candidate.NormName()
	})

	out := make([]*core.Candidate, len(scored))
	for i, sc := range scored {
		out[i] = sc.Candidate
	}

	rctx.Scored = scored
	rctx.Diag.ScoredCandidates = len(scored)
	return out, nil
}
