package filter

import (
	"context"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pipeline"
	"github.com/adheep04/algorhythmn/pkg/utils"
)

// OverlapFlagger 把与用户负反馈清单重名的候选打上 overlaps_dislike /
// overlaps_hate 标记。被打标的候选保留在池中而不是移除：
// 它们的向量在排序阶段作为排斥锚点，缺了它们排斥项无从计算。
//
// 匹配规则：规范化名完全相等，或长度足够的子串模糊匹配
// （"mbv" 不命中 "my bloody valentine"，"valentine" 命中）。
type OverlapFlagger struct {
	// Fuzzy 为 true 时启用子串模糊匹配，默认只做精确匹配
	Fuzzy bool
}

func (n *OverlapFlagger) Name() string {
	return "filter.overlap"
}

func (n *OverlapFlagger) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *OverlapFlagger) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if rctx == nil || len(candidates) == 0 {
		return candidates, nil
	}

	dislike := rctx.Preferences.NormNameSet(core.BucketDislike)
	hate := rctx.Preferences.NormNameSet(core.BucketHate)
	if len(dislike) == 0 && len(hate) == 0 {
		return candidates, nil
	}

	for _, c := range candidates {
		if c == nil {
			continue
		}
		norm := c.NormName()
		if n.matches(norm, dislike) {
			c.OverlapsDislike = true
			c.PutLabel("overlap", utils.Label{Value: "dislike", Source: n.Name()})
		}
		if n.matches(norm, hate) {
			c.OverlapsHate = true
			c.PutLabel("overlap", utils.Label{Value: "hate", Source: n.Name()})
		}
	}

	return candidates, nil
}

func (n *OverlapFlagger) matches(norm string, set map[string]struct{}) bool {
	if _, ok := set[norm]; ok {
		return true
	}
	if !n.Fuzzy {
		return false
	}
	return utils.MatchesAny(norm, set)
}
