package recall

import (
	"context"
	"sort"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pipeline"
)

// Trim 是候选池截断 Node：超过 TargetCandidates 时按
// (popularity 升序, 规范名) 保留最"地下"的一批。
// 带重叠标记的候选是强制保留项——它们的向量要驱动排斥打分，
// 即使因此略超目标大小也不丢弃。
type Trim struct {
	Target int
}

func (n *Trim) Name() string        { return "recall.trim" }
func (n *Trim) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *Trim) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	target := n.Target
	if target <= 0 {
		target = 100
	}
	if len(candidates) <= target {
		rctx.Diag.TotalCandidates = len(candidates)
		return candidates, nil
	}

	var mandatory, optional []*core.Candidate
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if c.OverlapsDislike || c.OverlapsHate {
			mandatory = append(mandatory, c)
		} else {
			optional = append(optional, c)
		}
	}

	sort.SliceStable(optional, func(i, j int) bool {
		if optional[i].Popularity != optional[j].Popularity {
			return optional[i].Popularity < optional[j].Popularity
		}
		return optional[i].NormName() < optional[j].NormName()
	})

	remaining := target - len(mandatory)
	if remaining < 0 {
		remaining = 0
	}
	if remaining > len(optional) {
		remaining = len(optional)
	}

	out := append(mandatory, optional[:remaining]...)
	rctx.Diag.TrimmedCount = len(candidates) - len(out)
	rctx.Diag.TotalCandidates = len(out)
	return out, nil
}
