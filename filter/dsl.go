package filter

import (
	"context"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pkg/dsl"
)

// DSLFilter 按 CEL 表达式过滤候选，表达式由配置下发。
// Keep 语义：表达式为 true 保留，false 过滤。
//
// 示例：
//   - `candidate.popularity <= 35` 只保留低热度候选
//   - `"ambient" in candidate.genres || "idm" in candidate.genres`
type DSLFilter struct {
	// Expr 是 CEL 表达式，空表达式表示全部保留
	Expr string
}

func (f *DSLFilter) Name() string {
	return "filter.dsl"
}

func (f *DSLFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil {
		return true, nil
	}
	if f.Expr == "" {
		return false, nil
	}
	keep, err := dsl.NewEval(c, rctx).Evaluate(f.Expr)
	if err != nil {
		// 表达式错误时不误杀候选
		return false, err
	}
	return !keep, nil
}
