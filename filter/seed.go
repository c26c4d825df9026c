package filter

import (
	"context"

	"github.com/adheep04/algorhythmn/core"
)

// SeedFilter 过滤掉打分种子清单里的主流艺人。
// 种子清单用于冷启动打分页，本身都是高热度艺人，推荐它们没有发现价值。
type SeedFilter struct{}

func (f *SeedFilter) Name() string {
	return "filter.seed"
}

func (f *SeedFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil {
		return true, nil
	}
	return core.IsSeedArtist(c.Name), nil
}
