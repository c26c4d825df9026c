package filter

import (
	"context"

	"github.com/adheep04/algorhythmn/core"
)

// Filter 是过滤器的抽象接口，用于判断一个候选是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
//
// 注意：与用户负反馈（dislike/hate）重名的候选不走 Filter，
// 它们由 OverlapFlagger 打标后保留，其向量在排序阶段驱动排斥项。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断候选是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, c *core.Candidate) (bool, error)
}
