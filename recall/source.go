package recall

import (
	"context"

	"github.com/adheep04/algorhythmn/core"
)

// Source 表示一个可复用的发现来源（search / related / cross）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
//
// 失败约定：单次外部调用失败由来源自行记录（Diag.IncSkippedCalls）并跳过，
// Recall 只在不可恢复时返回 error；fan-out 对 error 同样按软失败处理。
// 确定性约定：来源内部必须按输入顺序（查询序 / loved 序）依次产出候选，
// 不依赖外部调用的完成顺序。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Candidate, error)
}
