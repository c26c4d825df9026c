package pipeline

import (
	"context"

	"github.com/adheep04/algorhythmn/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall   Kind = "recall"   // 召回阶段：聚合候选艺人
	KindFilter   Kind = "filter"   // 过滤/标记阶段：流行度门槛、偏好重叠标记
	KindEnrich   Kind = "enrich"   // 富化阶段：补齐 8 维向量与参考向量
	KindRank     Kind = "rank"     // 排序阶段：学习权重并按聚合得分排序
	KindReRank   Kind = "rerank"   // 重排阶段：MMR 多样性选取与来源覆盖
	KindAssemble Kind = "assemble" // 组装阶段：最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 candidates -> 输出 candidates"的形态，方便召回生成、
// 过滤标记、重排截断等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		candidates []*core.Candidate,
	) ([]*core.Candidate, error)
}
