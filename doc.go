// Package algorhythmn 是一个地下艺人推荐引擎（underground artist discovery）。
//
// 设计要点：
//   - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Enrich → Rank → ReRank）
//   - 两段式入口: GenerateCandidates 产出候选池，RankCandidates 产出终选集，
//     两段可独立调用、候选池可序列化落盘
//   - 降级优先: 推理、音频特征、目录服务任一不可用时走启发式兜底，不中断链路
package algorhythmn

import "github.com/adheep04/algorhythmn/pipeline"

// 轻量 facade：便于用户直接 import "algorhythmn" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall   = pipeline.KindRecall
	KindFilter   = pipeline.KindFilter
	KindEnrich   = pipeline.KindEnrich
	KindRank     = pipeline.KindRank
	KindReRank   = pipeline.KindReRank
	KindAssemble = pipeline.KindAssemble
)
