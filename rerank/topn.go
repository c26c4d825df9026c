package rerank

import (
	"context"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个候选。
// 通常在排序（Rank）节点之后使用，用于限制进入多样性选取的池子规模。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.TasteNode{},        // 排序
//	        &rerank.TopNNode{N: 50},  // 截取 Top 50
//	        &rerank.Diversity{...},   // 多样性选取
//	    },
//	}
type TopNNode struct {
	// N 要保留的候选数量（Top N）
	// 如果 N <= 0，则返回所有候选（不截断）
	// 如果 N > len(candidates)，则返回所有候选
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	// 如果 N <= 0，不截断，返回所有候选
	if n.N <= 0 {
		return candidates, nil
	}

	if n.N >= len(candidates) {
		return candidates, nil
	}

	// 打分结果与候选序列保持一一对应
	if len(rctx.Scored) == len(candidates) {
		rctx.Scored = rctx.Scored[:n.N]
	}
	return candidates[:n.N], nil
}
