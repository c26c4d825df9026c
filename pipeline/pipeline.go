package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/adheep04/algorhythmn/core"
)

// Pipeline 是核心抽象：把推荐逻辑拆成可组合的 Node 链
// （Recall → Filter → Enrich → Rank → ReRank）。
type Pipeline struct {
	Nodes []Node

	// Logger 可选；缺省为 Nop，不产生任何输出。
	Logger zerolog.Logger
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	cur := candidates
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			p.Logger.Error().
				Str("node", node.Name()).
				Str("kind", string(node.Kind())).
				Err(err).
				Msg("pipeline node failed")
			return nil, err
		}
		p.Logger.Debug().
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Msg("pipeline node done")
		cur = next
	}
	return cur, nil
}
