package recall

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pipeline"
	"github.com/adheep04/algorhythmn/pkg/utils"
)

// Fanout 是聚合 Node：并发执行多个发现来源，按来源声明序确定性合并。
//
// 确定性：各来源结果先写入按索引预分配的槽位，全部完成后再按
// Sources 顺序合并，合并结果与调用完成顺序无关，后续平手规则才可复现。
// 去重：以规范名为键；碰撞时调用 Candidate.Merge（来源并集、
// 最小 popularity、最完整元数据）。
type Fanout struct {
	Sources       []Source
	Timeout       time.Duration // 每个来源的超时时间（0 表示不限制）
	MaxConcurrent int           // 最大并发数（0 表示无限制）
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	// 每个来源一个槽位，完成顺序不影响合并顺序
	results := make([][]*core.Candidate, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		idx, s := i, src
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			candidates, err := s.Recall(recallCtx, rctx)
			if err != nil {
				// 来源整体失败按软失败处理：记录后置空，不中断其他来源
				rctx.Diag.IncSkippedCalls()
				rctx.Diag.AddNote("source_failed:" + s.Name())
				return nil
			}
			for _, c := range candidates {
				c.PutLabel("recall_source", utils.Label{Value: s.Name(), Source: "recall"})
			}
			results[idx] = candidates
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return n.merge(rctx, results), nil
}

// merge 按来源声明序 + 来源内产出序合并全部候选，规范名碰撞时就地合并。
func (n *Fanout) merge(rctx *core.RecommendContext, results [][]*core.Candidate) []*core.Candidate {
	seen := make(map[string]*core.Candidate)
	var out []*core.Candidate

	for _, batch := range results {
		for _, c := range batch {
			if c == nil {
				continue
			}
			key := c.NormName()
			if key == "" {
				continue
			}
			if existing, ok := seen[key]; ok {
				existing.Merge(c)
				rctx.Diag.IncDuplicates()
				continue
			}
			seen[key] = c
			out = append(out, c)
			if len(c.Sources) > 0 {
				rctx.Diag.AddSourceCount(c.Sources[0], 1)
			}
		}
	}
	return out
}
