package recall

import (
	"context"
	"fmt"

	"github.com/adheep04/algorhythmn/core"
)

// crossResultLimit 是交叉融合查询的单次返回上限：此路召回重在桥接风格，
// 不需要大结果集。
const crossResultLimit = 10

// CrossSource 是交叉融合召回源：对 loved 艺人的无序两两组合构造
// 融合查询（"A B fusion"），挖掘桥接两种风格的艺人，产出 source=cross 的候选。
// 组合数受 MaxCrossPairs 约束，防止 loved 列表较长时的组合爆炸。
type CrossSource struct {
	Catalog core.CatalogClient
	Cfg     core.Config
}

func (s *CrossSource) Name() string { return core.SourceCross }

func (s *CrossSource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Candidate, error) {
	loved := rctx.Preferences.Love
	if s.Catalog == nil || len(loved) < 2 {
		return nil, nil
	}
	g := &gate{Catalog: s.Catalog, Cfg: s.Cfg}

	maxPairs := s.Cfg.MaxCrossPairs
	if maxPairs <= 0 {
		maxPairs = 10
	}

	var out []*core.Candidate
	pairs := 0
	for i := 0; i < len(loved) && pairs < maxPairs; i++ {
		for j := i + 1; j < len(loved) && pairs < maxPairs; j++ {
			pairs++
			query := fmt.Sprintf("%s %s fusion", loved[i], loved[j])
			results, err := s.Catalog.SearchArtists(ctx, query, crossResultLimit)
			if err != nil {
				rctx.Diag.IncSkippedCalls()
				rctx.Diag.AddNote(fmt.Sprintf("cross_skipped:%s", query))
				continue
			}
			rctx.Diag.AddRaw(core.SourceCross, len(results))
			for _, raw := range results {
				if c := g.admit(ctx, rctx, raw, core.SourceCross, query); c != nil {
					out = append(out, c)
				}
			}
		}
	}
	return out, nil
}
