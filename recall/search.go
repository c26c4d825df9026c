package recall

import (
	"context"
	"fmt"

	"github.com/adheep04/algorhythmn/core"
)

// SearchSource 是检索词召回源：对 Query Generator 产出的每个检索词
// 调用目录检索，产出 source=search 的候选。
// 单个查询失败（超时/限流重试耗尽）记录后跳过，不中断整个来源。
type SearchSource struct {
	Catalog core.CatalogClient
	Cfg     core.Config
}

func (s *SearchSource) Name() string { return core.SourceSearch }

func (s *SearchSource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Candidate, error) {
	if s.Catalog == nil {
		return nil, nil
	}
	g := &gate{Catalog: s.Catalog, Cfg: s.Cfg}

	var out []*core.Candidate
	for _, query := range rctx.Queries {
		results, err := s.Catalog.SearchArtists(ctx, query, s.Cfg.MaxResultsPerQuery)
		if err != nil {
			rctx.Diag.IncSkippedCalls()
			rctx.Diag.AddNote(fmt.Sprintf("search_skipped:%s", query))
			continue
		}
		rctx.Diag.AddRaw(core.SourceSearch, len(results))
		for _, raw := range results {
			if c := g.admit(ctx, rctx, raw, core.SourceSearch, query); c != nil {
				out = append(out, c)
			}
		}
	}
	return out, nil
}
