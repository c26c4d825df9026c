package recall

import (
	"context"
	"fmt"

	"github.com/adheep04/algorhythmn/core"
)

// RelatedSource 是相关艺人召回源：对每个 loved 艺人解析外部 ID，
// 再查询其相关艺人，产出 source=related 的候选。
type RelatedSource struct {
	Catalog core.CatalogClient
	Cfg     core.Config
}

func (s *RelatedSource) Name() string { return core.SourceRelated }

func (s *RelatedSource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Candidate, error) {
	if s.Catalog == nil {
		return nil, nil
	}
	g := &gate{Catalog: s.Catalog, Cfg: s.Cfg}

	var out []*core.Candidate
	for _, name := range rctx.Preferences.Love {
		detail, err := s.Catalog.ArtistByName(ctx, name)
		if err != nil || detail == nil || detail.ID == "" {
			if err != nil {
				rctx.Diag.IncSkippedCalls()
			}
			rctx.Diag.AddNote(fmt.Sprintf("missing_details:%s", name))
			continue
		}
		related, err := s.Catalog.RelatedArtists(ctx, detail.ID)
		if err != nil {
			rctx.Diag.IncSkippedCalls()
			rctx.Diag.AddNote(fmt.Sprintf("related_skipped:%s", name))
			continue
		}
		rctx.Diag.AddRaw(core.SourceRelated, len(related))
		for _, raw := range related {
			if c := g.admit(ctx, rctx, raw, core.SourceRelated, name); c != nil {
				out = append(out, c)
			}
		}
	}
	return out, nil
}
