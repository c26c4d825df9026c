package recall

import (
	"context"

	"github.com/adheep04/algorhythmn/core"
)

// gate 是各来源共享的早期准入检查：payload 规范化 + 流行度/粉丝数门槛。
// followers 缺失时通过详情接口回查一次（结果依赖注入的缓存客户端去重）。
type gate struct {
	Catalog core.CatalogClient
	Cfg     core.Config
}

// admit 将原始记录规范化为 Candidate 并应用早期过滤。
// 不通过门槛时返回 nil（计数记入 rctx.Diag），外部调用失败按软失败处理。
func (g *gate) admit(
	ctx context.Context,
	rctx *core.RecommendContext,
	raw core.RawArtist,
	source, query string,
) *core.Candidate {
	if raw.Name == "" || raw.ID == "" {
		return nil
	}
	if raw.Popularity > g.Cfg.PopularityThreshold {
		rctx.Diag.IncPopularityFiltered()
		return nil
	}

	followers := raw.Followers
	if followers < g.Cfg.MinFollowers && g.Catalog != nil {
		// followers 缺失或偏低时回查详情补全；失败不致命，按原值处理
		detail, err := g.Catalog.Artist(ctx, raw.ID)
		if err != nil {
			rctx.Diag.IncSkippedCalls()
		} else if detail != nil && detail.Followers > followers {
			followers = detail.Followers
		}
	}
	if followers < g.Cfg.MinFollowers {
		rctx.Diag.IncFollowersFiltered()
		return nil
	}

	c := core.NewCandidate(raw.ID, raw.Name)
	c.Popularity = raw.Popularity
	c.Followers = followers
	c.Genres = append(c.Genres, raw.Genres...)
	c.Markets = append(c.Markets, raw.Markets...)
	if raw.Raw != nil {
		c.Meta["raw"] = raw.Raw
	}
	c.AddSource(source, query)
	return c
}
