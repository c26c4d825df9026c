package algorhythmn

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/feature"
	"github.com/adheep04/algorhythmn/filter"
	"github.com/adheep04/algorhythmn/pipeline"
	"github.com/adheep04/algorhythmn/rank"
	"github.com/adheep04/algorhythmn/recall"
	"github.com/adheep04/algorhythmn/rerank"
)

// Deps 聚合两个入口所需的外部依赖。除 Cfg 外均可为 nil：
// 缺失的客户端对应能力降级（召回源空转、富化走启发式兜底），不中断链路。
type Deps struct {
	Catalog   core.CatalogClient
	Features  core.AudioFeatureClient
	Reasoning core.ReasoningClient
	Cache     core.Store
	Cfg       core.Config // 零值时使用 DefaultConfig
	Logger    zerolog.Logger
}

func (d Deps) config() core.Config {
	if d.Cfg == (core.Config{}) {
		return core.DefaultConfig()
	}
	return d.Cfg
}

// retryCounter 是目录客户端的可选能力：累计限流重试次数。
type retryCounter interface {
	RateLimitRetries() int64
}

func retrySnapshot(deps Deps) int64 {
	if rc, ok := deps.Catalog.(retryCounter); ok {
		return rc.RateLimitRetries()
	}
	return 0
}

// GenerateCandidates 是第一个入口：从偏好出发产出候选池。
// 流程：口味画像 → 检索词生成 → 三来源并发召回 → 种子过滤 →
// 重叠标记 → 截断。候选池可序列化，供 RankCandidates 独立消费。
// 聚合后一个候选都不剩时返回 ErrEmptyCandidatePool，这是唯一的硬失败。
func GenerateCandidates(ctx context.Context, prefs core.Preferences, deps Deps) (*core.CandidatePool, error) {
	cfg := deps.config()
	rctx := core.NewRecommendContext(prefs)

	before := retrySnapshot(deps)

	profiler := &recall.Profiler{Reasoning: deps.Reasoning, Cache: deps.Cache, Cfg: cfg}
	rctx.Profile = profiler.Obtain(ctx, rctx)

	generator := &recall.QueryGenerator{Cfg: cfg, Reasoning: deps.Reasoning, Cache: deps.Cache}
	rctx.Queries = generator.Generate(ctx, rctx)
	rctx.Diag.Queries = rctx.Queries

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Fanout{
				Sources: []recall.Source{
					&recall.SearchSource{Catalog: deps.Catalog, Cfg: cfg},
					&recall.RelatedSource{Catalog: deps.Catalog, Cfg: cfg},
					&recall.CrossSource{Catalog: deps.Catalog, Cfg: cfg},
				},
			},
			&filter.FilterNode{Filters: []filter.Filter{&filter.SeedFilter{}}},
			&filter.OverlapFlagger{Fuzzy: true},
			&recall.Trim{Target: cfg.TargetCandidates},
		},
		Logger: deps.Logger,
	}

	candidates, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	if delta := retrySnapshot(deps) - before; delta > 0 {
		rctx.Diag.AddRateLimitRetries(int(delta))
	}

	if len(candidates) == 0 {
		return nil, core.ErrEmptyCandidatePool
	}

	return &core.CandidatePool{
		Profile:     rctx.Profile,
		Candidates:  candidates,
		Diagnostics: rctx.Diag,
	}, nil
}

// RankCandidates 是第二个入口：对候选池做富化、打分与多样性选取，产出终选集。
// 流程：重叠标记（对反序列化候选池幂等重打）→ 向量富化 → 口味打分 →
// MMR 多样性选取 → 结果组装。候选池为空返回 ErrEmptyCandidatePool。
func RankCandidates(ctx context.Context, prefs core.Preferences, pool *core.CandidatePool, deps Deps) (*core.RecommendationResult, error) {
	if pool == nil || len(pool.Candidates) == 0 {
		return nil, core.ErrEmptyCandidatePool
	}
	cfg := deps.config()
	rctx := core.NewRecommendContext(prefs)
	rctx.Profile = pool.Profile
	if pool.Diagnostics != nil {
		rctx.Diag = pool.Diagnostics
	}

	before := retrySnapshot(deps)

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&filter.OverlapFlagger{Fuzzy: true},
			&feature.EnrichNode{
				Catalog:   deps.Catalog,
				Features:  deps.Features,
				Reasoning: deps.Reasoning,
				Cache:     deps.Cache,
				Cfg:       cfg,
			},
			&rank.TasteNode{},
			&rerank.Diversity{Lambda: cfg.DiversityWeight, Target: cfg.TargetRecommendations},
		},
		Logger: deps.Logger,
	}

	slate, err := p.Run(ctx, rctx, pool.Candidates)
	if err != nil {
		return nil, err
	}

	if delta := retrySnapshot(deps) - before; delta > 0 {
		rctx.Diag.AddRateLimitRetries(int(delta))
	}

	return &core.RecommendationResult{
		Recommendations: rctx.Slate,
		Backlog:         rctx.Backlog,
		Weights:         rctx.Weights,
		SourceCoverage:  core.Coverage(slate),
		Diagnostics:     rctx.Diag,
		Metadata: map[string]any{
			"taste_profile":   rctx.Profile,
			"dimension_order": core.Dimensions(),
		},
	}, nil
}

// Recommend 一次性跑完两段：生成候选池并立即排序。
func Recommend(ctx context.Context, prefs core.Preferences, deps Deps) (*core.RecommendationResult, error) {
	pool, err := GenerateCandidates(ctx, prefs, deps)
	if err != nil {
		return nil, err
	}
	return RankCandidates(ctx, prefs, pool, deps)
}
