package feature

import (
	"context"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pipeline"
	"github.com/adheep04/algorhythmn/pkg/utils"
)

// EnrichNode 是向量富化节点，为每个候选以及用户偏好中的参考艺人
// （love/hate 名单）补齐 8 维向量：
//   - 客观维度由音频特征服务的测量值线性映射（见 applyObjective）
//   - 主观维度由推理服务打分
//   - 任一服务失败时按流派关键词启发式兜底，保证每个向量 8 维齐全
//
// 参考向量写入 rctx.LovedEmbeddings / rctx.HatedEmbeddings，供排序阶段消费。
// 向量与音频测量值都经 Cache 缓存，以规范名 / 外部 ID 为 key。
type EnrichNode struct {
	// Catalog 用于把参考艺人名解析为外部 ID（可选）
	Catalog core.CatalogClient

	// Features 是音频特征服务（可选，缺省全走启发式）
	Features core.AudioFeatureClient

	// Reasoning 是主观维度推理服务（可选）
	Reasoning core.ReasoningClient

	// Cache 是进程级缓存，显式注入（可选）
	Cache core.Store

	// Cfg 提供缓存 TTL 等配置，零值时使用默认配置
	Cfg core.Config

	// MaxConcurrent 是候选富化的并发上限，<=0 时取 8
	MaxConcurrent int
}

func (n *EnrichNode) Name() string {
	return "feature.enrich"
}

func (n *EnrichNode) Kind() pipeline.Kind {
	return pipeline.KindEnrich
}

func (n *EnrichNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.Cfg.CacheTTLSeconds == 0 {
		// 只补缺省 TTL，不覆盖调用方注入的其他配置
		n.Cfg.CacheTTLSeconds = core.DefaultConfig().CacheTTLSeconds
	}

	// 参考向量：挚爱 / 厌恶名单逐个解析并富化
	rctx.LovedEmbeddings = n.referenceEmbeddings(ctx, rctx, rctx.Preferences.Love)
	rctx.HatedEmbeddings = n.referenceEmbeddings(ctx, rctx, rctx.Preferences.Hate)

	if len(candidates) == 0 {
		return candidates, nil
	}

	limit := n.MaxConcurrent
	if limit <= 0 {
		limit = 8
	}

	// 并发富化。每个 goroutine 只写自己的候选，结果顺序与输入一致。
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, c := range candidates {
		if c == nil {
			continue
		}
		c := c
		g.Go(func() error {
			c.Embedding = n.enrichArtist(gctx, rctx, c.ID, c.Name, c.Genres)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return candidates, nil
}

// referenceEmbeddings 为一组参考艺人名构建向量，解析失败的名字跳过。
func (n *EnrichNode) referenceEmbeddings(
	ctx context.Context,
	rctx *core.RecommendContext,
	names []string,
) []core.Embedding {
	embeddings := make([]core.Embedding, 0, len(names))
	for _, name := range names {
		var id string
		var genres []string
		if n.Catalog != nil {
			if raw, err := n.Catalog.ArtistByName(ctx, name); err == nil && raw != nil {
				id = raw.ID
				genres = raw.Genres
			} else if err != nil {
				rctx.Diag.IncSkippedCalls()
				rctx.Diag.AddNote("reference_unresolved:" + utils.NormalizeName(name))
			}
		}
		embeddings = append(embeddings, n.enrichArtist(ctx, rctx, id, name, genres))
	}
	return embeddings
}

// enrichArtist 为单个艺人构建完整向量，优先读缓存。
func (n *EnrichNode) enrichArtist(
	ctx context.Context,
	rctx *core.RecommendContext,
	id, name string,
	genres []string,
) core.Embedding {
	cacheKey := utils.CacheKey(core.CacheNSEmbeddings, utils.NormalizeName(name))
	if cached := n.cachedEmbedding(ctx, cacheKey); cached != nil {
		return cached
	}

	embedding := core.NewEmbedding()
	degraded := false

	if measures := n.audioMeasures(ctx, rctx, id); measures != nil {
		applyObjective(embedding, measures)
	} else {
		degraded = true
	}

	if scores := n.subjectiveScores(ctx, rctx, name, genres); scores != nil {
		for _, dim := range core.SubjectiveDimensions() {
			if v, ok := scores[dim]; ok {
				embedding.Set(dim, v)
			}
		}
	} else {
		degraded = true
	}

	if !embedding.Complete() {
		embedding.FillDefaults(HeuristicDefaults(genres))
		degraded = true
	}
	if degraded {
		rctx.Diag.IncHeuristicFallbacks()
	}

	n.storeEmbedding(ctx, cacheKey, embedding)
	return embedding
}

// audioMeasures 获取音频测量值（带缓存），失败返回 nil。
func (n *EnrichNode) audioMeasures(
	ctx context.Context,
	rctx *core.RecommendContext,
	id string,
) map[string]float64 {
	if n.Features == nil || id == "" {
		return nil
	}

	cacheKey := utils.CacheKey(core.CacheNSAudioFeatures, id)
	if n.Cache != nil {
		if data, err := n.Cache.Get(ctx, cacheKey); err == nil {
			var measures map[string]float64
			if err := json.Unmarshal(data, &measures); err == nil {
				return measures
			}
		}
	}

	measures, err := n.Features.ArtistAudioFeatures(ctx, id)
	if err != nil {
		rctx.Diag.IncSkippedCalls()
		return nil
	}

	if n.Cache != nil {
		if data, err := json.Marshal(measures); err == nil {
			_ = n.Cache.Set(ctx, cacheKey, data, n.Cfg.CacheTTLSeconds)
		}
	}
	return measures
}

// subjectiveScores 调用推理服务为主观维度打分，失败返回 nil。
func (n *EnrichNode) subjectiveScores(
	ctx context.Context,
	rctx *core.RecommendContext,
	name string,
	genres []string,
) map[string]float64 {
	if n.Reasoning == nil {
		return nil
	}
	scores, err := n.Reasoning.ScoreSubjective(ctx, core.ArtistContext{
		Name:    name,
		Genres:  genres,
		Profile: rctx.Profile,
	})
	if err != nil {
		rctx.Diag.IncSkippedCalls()
		return nil
	}
	return scores
}

func (n *EnrichNode) cachedEmbedding(ctx context.Context, key string) core.Embedding {
	if n.Cache == nil {
		return nil
	}
	data, err := n.Cache.Get(ctx, key)
	if err != nil {
		return nil
	}
	var embedding core.Embedding
	if err := json.Unmarshal(data, &embedding); err != nil {
		return nil
	}
	if !embedding.Complete() {
		return nil
	}
	return embedding
}

func (n *EnrichNode) storeEmbedding(ctx context.Context, key string, embedding core.Embedding) {
	if n.Cache == nil {
		return
	}
	if data, err := json.Marshal(embedding); err == nil {
		_ = n.Cache.Set(ctx, key, data, n.Cfg.CacheTTLSeconds)
	}
}

// applyObjective 把音频特征服务的测量值线性映射到客观维度：
//
//	energy     = energy
//	electronic = 1 - acousticness
//	tempo      = danceability
//	vocals     = 1 - instrumentalness
//	darkness   = 1 - valence
//
// 缺失的测量值不写入，留给启发式兜底。
func applyObjective(embedding core.Embedding, measures map[string]float64) {
	if v, ok := measures["energy"]; ok {
		embedding.Set(core.DimEnergy, v)
	}
	if v, ok := measures["acousticness"]; ok {
		embedding.Set(core.DimElectronic, 1-v)
	}
	if v, ok := measures["danceability"]; ok {
		embedding.Set(core.DimTempo, v)
	}
	if v, ok := measures["instrumentalness"]; ok {
		embedding.Set(core.DimVocals, 1-v)
	}
	if v, ok := measures["valence"]; ok {
		embedding.Set(core.DimDarkness, 1-v)
	}
}
