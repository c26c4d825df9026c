package recall

import (
	"context"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pkg/utils"
)

// queryModifiers 是确定性查询生成的固定修饰词集。
var queryModifiers = []string{
	"underground",
	"experimental",
	"emerging",
	"new",
	"independent",
}

// defaultQuery 是画像与偏好都提供不了词项时的兜底查询。
const defaultQuery = "underground experimental music"

// QueryGenerator 从口味画像确定性地派生检索词：
// 词项（genres + scenes + moods + liked descriptors）× 固定修饰词，
// 外加 EraPreferences 作为时代修饰；大小写不敏感去重，截断到 MaxQueries。
//
// 可选地（ExpandWithLLM 开启时）追加推理服务建议的查询变体（不含艺人名），
// 扩展结果按画像签名缓存；扩展调用失败静默退回确定性集合。
// 同一画像 + 同一开关状态下输出完全确定——可复现测试依赖这一点。
type QueryGenerator struct {
	Cfg       core.Config
	Reasoning core.ReasoningClient // 仅 ExpandWithLLM 时使用，可为 nil
	Cache     core.Store           // 扩展结果缓存，可为 nil
}

// Generate 产出有序检索词序列。
func (g *QueryGenerator) Generate(ctx context.Context, rctx *core.RecommendContext) []string {
	maxQueries := g.Cfg.MaxQueries
	if maxQueries <= 0 {
		maxQueries = 40
	}

	terms := rctx.Profile.Terms()
	if len(terms) == 0 {
		// 画像为空时退回 loved/liked 艺人名
		terms = rctx.Preferences.Love
		if len(terms) == 0 {
			terms = rctx.Preferences.Like
		}
	}

	modifiers := append([]string(nil), queryModifiers...)
	if rctx.Profile != nil {
		// 时代偏好充当附加修饰词（"90s shoegaze" 之类的时间变体）
		modifiers = append(modifiers, rctx.Profile.EraPreferences...)
	}

	seen := make(map[string]struct{}, maxQueries)
	queries := make([]string, 0, maxQueries)
	appendQuery := func(q string) bool {
		q = strings.TrimSpace(q)
		if q == "" {
			return len(queries) < maxQueries
		}
		key := strings.ToLower(q)
		if _, ok := seen[key]; ok {
			return len(queries) < maxQueries
		}
		seen[key] = struct{}{}
		queries = append(queries, q)
		return len(queries) < maxQueries
	}

outer:
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		for _, modifier := range modifiers {
			if !appendQuery(modifier + " " + term) {
				break outer
			}
		}
	}

	if g.Cfg.ExpandWithLLM && g.Reasoning != nil && len(queries) < maxQueries {
		for _, q := range g.expand(ctx, rctx, queries) {
			if !appendQuery(q) {
				break
			}
		}
	}

	if len(queries) == 0 {
		queries = append(queries, defaultQuery)
	}
	return queries
}

// expand 调用推理服务扩展查询，结果按画像签名缓存；失败返回空集（fail-soft）。
// 建议中出现任何偏好艺人名的变体会被剔除——扩展只产查询词，不产艺人名。
func (g *QueryGenerator) expand(ctx context.Context, rctx *core.RecommendContext, base []string) []string {
	cacheKey := utils.CacheKey(core.CacheNSQueries, "expansion", rctx.Profile.StableSignature())

	if g.Cache != nil {
		if data, err := g.Cache.Get(ctx, cacheKey); err == nil {
			var cached []string
			if json.Unmarshal(data, &cached) == nil {
				return cached
			}
		}
	}

	expanded, err := g.Reasoning.ExpandQueries(ctx, rctx.Profile, base)
	if err != nil {
		rctx.Diag.IncSkippedCalls()
		rctx.Diag.AddNote("query_expansion_skipped")
		return nil
	}

	prefNames := rctx.Preferences.AllNormNames()
	accepted := make([]string, 0, len(expanded))
	for _, q := range expanded {
		if utils.MatchesAny(utils.NormalizeName(q), prefNames) {
			continue
		}
		accepted = append(accepted, q)
	}

	if g.Cache != nil {
		if data, err := json.Marshal(accepted); err == nil {
			_ = g.Cache.Set(ctx, cacheKey, data, g.Cfg.CacheTTLSeconds)
		}
	}
	return accepted
}
