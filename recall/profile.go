package recall

import (
	"context"

	json "github.com/goccy/go-json"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pkg/utils"
)

// Profiler 负责获取口味画像：优先读缓存（偏好哈希为 key），
// 其次调用推理服务并规范化，失败或返回不可解析结构时落到启发式兜底画像。
// 对不确定的 LLM 输出采取 schema 校验 + 兜底策略，不做重试。
type Profiler struct {
	Reasoning core.ReasoningClient // 可为 nil（直接走兜底）
	Cache     core.Store           // 可为 nil
	Cfg       core.Config
}

// Obtain 返回本次偏好对应的口味画像，永不失败。
// rctx.Diag.ProfileFallback 标记是否走了兜底路径。
func (p *Profiler) Obtain(ctx context.Context, rctx *core.RecommendContext) *core.TasteProfile {
	cacheKey := utils.CacheKey(core.CacheNSTasteProfile, rctx.Preferences.Hash())

	if p.Cache != nil {
		if data, err := p.Cache.Get(ctx, cacheKey); err == nil {
			var cached core.TasteProfile
			if json.Unmarshal(data, &cached) == nil && cached.Valid() {
				return &cached
			}
		}
	}

	profile := p.fetch(ctx, rctx)

	if p.Cache != nil {
		if data, err := json.Marshal(profile); err == nil {
			_ = p.Cache.Set(ctx, cacheKey, data, p.Cfg.CacheTTLSeconds)
		}
	}
	return profile
}

func (p *Profiler) fetch(ctx context.Context, rctx *core.RecommendContext) *core.TasteProfile {
	if p.Reasoning == nil {
		rctx.Diag.ProfileFallback = true
		return core.FallbackProfile(rctx.Preferences)
	}

	response, err := p.Reasoning.GenerateTasteProfile(ctx, rctx.Preferences)
	if err != nil {
		rctx.Diag.ProfileFallback = true
		rctx.Diag.AddNote("profile_unavailable")
		return core.FallbackProfile(rctx.Preferences)
	}

	profile := core.ProfileFromResponse(response)
	if !profile.Valid() {
		// 结构可解析但无可用词项，同样视为 schema 校验失败
		rctx.Diag.ProfileFallback = true
		rctx.Diag.AddNote("profile_rejected")
		return core.FallbackProfile(rctx.Preferences)
	}
	return profile
}
