package core

// Config 是推荐链路的运行参数，零值无意义，请从 DefaultConfig 出发修改。
type Config struct {
	// PopularityThreshold 候选的流行度上限（超过即非"地下"，早期过滤）
	PopularityThreshold int

	// MinFollowers 候选的粉丝数下限（过滤无人问津的噪声记录）
	MinFollowers int

	// TargetCandidates 候选池目标大小（截断上限；重叠标记候选不受截断影响）
	TargetCandidates int

	// TargetRecommendations 终选集目标大小
	TargetRecommendations int

	// MaxQueries 生成检索词的上限
	MaxQueries int

	// MaxResultsPerQuery 单次检索返回条数上限
	MaxResultsPerQuery int

	// MaxCrossPairs 交叉融合召回的 loved 艺人对数上限（防组合爆炸）
	MaxCrossPairs int

	// DiversityWeight MMR 中多样性项的权重 λ ∈ [0,1]
	DiversityWeight float64

	// MinSourceCoverage 每个来源在终选集中的期望最低覆盖
	MinSourceCoverage int

	// CacheTTLSeconds 缓存默认过期秒数
	CacheTTLSeconds int

	// MaxRetries 限流重试上限（单次外部调用）
	MaxRetries int

	// ExpandWithLLM 是否启用 LLM 查询扩展（失败时静默退回确定性查询集）
	ExpandWithLLM bool
}

// DefaultConfig 返回默认运行参数。
func DefaultConfig() Config {
	return Config{
		PopularityThreshold:   35,
		MinFollowers:          15000,
		TargetCandidates:      100,
		TargetRecommendations: 30,
		MaxQueries:            40,
		MaxResultsPerQuery:    50,
		MaxCrossPairs:         10,
		DiversityWeight:       0.3,
		MinSourceCoverage:     5,
		CacheTTLSeconds:       3600,
		MaxRetries:            3,
	}
}

// 缓存命名空间常量（utils.CacheKey 的第一段）。
const (
	CacheNSTasteProfile  = "taste_profile"
	CacheNSQueries       = "queries"
	CacheNSSearch        = "search"
	CacheNSArtist        = "artist"
	CacheNSAudioFeatures = "audio_features"
	CacheNSEmbeddings    = "embeddings"
)
