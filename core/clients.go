package core

import "context"

// RawArtist 是目录服务返回的原始艺人记录。
// 外部 payload 的形态差异在 service 层被规范化到此结构，核心不接触上游 schema。
type RawArtist struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Popularity int            `json:"popularity"`
	Followers  int            `json:"followers"`
	Genres     []string       `json:"genres,omitempty"`
	Markets    []string       `json:"markets,omitempty"`
	Raw        map[string]any `json:"raw,omitempty"`
}

// CatalogClient 是目录检索服务的领域接口（艺人检索、相关艺人、详情）。
//
// 失败约定：单次调用失败返回 DomainError（UNAVAILABLE / RATE_LIMITED），
// 由召回源记录并跳过，不中断整次聚合。
type CatalogClient interface {
	// SearchArtists 按查询词检索艺人
	SearchArtists(ctx context.Context, query string, limit int) ([]RawArtist, error)

	// RelatedArtists 查询相关艺人
	RelatedArtists(ctx context.Context, artistID string) ([]RawArtist, error)

	// ArtistByName 按名字解析艺人（优先精确规范名匹配）
	ArtistByName(ctx context.Context, name string) (*RawArtist, error)

	// Artist 按外部 ID 获取艺人详情（补全 followers 等字段）
	Artist(ctx context.Context, artistID string) (*RawArtist, error)
}

// AudioFeatureClient 是音频特征服务的领域接口。
// 返回命名测量值（energy / danceability / valence / acousticness /
// instrumentalness），各值已归一到 [0,1]；由富化层做维度映射。
type AudioFeatureClient interface {
	// ArtistAudioFeatures 获取某艺人的聚合音频测量值
	ArtistAudioFeatures(ctx context.Context, artistID string) (map[string]float64, error)
}

// ArtistContext 是主观维度推理的输入上下文。
// 携带口味画像使同一次运行内的打分可比。
type ArtistContext struct {
	Name    string        `json:"name"`
	Genres  []string      `json:"genres,omitempty"`
	Sources []string      `json:"sources,omitempty"`
	Profile *TasteProfile `json:"profile,omitempty"`
}

// ReasoningClient 是推理服务（LLM）的领域接口：口味画像提炼、查询扩展、
// 主观维度打分。
//
// 输出跨供应商不确定：核心只把它当作满足 schema 的不透明数据，
// 校验失败即走启发式兜底，不做期望相同输出的重试。
type ReasoningClient interface {
	// GenerateTasteProfile 从偏好列表提炼口味画像（返回动态结构，
	// 由 ProfileFromResponse 规范化）
	GenerateTasteProfile(ctx context.Context, prefs Preferences) (map[string]any, error)

	// ExpandQueries 基于画像扩展检索词（不返回艺人名）
	ExpandQueries(ctx context.Context, profile *TasteProfile, base []string) ([]string, error)

	// ScoreSubjective 为艺人的主观维度打分，返回 [0,1] 的分值
	ScoreSubjective(ctx context.Context, artist ArtistContext) (map[string]float64, error)
}
