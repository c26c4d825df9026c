package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pkg/utils"
)

// AcousticBrainzClient 是 MusicBrainz + AcousticBrainz 的特征查询客户端。
// 查询链路：曲目名+艺人名 → MusicBrainz MBID → AcousticBrainz high-level 数据。
//
// high-level 数据是分类器概率，按如下规则映射到测量值：
//
//	danceability     = danceability.all.danceable
//	energy           = mood_aggressive.all.aggressive
//	valence          = mood_happy.all.happy
//	acousticness     = mood_acoustic.all.acoustic
//	instrumentalness = voice_instrumental.all.instrumental
//
// 查询结果（含未命中）缓存，避免重复打外部接口。
type AcousticBrainzClient struct {
	// MusicBrainzURL / AcousticBrainzBase 服务端点
	MusicBrainzURL     string
	AcousticBrainzBase string

	// UserAgent 外部服务要求的标识
	UserAgent string

	// Cache 查询缓存（可选）
	Cache core.Store

	// Timeout 超时时间
	Timeout time.Duration

	// Logger 结构化日志
	Logger zerolog.Logger

	httpClient *http.Client
}

// NewAcousticBrainzClient 创建一个新的 AcousticBrainz 客户端。
func NewAcousticBrainzClient(cache core.Store, opts ...BrainzOption) *AcousticBrainzClient {
	c := &AcousticBrainzClient{
		MusicBrainzURL:     "https://musicbrainz.org/ws/2/recording/",
		AcousticBrainzBase: "https://acousticbrainz.org/api/v1",
		UserAgent:          "algorhythmn/0.1 (https://github.com/adheep04/algorhythmn)",
		Cache:              cache,
		Timeout:            15 * time.Second,
		Logger:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{Timeout: c.Timeout}
	return c
}

// BrainzOption AcousticBrainz 客户端配置选项
type BrainzOption func(*AcousticBrainzClient)

// WithBrainzEndpoints 设置服务端点
func WithBrainzEndpoints(musicbrainzURL, acousticbrainzBase string) BrainzOption {
	return func(c *AcousticBrainzClient) {
		c.MusicBrainzURL = musicbrainzURL
		c.AcousticBrainzBase = acousticbrainzBase
	}
}

// WithBrainzLogger 设置日志
func WithBrainzLogger(logger zerolog.Logger) BrainzOption {
	return func(c *AcousticBrainzClient) {
		c.Logger = logger
	}
}

// LookupFeatures 按曲目名与艺人名查询测量值。
// 未命中返回 (nil, nil)；未命中结果同样写缓存。
func (c *AcousticBrainzClient) LookupFeatures(ctx context.Context, trackTitle, artistName string) (map[string]float64, error) {
	if trackTitle == "" || artistName == "" {
		return nil, nil
	}

	cacheKey := utils.CacheKey("acousticbrainz",
		utils.NormalizeName(trackTitle), utils.NormalizeName(artistName))
	if c.Cache != nil {
		if data, err := c.Cache.Get(ctx, cacheKey); err == nil {
			var cached map[string]float64
			if err := json.Unmarshal(data, &cached); err == nil {
				if len(cached) == 0 {
					return nil, nil
				}
				return cached, nil
			}
		}
	}

	mbid, err := c.lookupMBID(ctx, trackTitle, artistName)
	if err != nil {
		return nil, err
	}
	if mbid == "" {
		c.storeCached(ctx, cacheKey, map[string]float64{})
		return nil, nil
	}

	features, err := c.fetchHighLevel(ctx, mbid)
	if err != nil {
		return nil, err
	}
	if features == nil {
		features = map[string]float64{}
	}
	c.storeCached(ctx, cacheKey, features)
	if len(features) == 0 {
		return nil, nil
	}
	return features, nil
}

func (c *AcousticBrainzClient) storeCached(ctx context.Context, key string, features map[string]float64) {
	if c.Cache == nil {
		return
	}
	if data, err := json.Marshal(features); err == nil {
		_ = c.Cache.Set(ctx, key, data)
	}
}

// lookupMBID 按曲目+艺人检索 MusicBrainz 录音 MBID，未命中返回空串。
func (c *AcousticBrainzClient) lookupMBID(ctx context.Context, trackTitle, artistName string) (string, error) {
	params := url.Values{}
	params.Set("query", fmt.Sprintf("recording:%q AND artist:%q", trackTitle, artistName))
	params.Set("fmt", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.MusicBrainzURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", core.NewDomainError(core.ModuleFeature, core.ErrorCodeUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	var payload struct {
		Recordings []struct {
			ID string `json:"id"`
		} `json:"recordings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", nil
	}
	if len(payload.Recordings) == 0 {
		return "", nil
	}
	return payload.Recordings[0].ID, nil
}

// fetchHighLevel 抓取 high-level 数据并提取测量值。
func (c *AcousticBrainzClient) fetchHighLevel(ctx context.Context, mbid string) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.AcousticBrainzBase+"/"+mbid+"/high-level", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var payload struct {
		HighLevel map[string]struct {
			All map[string]float64 `json:"all"`
		} `json:"highlevel"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, nil
	}

	mappings := []struct {
		measure string
		node    string
		label   string
	}{
		{"danceability", "danceability", "danceable"},
		{"energy", "mood_aggressive", "aggressive"},
		{"valence", "mood_happy", "happy"},
		{"acousticness", "mood_acoustic", "acoustic"},
		{"instrumentalness", "voice_instrumental", "instrumental"},
	}

	features := make(map[string]float64)
	for _, m := range mappings {
		node, ok := payload.HighLevel[m.node]
		if !ok {
			continue
		}
		if v, ok := node.All[m.label]; ok {
			features[m.measure] = core.Clamp01(v)
		}
	}
	return features, nil
}
