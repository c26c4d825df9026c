package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pkg/utils"
)

// rateLimitMaxRetries 是单次请求命中 429 后的重试上限。
// 超限后该次调用以 RATE_LIMITED 软失败上抛，由召回源跳过。
const rateLimitMaxRetries = 3

// CatalogHTTP 是目录检索服务（Spotify 风格 Web API）的客户端实现。
//
// 协议约定：
//   - client_credentials 换取 token，过期前 30 秒主动刷新
//   - 401 刷新 token 后重试一次
//   - 429 按服务端 Retry-After 退避重试，最多 rateLimitMaxRetries 次
//   - 404（相关艺人/详情）视为空结果而不是错误
//
// 外部 payload 在此层规范化为 core.RawArtist，核心不接触上游 schema。
type CatalogHTTP struct {
	// TokenURL / APIBase 服务端点
	TokenURL string
	APIBase  string

	// ClientID / ClientSecret 是 client_credentials 凭证
	ClientID     string
	ClientSecret string

	// Market 检索市场（默认 "US"）
	Market string

	// Timeout 超时时间
	Timeout time.Duration

	// Logger 结构化日志
	Logger zerolog.Logger

	// Brainz 是音频特征端点不可用时的兜底查询客户端（可选）
	Brainz *AcousticBrainzClient

	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time

	rateLimitRetries atomic.Int64
}

// NewCatalogHTTP 创建一个新的目录服务客户端。
func NewCatalogHTTP(clientID, clientSecret string, opts ...CatalogOption) *CatalogHTTP {
	c := &CatalogHTTP{
		TokenURL:     "https://accounts.spotify.com/api/token",
		APIBase:      "https://api.spotify.com/v1",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Market:       "US",
		Timeout:      30 * time.Second,
		Logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{Timeout: c.Timeout}
	return c
}

// CatalogOption 目录客户端配置选项
type CatalogOption func(*CatalogHTTP)

// WithCatalogEndpoints 设置服务端点（测试中指向 httptest.Server）
func WithCatalogEndpoints(tokenURL, apiBase string) CatalogOption {
	return func(c *CatalogHTTP) {
		c.TokenURL = tokenURL
		c.APIBase = apiBase
	}
}

// WithCatalogMarket 设置检索市场
func WithCatalogMarket(market string) CatalogOption {
	return func(c *CatalogHTTP) {
		c.Market = market
	}
}

// WithCatalogTimeout 设置超时时间
func WithCatalogTimeout(timeout time.Duration) CatalogOption {
	return func(c *CatalogHTTP) {
		c.Timeout = timeout
	}
}

// WithCatalogLogger 设置日志
func WithCatalogLogger(logger zerolog.Logger) CatalogOption {
	return func(c *CatalogHTTP) {
		c.Logger = logger
	}
}

// WithCatalogBrainz 设置 AcousticBrainz 兜底客户端
func WithCatalogBrainz(brainz *AcousticBrainzClient) CatalogOption {
	return func(c *CatalogHTTP) {
		c.Brainz = brainz
	}
}

// RateLimitRetries 返回累计的限流重试次数（诊断用）。
func (c *CatalogHTTP) RateLimitRetries() int64 {
	return c.rateLimitRetries.Load()
}

// SearchArtists 实现 core.CatalogClient 接口。
func (c *CatalogHTTP) SearchArtists(ctx context.Context, query string, limit int) ([]core.RawArtist, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "artist")
	params.Set("limit", strconv.Itoa(limit))

	var result struct {
		Artists struct {
			Items []json.RawMessage `json:"items"`
		} `json:"artists"`
	}
	if err := c.request(ctx, "/search", params, &result); err != nil {
		return nil, err
	}
	return parseArtists(result.Artists.Items), nil
}

// RelatedArtists 实现 core.CatalogClient 接口；404 返回空结果。
func (c *CatalogHTTP) RelatedArtists(ctx context.Context, artistID string) ([]core.RawArtist, error) {
	var result struct {
		Artists []json.RawMessage `json:"artists"`
	}
	err := c.request(ctx, "/artists/"+artistID+"/related-artists", nil, &result)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return parseArtists(result.Artists), nil
}

// ArtistByName 实现 core.CatalogClient 接口：检索后优先精确规范名匹配。
func (c *CatalogHTTP) ArtistByName(ctx context.Context, name string) (*core.RawArtist, error) {
	results, err := c.SearchArtists(ctx, name, 5)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	target := utils.NormalizeName(name)
	for i := range results {
		if utils.NormalizeName(results[i].Name) == target {
			return &results[i], nil
		}
	}
	return &results[0], nil
}

// Artist 实现 core.CatalogClient 接口；404 返回 nil。
func (c *CatalogHTTP) Artist(ctx context.Context, artistID string) (*core.RawArtist, error) {
	if artistID == "" {
		return nil, nil
	}
	var raw json.RawMessage
	if err := c.request(ctx, "/artists/"+artistID, nil, &raw); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	artist := parseArtist(raw)
	if artist == nil {
		return nil, nil
	}
	return artist, nil
}

// request 发送带认证的 GET 请求并解析 JSON 响应。
// 处理 401 刷新重试与 429 退避重试。
func (c *CatalogHTTP) request(ctx context.Context, path string, params url.Values, out any) error {
	var tokenRefreshed bool
	var rateRetries int

	for {
		token, err := c.ensureToken(ctx)
		if err != nil {
			return fmt.Errorf("catalog token: %w", err)
		}

		endpoint := c.APIBase + path
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, err.Error())
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized && !tokenRefreshed:
			resp.Body.Close()
			c.invalidateToken()
			tokenRefreshed = true
			continue

		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			if rateRetries >= rateLimitMaxRetries {
				return core.ErrRateLimited
			}
			rateRetries++
			c.rateLimitRetries.Add(1)
			c.Logger.Debug().
				Str("path", path).
				Int("attempt", rateRetries).
				Dur("retry_after", retryAfter).
				Msg("catalog rate limited, backing off")
			select {
			case <-time.After(retryAfter):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue

		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound, "catalog: not found")

		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable,
				fmt.Sprintf("catalog: status=%d body=%s", resp.StatusCode, string(body)))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

// ensureToken 返回有效 token，必要时用 client_credentials 换取。
func (c *CatalogHTTP) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.ClientID, c.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint: status=%d body=%s", resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token endpoint: empty access_token")
	}

	expiresIn := payload.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	c.token = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn-30) * time.Second)
	return c.token, nil
}

func (c *CatalogHTTP) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func parseRetryAfter(header string) time.Duration {
	retryAfter := time.Second
	if header != "" {
		if secs, err := strconv.ParseFloat(header, 64); err == nil {
			retryAfter = time.Duration(secs * float64(time.Second))
		}
	}
	if retryAfter < 500*time.Millisecond {
		retryAfter = 500 * time.Millisecond
	}
	return retryAfter
}

func isNotFound(err error) bool {
	domainErr := core.GetDomainError(err)
	return domainErr != nil && domainErr.Code == core.ErrorCodeNotFound
}

// parseArtist 把上游 artist payload 规范化为 RawArtist。
func parseArtist(data json.RawMessage) *core.RawArtist {
	var payload struct {
		ID         string   `json:"id"`
		Name       string   `json:"name"`
		Popularity int      `json:"popularity"`
		Genres     []string `json:"genres"`
		Followers  struct {
			Total int `json:"total"`
		} `json:"followers"`
		Markets []string `json:"available_markets"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	if payload.ID == "" || payload.Name == "" {
		return nil
	}

	var raw map[string]any
	_ = json.Unmarshal(data, &raw)

	return &core.RawArtist{
		ID:         payload.ID,
		Name:       payload.Name,
		Popularity: payload.Popularity,
		Followers:  payload.Followers.Total,
		Genres:     payload.Genres,
		Markets:    payload.Markets,
		Raw:        raw,
	}
}

func parseArtists(items []json.RawMessage) []core.RawArtist {
	out := make([]core.RawArtist, 0, len(items))
	for _, item := range items {
		if artist := parseArtist(item); artist != nil {
			out = append(out, *artist)
		}
	}
	return out
}

var _ core.CatalogClient = (*CatalogHTTP)(nil)
