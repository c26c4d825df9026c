package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/pkg/conv"
)

// ReasoningHTTP 是推理服务（消息式 LLM API）的客户端实现。
//
// 协议约定：
//   - 429 / 500 / 503 线性退避重试（1.5s * 次数），最多 MaxRetries 次
//   - 响应文本中截取首个 '{' 到最后一个 '}' 之间的片段再做 JSON 解析，
//     兼容模型在 JSON 前后输出说明文字的情况
//   - 输出是不透明数据：schema 校验在 core 层做，失败即走启发式兜底
type ReasoningHTTP struct {
	// Endpoint 消息接口端点
	Endpoint string

	// APIKey 鉴权密钥
	APIKey string

	// ProfileModel / ExpansionModel / ScoringModel 各任务使用的模型
	// 主观打分量大，默认用轻量模型
	ProfileModel   string
	ExpansionModel string
	ScoringModel   string

	// MaxRetries 重试上限
	MaxRetries int

	// Timeout 超时时间
	Timeout time.Duration

	// Logger 结构化日志
	Logger zerolog.Logger

	httpClient *http.Client
}

// NewReasoningHTTP 创建一个新的推理服务客户端。
func NewReasoningHTTP(apiKey string, opts ...ReasoningOption) *ReasoningHTTP {
	c := &ReasoningHTTP{
		Endpoint:       "https://api.anthropic.com/v1/messages",
		APIKey:         apiKey,
		ProfileModel:   "claude-3-5-sonnet-20241022",
		ExpansionModel: "claude-3-5-sonnet-20241022",
		ScoringModel:   "claude-3-haiku-20240307",
		MaxRetries:     3,
		Timeout:        60 * time.Second,
		Logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{Timeout: c.Timeout}
	return c
}

// ReasoningOption 推理客户端配置选项
type ReasoningOption func(*ReasoningHTTP)

// WithReasoningEndpoint 设置服务端点
func WithReasoningEndpoint(endpoint string) ReasoningOption {
	return func(c *ReasoningHTTP) {
		c.Endpoint = endpoint
	}
}

// WithReasoningModels 设置各任务的模型
func WithReasoningModels(profile, expansion, scoring string) ReasoningOption {
	return func(c *ReasoningHTTP) {
		c.ProfileModel = profile
		c.ExpansionModel = expansion
		c.ScoringModel = scoring
	}
}

// WithReasoningRetries 设置重试上限
func WithReasoningRetries(n int) ReasoningOption {
	return func(c *ReasoningHTTP) {
		c.MaxRetries = n
	}
}

// WithReasoningLogger 设置日志
func WithReasoningLogger(logger zerolog.Logger) ReasoningOption {
	return func(c *ReasoningHTTP) {
		c.Logger = logger
	}
}

// GenerateTasteProfile 实现 core.ReasoningClient 接口。
func (c *ReasoningHTTP) GenerateTasteProfile(ctx context.Context, prefs core.Preferences) (map[string]any, error) {
	buckets := make(map[string][]string)
	for _, bucket := range []string{core.BucketLove, core.BucketLike, core.BucketDislike, core.BucketHate} {
		if values := prefs.Bucket(bucket); len(values) > 0 {
			buckets[bucket] = values
		}
	}
	userContent, _ := json.Marshal(map[string]any{"preferences": buckets})

	return c.call(ctx, c.ProfileModel,
		"You are a music taste analyst. Respond using valid JSON with keys: "+
			"genres, scenes, moods, liked_descriptors, avoided_descriptors, era_preferences.",
		string(userContent))
}

// ExpandQueries 实现 core.ReasoningClient 接口。
func (c *ReasoningHTTP) ExpandQueries(ctx context.Context, profile *core.TasteProfile, base []string) ([]string, error) {
	payload := map[string]any{
		"instruction": "Given this taste profile and existing queries, suggest additional search queries " +
			"that would surface underground or emerging artists. Make them diverse and non-redundant. " +
			"Never suggest artist names.",
		"context": map[string]any{
			"taste_profile": profileContext(profile),
			"base_queries":  base,
		},
	}
	userContent, _ := json.Marshal(payload)

	response, err := c.call(ctx, c.ExpansionModel,
		"You are a music discovery strategist. Respond with JSON containing a 'queries' array.",
		string(userContent))
	if err != nil {
		return nil, err
	}

	rawQueries, ok := response["queries"].([]any)
	if !ok {
		return nil, nil
	}
	queries := make([]string, 0, len(rawQueries))
	for _, q := range rawQueries {
		if s, ok := q.(string); ok && strings.TrimSpace(s) != "" {
			queries = append(queries, strings.TrimSpace(s))
		}
	}
	return queries, nil
}

// ScoreSubjective 实现 core.ReasoningClient 接口。
func (c *ReasoningHTTP) ScoreSubjective(ctx context.Context, artist core.ArtistContext) (map[string]float64, error) {
	dims := core.SubjectiveDimensions()
	payload := map[string]any{
		"artist":        artist.Name,
		"genres":        artist.Genres,
		"dimensions":    dims,
		"taste_profile": profileContext(artist.Profile),
		"notes":         "Score each dimension from 0 to 1 where 0 is absent and 1 is extreme.",
	}
	userContent, _ := json.Marshal(payload)

	response, err := c.call(ctx, c.ScoringModel,
		"You evaluate artists on subjective attributes. Respond with JSON containing keys: "+
			strings.Join(dims, ", ")+".",
		string(userContent))
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(dims))
	for _, dim := range dims {
		if v, ok := conv.ToFloat64(response[dim]); ok {
			scores[dim] = core.Clamp01(v)
		} else {
			scores[dim] = 0
		}
	}
	return scores, nil
}

// call 发送一次消息请求并解析文本内容中的 JSON。
func (c *ReasoningHTTP) call(ctx context.Context, model, systemPrompt, userContent string) (map[string]any, error) {
	body, err := json.Marshal(map[string]any{
		"model":      model,
		"system":     systemPrompt,
		"max_tokens": 1024,
		"messages": []map[string]string{
			{"role": "user", "content": userContent},
		},
	})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(float64(attempt)*1.5) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		text, status, err := c.post(ctx, body)
		if err != nil {
			lastErr = err
			continue
		}
		if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
			lastErr = core.NewDomainError(core.ModuleReasoning, core.ErrorCodeUnavailable,
				fmt.Sprintf("reasoning: status=%d", status))
			c.Logger.Debug().Int("status", status).Int("attempt", attempt+1).Msg("reasoning call retrying")
			continue
		}
		if status != http.StatusOK {
			return nil, core.NewDomainError(core.ModuleReasoning, core.ErrorCodeUnavailable,
				fmt.Sprintf("reasoning: status=%d", status))
		}

		parsed, err := extractJSON(text)
		if err != nil {
			lastErr = err
			continue
		}
		return parsed, nil
	}

	return nil, core.NewDomainError(core.ModuleReasoning, core.ErrorCodeUnavailable,
		fmt.Sprintf("reasoning: call failed after %d attempts: %v", c.MaxRetries, lastErr))
}

// post 发送请求并拼接响应中的全部文本块。
func (c *ReasoningHTTP) post(ctx context.Context, body []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, core.NewDomainError(core.ModuleReasoning, core.ErrorCodeUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode, nil
	}

	var payload struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", resp.StatusCode, err
	}

	var sb strings.Builder
	for _, block := range payload.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", resp.StatusCode, fmt.Errorf("reasoning: response contained no text content")
	}
	return text, resp.StatusCode, nil
}

// extractJSON 截取首个 '{' 到最后一个 '}' 之间的片段做 JSON 解析。
func extractJSON(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("reasoning: no JSON object in response")
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("reasoning: parse response: %w", err)
	}
	return parsed, nil
}

// profileContext 把画像转成推理请求里的上下文对象。
func profileContext(profile *core.TasteProfile) map[string]any {
	if profile == nil {
		return nil
	}
	if len(profile.Raw) > 0 {
		return profile.Raw
	}
	return map[string]any{
		"genres": profile.Genres,
		"scenes": profile.Scenes,
		"moods":  profile.Moods,
	}
}

var _ core.ReasoningClient = (*ReasoningHTTP)(nil)
