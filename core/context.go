package core

import (
	"sync"

	"github.com/adheep04/algorhythmn/pkg/utils"
)

// RecommendContext 承载一次推荐请求的偏好、画像与运行态信息，贯穿整个 Pipeline 透传。
// 除 Diag（内部带锁）外，各字段在 Pipeline 运行期间只读。
type RecommendContext struct {
	// Preferences 是规范化后的用户偏好
	Preferences Preferences

	// Profile 是口味画像（Taste Profiler 产出；推理服务不可用时为启发式画像）
	Profile *TasteProfile

	// Queries 是本次运行生成的检索词（Query Generator 产出，供召回与诊断使用）
	Queries []string

	// LovedEmbeddings / HatedEmbeddings 是参考向量（富化阶段填充，排序阶段消费）
	LovedEmbeddings []Embedding
	HatedEmbeddings []Embedding

	// Weights 是学习到的维度权重（排序阶段写入一次，之后只读）
	Weights DimensionWeights

	// Scored 是排序阶段的打分结果，与当前候选序列一一对应（重排阶段消费）
	Scored []*ScoredCandidate

	// Slate / Backlog 是多样性选取的产出：终选集与排序后的未选候补
	Slate   []*ScoredCandidate
	Backlog []*ScoredCandidate

	// Labels 是请求级标签，可驱动 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数（market、实验开关等）
	Params map[string]any

	// Diag 收集各阶段的诊断计数，并发安全
	Diag *Diagnostics
}

// NewRecommendContext 创建一个带空诊断的上下文。
func NewRecommendContext(prefs Preferences) *RecommendContext {
	return &RecommendContext{
		Preferences: prefs.Normalized(),
		Params:      make(map[string]any),
		Diag:        NewDiagnostics(),
	}
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// Diagnostics 收集各阶段的降级与过滤计数，用于结果的可解释性与测试断言。
// 召回 fan-out 阶段并发写入，内部以互斥锁保护；序列化时仅导出计数字段。
type Diagnostics struct {
	mu sync.Mutex

	Queries            []string       `json:"queries,omitempty"`
	SourceCounts       map[string]int `json:"source_counts"`       // 去重后每来源新增候选数
	RawReturned        map[string]int `json:"raw_returned"`        // 每来源原始返回数
	PopularityFiltered int            `json:"popularity_filtered"` // 超过流行度阈值被丢弃
	FollowersFiltered  int            `json:"followers_filtered"`  // 低于粉丝下限被丢弃
	Duplicates         int            `json:"duplicates"`          // 合并进既有候选的次数
	SkippedCalls       int            `json:"skipped_calls"`       // 软失败跳过的外部调用数
	RateLimitRetries   int            `json:"rate_limit_retries"`  // 限流重试次数
	HeuristicFallbacks int            `json:"heuristic_fallbacks"` // 富化启发式兜底次数
	ProfileFallback    bool           `json:"profile_fallback"`    // 画像是否走了启发式兜底
	TrimmedCount       int            `json:"trimmed_count"`       // 候选池截断丢弃数
	TotalCandidates    int            `json:"total_candidates"`    // 截断后的候选池大小
	ScoredCandidates   int            `json:"scored_candidates"`   // 完成打分的候选数
	DiversityScore     float64        `json:"diversity_score"`     // 终选集的平均两两距离
	Notes              []string       `json:"notes,omitempty"`
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		SourceCounts: make(map[string]int),
		RawReturned:  make(map[string]int),
	}
}

// AddRaw 累加某来源的原始返回数。
func (d *Diagnostics) AddRaw(source string, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.RawReturned[source] += n
}

// AddSourceCount 累加某来源去重后的新增候选数。
func (d *Diagnostics) AddSourceCount(source string, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.SourceCounts[source] += n
}

// IncPopularityFiltered 记录一次流行度过滤。
func (d *Diagnostics) IncPopularityFiltered() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.PopularityFiltered++
}

// IncFollowersFiltered 记录一次粉丝数过滤。
func (d *Diagnostics) IncFollowersFiltered() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.FollowersFiltered++
}

// IncDuplicates 记录一次去重合并。
func (d *Diagnostics) IncDuplicates() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Duplicates++
}

// IncSkippedCalls 记录一次软失败跳过。
func (d *Diagnostics) IncSkippedCalls() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.SkippedCalls++
}

// AddRateLimitRetries 累加限流重试次数。
func (d *Diagnostics) AddRateLimitRetries(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.RateLimitRetries += n
}

// IncHeuristicFallbacks 记录一次富化启发式兜底。
func (d *Diagnostics) IncHeuristicFallbacks() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.HeuristicFallbacks++
}

// AddNote 追加一条诊断说明。
func (d *Diagnostics) AddNote(note string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Notes = append(d.Notes, note)
}
