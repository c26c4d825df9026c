package core

// ScoredCandidate 是打分后的候选：相似得分、排斥得分、聚合得分与简短依据。
// AggregateScore 是多样性选取前唯一的排序键。
type ScoredCandidate struct {
	Candidate       *Candidate `json:"candidate"`
	SimilarityScore float64    `json:"similarity_score"`
	PenaltyScore    float64    `json:"penalty_score"`
	AggregateScore  float64    `json:"aggregate_score"`
	Rationale       string     `json:"rationale"`
}

// CandidatePool 是候选生成阶段（第一个入口）的产出。
type CandidatePool struct {
	Profile     *TasteProfile `json:"profile"`
	Candidates  []*Candidate  `json:"candidates"`
	Diagnostics *Diagnostics  `json:"diagnostics"`
}

// RecommendationResult 是排序阶段（第二个入口）的最终产出：
// 终选集、排序后的候补队列、学习到的权重、来源覆盖与诊断计数。
// 纯组合，无额外计算；序列化往返保持选集顺序与各项得分。
type RecommendationResult struct {
	Recommendations []*ScoredCandidate `json:"recommendations"`
	Backlog         []*ScoredCandidate `json:"backlog"`
	Weights         DimensionWeights   `json:"weights"`
	SourceCoverage  map[string]int     `json:"source_coverage"`
	Diagnostics     *Diagnostics       `json:"diagnostics"`
	Metadata        map[string]any     `json:"metadata,omitempty"`
}

// Coverage 统计一组候选的来源覆盖计数。
func Coverage(candidates []*Candidate) map[string]int {
	coverage := make(map[string]int)
	for _, c := range candidates {
		if c == nil {
			continue
		}
		for _, s := range c.Sources {
			coverage[s]++
		}
	}
	return coverage
}
