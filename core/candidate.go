package core

import "github.com/adheep04/algorhythmn/pkg/utils"

// 发现来源常量。决定确定性平手规则中的优先级（search > related > cross）。
const (
	SourceSearch  = "search"  // 检索词召回
	SourceRelated = "related" // 相关艺人召回
	SourceCross   = "cross"   // 交叉融合召回
)

// SourceRank 返回来源的优先级序号（越小越优先），未知来源排在最后。
func SourceRank(source string) int {
	switch source {
	case SourceSearch:
		return 0
	case SourceRelated:
		return 1
	case SourceCross:
		return 2
	default:
		return 3
	}
}

// Candidate 是召回链路中的统一承载结构：候选艺人的元信息、来源、标记、向量。
// 以 NormName()（小写规范名）作为一次运行内的唯一键；去重合并只通过 Merge 进行。
// 富化（Embedding 写入）开始之后不再修改除 Embedding/Labels 以外的字段。
type Candidate struct {
	ID         string   `json:"id"`         // 目录服务返回的外部 ID
	Name       string   `json:"name"`       // 展示名
	Popularity int      `json:"popularity"` // 0-100，目录服务上报
	Followers  int      `json:"followers"`
	Genres     []string `json:"genres,omitempty"`
	Markets    []string `json:"markets,omitempty"`

	// Sources 按首次出现顺序记录发现来源；SourceQueries 记录命中的查询词。
	Sources       []string `json:"sources"`
	SourceQueries []string `json:"source_queries,omitempty"`

	// 与用户负向偏好的重叠标记。命中后保留而非剔除：
	// 其向量用于后续的排斥得分，最终选取时才被排除。
	OverlapsDislike bool `json:"overlaps_dislike"`
	OverlapsHate    bool `json:"overlaps_hate"`

	Embedding Embedding              `json:"embedding,omitempty"`
	Meta      map[string]any         `json:"meta,omitempty"`
	Labels    map[string]utils.Label `json:"labels,omitempty"`
}

func NewCandidate(id, name string) *Candidate {
	return &Candidate{
		ID:   id,
		Name: name,
		Meta: make(map[string]any),
	}
}

// NormName 返回去重用的规范名（trim + 小写）。
func (c *Candidate) NormName() string {
	return utils.NormalizeName(c.Name)
}

// AddSource 记录一次发现来源与命中查询（均去重，保持首次出现顺序）。
func (c *Candidate) AddSource(source, query string) {
	if source != "" && !contains(c.Sources, source) {
		c.Sources = append(c.Sources, source)
	}
	if query != "" && !contains(c.SourceQueries, query) {
		c.SourceQueries = append(c.SourceQueries, query)
	}
}

// HasSource 判断候选是否来自指定来源。
func (c *Candidate) HasSource(source string) bool {
	return contains(c.Sources, source)
}

// BestSourceRank 返回候选所有来源中的最高优先级序号，用于确定性平手规则。
func (c *Candidate) BestSourceRank() int {
	best := SourceRank("")
	for _, s := range c.Sources {
		if r := SourceRank(s); r < best {
			best = r
		}
	}
	return best
}

// Merge 将同名候选合并进当前候选（去重时调用）：
// - 来源/查询词取并集（保持首次出现顺序）
// - popularity 取更小值（更地下）、followers 取更大值（更完整的记录）
// - genres/markets 取并集
// - 重叠标记做或运算
func (c *Candidate) Merge(other *Candidate) {
	if other == nil {
		return
	}
	for _, s := range other.Sources {
		if !contains(c.Sources, s) {
			c.Sources = append(c.Sources, s)
		}
	}
	for _, q := range other.SourceQueries {
		if !contains(c.SourceQueries, q) {
			c.SourceQueries = append(c.SourceQueries, q)
		}
	}
	if other.Popularity < c.Popularity {
		c.Popularity = other.Popularity
	}
	if other.Followers > c.Followers {
		c.Followers = other.Followers
	}
	for _, g := range other.Genres {
		if !contains(c.Genres, g) {
			c.Genres = append(c.Genres, g)
		}
	}
	for _, m := range other.Markets {
		if !contains(c.Markets, m) {
			c.Markets = append(c.Markets, m)
		}
	}
	c.OverlapsDislike = c.OverlapsDislike || other.OverlapsDislike
	c.OverlapsHate = c.OverlapsHate || other.OverlapsHate
	for k, v := range other.Meta {
		if _, ok := c.Meta[k]; !ok {
			if c.Meta == nil {
				c.Meta = make(map[string]any)
			}
			c.Meta[k] = v
		}
	}
	for k, v := range other.Labels {
		c.PutLabel(k, v)
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
