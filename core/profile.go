package core

import (
	"sort"
	"strings"
)

// TasteProfile 是推理服务从偏好列表提炼出的结构化口味画像。
// 产出后不可变；以偏好哈希为 key 缓存。
type TasteProfile struct {
	Genres             []string       `json:"genres,omitempty"`
	Scenes             []string       `json:"scenes,omitempty"`
	Moods              []string       `json:"moods,omitempty"`
	LikedDescriptors   []string       `json:"liked_descriptors,omitempty"`
	AvoidedDescriptors []string       `json:"avoided_descriptors,omitempty"`
	EraPreferences     []string       `json:"era_preferences,omitempty"`
	Raw                map[string]any `json:"raw,omitempty"`
}

// ProfileFromResponse 将推理服务的动态响应规范化为 TasteProfile。
// 上游 schema 漂移（string / []any 混用）在此边界被隔离。
func ProfileFromResponse(response map[string]any) *TasteProfile {
	return &TasteProfile{
		Genres:             pluckStrings(response, "genres"),
		Scenes:             pluckStrings(response, "scenes"),
		Moods:              pluckStrings(response, "moods"),
		LikedDescriptors:   pluckStrings(response, "liked_descriptors"),
		AvoidedDescriptors: pluckStrings(response, "avoided_descriptors"),
		EraPreferences:     pluckStrings(response, "era_preferences"),
		Raw:                response,
	}
}

// FallbackProfile 是推理服务不可用时的最小启发式画像：
// 直接以 loved/liked 艺人名充当 genre 词项。
func FallbackProfile(prefs Preferences) *TasteProfile {
	normalized := prefs.Normalized()
	descriptors := append(append([]string{}, normalized.Love...), normalized.Like...)
	return &TasteProfile{
		Genres:           descriptors,
		LikedDescriptors: []string{"melodic"},
		Moods:            []string{"energetic"},
		Raw:              map[string]any{"fallback": true},
	}
}

// Valid 判断画像是否包含任何可用于生成查询的词项。
func (p *TasteProfile) Valid() bool {
	if p == nil {
		return false
	}
	return len(p.Genres)+len(p.Scenes)+len(p.Moods)+len(p.LikedDescriptors) > 0
}

// Terms 返回生成查询用的去重词项（genres + scenes + moods + liked descriptors，
// 保持首次出现顺序）。
func (p *TasteProfile) Terms() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, group := range [][]string{p.Genres, p.Scenes, p.Moods, p.LikedDescriptors} {
		for _, term := range group {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			key := strings.ToLower(term)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}

// StableSignature 生成画像的稳定字符串表示，用作查询扩展等缓存的 key。
func (p *TasteProfile) StableSignature() string {
	if p == nil {
		return ""
	}
	parts := []string{
		joinSorted(p.Genres),
		joinSorted(p.Scenes),
		joinSorted(p.Moods),
		joinSorted(p.LikedDescriptors),
		joinSorted(p.AvoidedDescriptors),
		joinSorted(p.EraPreferences),
	}
	return strings.Join(parts, "::")
}

func joinSorted(values []string) string {
	seen := make(map[string]struct{}, len(values))
	uniq := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		uniq = append(uniq, v)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, "|")
}

func pluckStrings(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	case []string:
		out := make([]string, 0, len(val))
		for _, s := range val {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
