package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/adheep04/algorhythmn/pkg/utils"
)

// 偏好档位常量。
const (
	BucketLove    = "love"
	BucketLike    = "like"
	BucketDislike = "dislike"
	BucketHate    = "hate"
)

// Preferences 是用户对艺人的四档评价列表，是整条链路的输入。
// 链路内部只使用 Normalized() 之后的结果。
type Preferences struct {
	Love    []string `json:"love"`
	Like    []string `json:"like"`
	Dislike []string `json:"dislike"`
	Hate    []string `json:"hate"`
}

// Normalized 返回去空白、剔除空项后的新 Preferences（不修改原值）。
func (p Preferences) Normalized() Preferences {
	return Preferences{
		Love:    trimList(p.Love),
		Like:    trimList(p.Like),
		Dislike: trimList(p.Dislike),
		Hate:    trimList(p.Hate),
	}
}

// Bucket 按档位名返回对应列表。
func (p Preferences) Bucket(name string) []string {
	switch name {
	case BucketLove:
		return p.Love
	case BucketLike:
		return p.Like
	case BucketDislike:
		return p.Dislike
	case BucketHate:
		return p.Hate
	default:
		return nil
	}
}

// NormNameSet 返回某档位的规范名集合，用于重叠标记。
func (p Preferences) NormNameSet(bucket string) map[string]struct{} {
	values := p.Bucket(bucket)
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if n := utils.NormalizeName(v); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// AllNormNames 返回四个档位所有艺人的规范名集合。
func (p Preferences) AllNormNames() map[string]struct{} {
	set := make(map[string]struct{})
	for _, bucket := range []string{BucketLove, BucketLike, BucketDislike, BucketHate} {
		for n := range p.NormNameSet(bucket) {
			set[n] = struct{}{}
		}
	}
	return set
}

// Hash 生成偏好的稳定哈希（各档位排序后取规范 JSON 的 sha256），
// 用作口味画像等缓存的 key。列表顺序不影响结果。
func (p Preferences) Hash() string {
	normalized := p.Normalized()
	canonical := map[string][]string{
		BucketLove:    sortedCopy(normalized.Love),
		BucketLike:    sortedCopy(normalized.Like),
		BucketDislike: sortedCopy(normalized.Dislike),
		BucketHate:    sortedCopy(normalized.Hate),
	}
	blob, err := json.Marshal(canonical)
	if err != nil {
		// map[string][]string 序列化不会失败；兜底拼接
		blob = []byte(strings.Join(append(append(append(canonical[BucketLove],
			canonical[BucketLike]...), canonical[BucketDislike]...), canonical[BucketHate]...), "|"))
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

// Empty 判断四个档位是否全空。
func (p Preferences) Empty() bool {
	return len(trimList(p.Love))+len(trimList(p.Like))+
		len(trimList(p.Dislike))+len(trimList(p.Hate)) == 0
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
