package utils

import (
	"strings"
	"unicode/utf8"
)

// NormalizeName 返回艺人名的规范形式（trim + casefold），作为一次运行内的去重键。
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// fuzzyMinLen 是模糊匹配参与子串判断的最小长度（按 rune 计），
// 过短的名字只做精确匹配，避免 "Low" 之类的短名误伤。
const fuzzyMinLen = 4

// FuzzyNameMatch 判断两个规范名是否指向同一艺人：精确相等，
// 或一方是另一方的子串（别名/变体场景，如 "boards of canada" vs
// "boards of canada live"）。输入应已经过 NormalizeName。
func FuzzyNameMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if utf8.RuneCountInString(a) >= fuzzyMinLen && strings.Contains(b, a) {
		return true
	}
	if utf8.RuneCountInString(b) >= fuzzyMinLen && strings.Contains(a, b) {
		return true
	}
	return false
}

// MatchesAny 判断规范名是否与集合中任一名字精确或模糊匹配。
func MatchesAny(name string, set map[string]struct{}) bool {
	if _, ok := set[name]; ok {
		return true
	}
	for other := range set {
		if FuzzyNameMatch(name, other) {
			return true
		}
	}
	return false
}

// CacheKey 以 "::" 拼接命名空间与各段，生成缓存 key。
func CacheKey(parts ...string) string {
	return strings.Join(parts, "::")
}
