package core

import "sort"

// seedArtists 是提供给用户打分的热门艺人清单。
// 这些艺人同时充当参考向量的种子（loved/hated 评价通常落在这里）。
var seedArtists = map[string]struct{}{
	"Frank Ocean":     {},
	"Phoebe Bridgers": {},
	"Taylor Swift":    {},
	"Billie Eilish":   {},
	"The Weeknd":      {},
	"Ariana Grande":   {},
	"Drake":           {},
	"Olivia Rodrigo":  {},
	"Harry Styles":    {},
	"Dua Lipa":        {},
	"Post Malone":     {},
	"Ed Sheeran":      {},
	"Adele":           {},
	"Bruno Mars":      {},
	"Justin Bieber":   {},
	"Rihanna":         {},
	"Beyoncé":         {},
	"Kanye West":      {},
	"Kendrick Lamar":  {},
	"Travis Scott":    {},
}

// SeedArtists 返回热门种子艺人清单（排序后，便于确定性遍历）。
func SeedArtists() []string {
	out := make([]string, 0, len(seedArtists))
	for name := range seedArtists {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsSeedArtist 判断名字是否在种子清单中。
func IsSeedArtist(name string) bool {
	_, ok := seedArtists[name]
	return ok
}
