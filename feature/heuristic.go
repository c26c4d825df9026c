package feature

import (
	"strings"

	"github.com/adheep04/algorhythmn/core"
)

// heuristicMidpoint 是无任何流派信号时的兜底取值。
const heuristicMidpoint = 0.5

// genreRule 定义流派关键词对维度默认值的修正。
type genreRule struct {
	keyword string
	dims    map[string]float64
}

// genreRules 按声明顺序依次应用，后命中的规则覆盖先命中的。
// 关键词按子串匹配流派标签（小写）。
var genreRules = []genreRule{
	{"ambient", map[string]float64{
		core.DimEnergy:    0.2,
		core.DimHarshness: 0.1,
		core.DimVocals:    0.2,
		core.DimTempo:     0.3,
	}},
	{"noise", map[string]float64{
		core.DimHarshness:    0.9,
		core.DimExperimental: 0.8,
		core.DimEnergy:       0.7,
	}},
	{"metal", map[string]float64{
		core.DimEnergy:    0.9,
		core.DimHarshness: 0.85,
		core.DimDarkness:  0.7,
	}},
	{"punk", map[string]float64{
		core.DimEnergy:    0.9,
		core.DimHarshness: 0.8,
		core.DimVocals:    0.7,
	}},
	{"techno", map[string]float64{
		core.DimElectronic: 0.95,
		core.DimTempo:      0.8,
		core.DimVocals:     0.2,
	}},
	{"idm", map[string]float64{
		core.DimElectronic:   0.9,
		core.DimExperimental: 0.8,
		core.DimComplexity:   0.8,
	}},
	{"electronic", map[string]float64{
		core.DimElectronic: 0.85,
	}},
	{"folk", map[string]float64{
		core.DimElectronic: 0.1,
		core.DimVocals:     0.8,
		core.DimHarshness:  0.2,
	}},
	{"acoustic", map[string]float64{
		core.DimElectronic: 0.1,
		core.DimHarshness:  0.15,
	}},
	{"jazz", map[string]float64{
		core.DimComplexity: 0.85,
		core.DimVocals:     0.4,
	}},
	{"classical", map[string]float64{
		core.DimComplexity: 0.8,
		core.DimElectronic: 0.05,
		core.DimVocals:     0.2,
	}},
	{"experimental", map[string]float64{
		core.DimExperimental: 0.9,
		core.DimComplexity:   0.75,
	}},
	{"avant", map[string]float64{
		core.DimExperimental: 0.9,
		core.DimComplexity:   0.8,
	}},
	{"doom", map[string]float64{
		core.DimDarkness: 0.9,
		core.DimTempo:    0.2,
	}},
	{"dark", map[string]float64{
		core.DimDarkness: 0.85,
	}},
	{"pop", map[string]float64{
		core.DimVocals:    0.8,
		core.DimDarkness:  0.3,
		core.DimHarshness: 0.2,
	}},
}

// HeuristicDefaults 根据流派标签推导各维度的兜底默认值。
// 没有命中任何关键词的维度取中点 0.5。确定性：相同输入得到相同输出。
func HeuristicDefaults(genres []string) map[string]float64 {
	defaults := make(map[string]float64, core.DimensionCount)
	for _, dim := range core.Dimensions() {
		defaults[dim] = heuristicMidpoint
	}

	for _, rule := range genreRules {
		for _, g := range genres {
			if strings.Contains(strings.ToLower(g), rule.keyword) {
				for dim, v := range rule.dims {
					defaults[dim] = v
				}
				break
			}
		}
	}
	return defaults
}
