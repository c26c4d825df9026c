package core

import "math"

// 8 维艺人向量的维度名。所有维度取值范围 [0,1]。
// 前五维为客观维度（由音频特征服务的测量值线性映射而来），
// 后三维为主观维度（由推理服务给出）。
const (
	DimEnergy       = "energy"       // 能量
	DimElectronic   = "electronic"   // 电子 vs 原声（1 - acousticness）
	DimTempo        = "tempo"        // 节奏感（danceability）
	DimVocals       = "vocals"       // 人声占比（1 - instrumentalness）
	DimDarkness     = "darkness"     // 暗度（1 - valence）
	DimExperimental = "experimental" // 实验性
	DimComplexity   = "complexity"   // 复杂度
	DimHarshness    = "harshness"    // 刺耳度
)

// dimensions 是维度的规范顺序，向量化、序列化、遍历都必须按此顺序。
var dimensions = []string{
	DimEnergy,
	DimElectronic,
	DimTempo,
	DimVocals,
	DimDarkness,
	DimExperimental,
	DimComplexity,
	DimHarshness,
}

// ObjectiveDimensions 返回可由音频特征测量值映射的维度。
func ObjectiveDimensions() []string {
	return []string{DimEnergy, DimElectronic, DimTempo, DimVocals, DimDarkness}
}

// SubjectiveDimensions 返回需要推理服务打分的维度。
func SubjectiveDimensions() []string {
	return []string{DimExperimental, DimComplexity, DimHarshness}
}

// Dimensions 返回维度的规范顺序（拷贝，调用方可自由修改）。
func Dimensions() []string {
	out := make([]string, len(dimensions))
	copy(out, dimensions)
	return out
}

// DimensionCount 是维度数量。
const DimensionCount = 8

// Embedding 是单个艺人的 8 维向量。不变式：打分开始前所有维度就位且有限；
// 部分富化失败由启发式默认值补齐，不允许缺维。
type Embedding map[string]float64

// NewEmbedding 创建一个空向量。
func NewEmbedding() Embedding {
	return make(Embedding, DimensionCount)
}

// Set 写入一个维度的值（裁剪到 [0,1]；非法维度名被忽略）。
func (e Embedding) Set(dim string, value float64) {
	for _, d := range dimensions {
		if d == dim {
			e[dim] = Clamp01(value)
			return
		}
	}
}

// Update 批量写入（仅接受合法维度名）。
func (e Embedding) Update(values map[string]float64) {
	for dim, v := range values {
		e.Set(dim, v)
	}
}

// Complete 判断是否所有 8 个维度均已就位且有限。
func (e Embedding) Complete() bool {
	for _, dim := range dimensions {
		v, ok := e[dim]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FillDefaults 用 defaults 中的值补齐缺失/非法维度；defaults 缺失时取中点 0.5。
func (e Embedding) FillDefaults(defaults map[string]float64) {
	for _, dim := range dimensions {
		v, ok := e[dim]
		if ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			continue
		}
		if d, ok := defaults[dim]; ok {
			e[dim] = Clamp01(d)
		} else {
			e[dim] = 0.5
		}
	}
}

// Vector 按规范维度顺序返回向量值（缺失维度取 0）。
func (e Embedding) Vector() []float64 {
	out := make([]float64, len(dimensions))
	for i, dim := range dimensions {
		out[i] = e[dim]
	}
	return out
}

// Clone 返回向量的拷贝。
func (e Embedding) Clone() Embedding {
	out := make(Embedding, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// DimensionWeights 是每个维度的非负权重，不变式：总和 == 1.0（浮点容差内）。
// 每次推荐请求由 loved 向量的方差学习一次；不足 2 个 loved 时退化为均匀权重。
type DimensionWeights map[string]float64

// UniformWeights 返回均匀权重（每维 1/8）。
func UniformWeights() DimensionWeights {
	w := make(DimensionWeights, DimensionCount)
	for _, dim := range dimensions {
		w[dim] = 1.0 / float64(DimensionCount)
	}
	return w
}

// Sum 返回权重总和。
func (w DimensionWeights) Sum() float64 {
	var total float64
	for _, dim := range dimensions {
		total += w[dim]
	}
	return total
}

// Clamp01 将 value 裁剪到 [0,1]。
func Clamp01(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
