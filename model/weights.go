package model

import "github.com/adheep04/algorhythmn/core"

// varianceEpsilon 防止某一维度上所有挚爱向量完全重合时除零。
const varianceEpsilon = 1e-6

// InverseVarianceWeights 从挚爱艺人的向量中学习各维度权重。
//
// 直觉：挚爱向量在某一维度上聚得越紧（方差越小），说明用户对该维度越挑剔，
// 距离计算里该维度就应该占更大比重；方差大的维度区分力弱，权重相应压低。
//
// 计算：Weight_i = 1 / (Var_i + epsilon)，随后归一化使权重和为 1。
// 方差使用样本方差（n-1 分母）。
// 少于 2 个挚爱向量时方差无定义，退回均匀权重。
func InverseVarianceWeights(loved []core.Embedding) core.DimensionWeights {
	if len(loved) < 2 {
		return core.UniformWeights()
	}

	weights := make(core.DimensionWeights, core.DimensionCount)
	for _, dim := range core.Dimensions() {
		weights[dim] = 1 / (sampleVariance(loved, dim) + varianceEpsilon)
	}

	total := weights.Sum()
	if total <= 0 {
		return core.UniformWeights()
	}
	for dim := range weights {
		weights[dim] /= total
	}
	return weights
}

// sampleVariance 计算一组向量在指定维度上的样本方差。
func sampleVariance(embeddings []core.Embedding, dim string) float64 {
	n := float64(len(embeddings))

	var mean float64
	for _, e := range embeddings {
		mean += e[dim]
	}
	mean /= n

	var sum float64
	for _, e := range embeddings {
		d := e[dim] - mean
		sum += d * d
	}
	return sum / (n - 1)
}
