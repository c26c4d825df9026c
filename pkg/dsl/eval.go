package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/adheep04/algorhythmn/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量和函数
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// 定义变量类型
		cel.Variable("candidate", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是候选过滤 DSL 解释器，使用 CEL (Common Expression Language) 实现。
// CEL 是 Google 开发的表达式语言，具有类型安全、高性能、线程安全等特性。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：candidate.popularity <= 35 / candidate.followers >= 15000
//   - 逻辑：candidate.popularity <= 20 && candidate.followers >= 50000
//   - 标记位：!candidate.overlaps_hate
//   - 流派："noise" in candidate.genres
//   - 召回来源：label.recall_source != null && label.recall_source.contains("search")
//
// 示例：
//   - `candidate.popularity <= 35` → 仅保留低热度艺术家
//   - `"ambient" in candidate.genres && candidate.followers >= 15000` → 流派且粉丝门槛
//   - `label.recall_source != null` → 检查标签存在性（CEL 访问不存在的 key 会报错）
type Eval struct {
	candidate *core.Candidate
	rctx      *core.RecommendContext
	env       *cel.Env
}

// NewEval 创建一个新的 DSL 解释器。
func NewEval(candidate *core.Candidate, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		candidate: candidate,
		rctx:      rctx,
		env:       env,
	}
}

// Evaluate 解析并执行 DSL 表达式，返回布尔结果。
// 空表达式恒为 true。
//
// 注意：has(label.key) 可以用 label.key != null 替代
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}

	// 编译表达式
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	// 创建程序
	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	// 准备输入数据
	input := e.buildInput()

	// 执行表达式
	out, _, err := prg.Eval(input)
	if err != nil {
		// 对于不存在的 key，CEL 会返回错误
		// 用户应该使用 label.key != null 来检查存在性，而不是直接访问
		return false, fmt.Errorf("eval error: %v", err)
	}

	// 转换为布尔值
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	// 构建 label map
	labels := make(map[string]interface{})
	for k, v := range e.candidate.Labels {
		labels[k] = map[string]interface{}{
			"value":  v.Value,
			"source": v.Source,
		}
	}

	// 构建 candidate map
	candidate := map[string]interface{}{
		"id":               e.candidate.ID,
		"name":             e.candidate.Name,
		"popularity":       e.candidate.Popularity,
		"followers":        e.candidate.Followers,
		"genres":           e.candidate.Genres,
		"markets":          e.candidate.Markets,
		"sources":          e.candidate.Sources,
		"overlaps_dislike": e.candidate.OverlapsDislike,
		"overlaps_hate":    e.candidate.OverlapsHate,
		"embedding":        map[string]float64(e.candidate.Embedding),
		"meta":             e.candidate.Meta,
		"labels":           labels,
	}

	// 构建 rctx map
	rctx := map[string]interface{}{}
	if e.rctx != nil {
		rctx["queries"] = e.rctx.Queries
		rctx["params"] = e.rctx.Params
	}

	// 为了兼容旧的语法，提供 label 作为顶层访问
	// 例如 label.recall_source 可以直接访问
	// 注意：CEL 访问不存在的 key 会报错，所以使用 null 作为默认值
	// 用户可以使用 label.key != null 来检查存在性
	labelAccessor := make(map[string]interface{})
	for k, v := range labels {
		// label.recall_source 返回 value
		labelAccessor[k] = v.(map[string]interface{})["value"]
	}

	return map[string]interface{}{
		"candidate": candidate,
		"label":     labelAccessor,
		"rctx":      rctx,
	}
}
