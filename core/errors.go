package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 外部协作方（目录检索、音频特征、推理服务）的失败全部收敛为此类型
//   - 提供错误代码（Code）和消息（Message），支持 IsXXX 检查函数
//   - 单次调用失败在所属组件内降级消化，只有 EMPTY_POOL 作为硬失败上抛
type DomainError struct {
	Code    string // 错误代码（如 "RATE_LIMITED", "UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "catalog", "reasoning"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeNotSupported = "NOT_SUPPORTED" // 操作不支持
	ErrorCodeUnavailable  = "UNAVAILABLE"   // 服务不可用
	ErrorCodeRateLimited  = "RATE_LIMITED"  // 限流（重试耗尽）
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效
	ErrorCodeEmptyPool    = "EMPTY_POOL"    // 候选池为空（聚合阶段硬失败）
)

// 模块名称常量
const (
	ModuleStore     = "store"     // 缓存/存储模块
	ModuleCatalog   = "catalog"   // 目录检索模块
	ModuleFeature   = "feature"   // 音频特征/富化模块
	ModuleReasoning = "reasoning" // 推理（画像/主观维度）模块
	ModuleRecall    = "recall"    // 召回聚合模块
)

// 预定义领域错误
var (
	// ErrProfileUnavailable 画像服务调用失败或返回不可解析结构
	ErrProfileUnavailable = NewDomainError(ModuleReasoning, ErrorCodeUnavailable, "reasoning: taste profile unavailable")

	// ErrSearchUnavailable 目录检索单次调用失败
	ErrSearchUnavailable = NewDomainError(ModuleCatalog, ErrorCodeUnavailable, "catalog: search unavailable")

	// ErrRateLimited 限流且重试耗尽（对单次调用仍是软失败）
	ErrRateLimited = NewDomainError(ModuleCatalog, ErrorCodeRateLimited, "catalog: rate limited")

	// ErrFeaturesUnavailable 音频特征服务调用失败
	ErrFeaturesUnavailable = NewDomainError(ModuleFeature, ErrorCodeUnavailable, "feature: audio features unavailable")

	// ErrInferenceUnavailable 主观维度推理调用失败
	ErrInferenceUnavailable = NewDomainError(ModuleReasoning, ErrorCodeUnavailable, "reasoning: subjective inference unavailable")

	// ErrEmptyCandidatePool 所有来源均无成功候选：无法排序，唯一的硬失败
	ErrEmptyCandidatePool = NewDomainError(ModuleRecall, ErrorCodeEmptyPool, "recall: no candidates survived aggregation")
)

// IsRateLimited 检查错误是否为限流。
func IsRateLimited(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeRateLimited
	}
	return false
}

// IsUnavailable 检查错误是否为服务不可用。
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

// IsEmptyPool 检查错误是否为候选池为空。
func IsEmptyPool(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeEmptyPool
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
