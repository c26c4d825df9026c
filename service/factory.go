package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adheep04/algorhythmn/core"
)

// ServiceConfig 是外部服务的统一配置。
type ServiceConfig struct {
	// Type 服务类型（见 ServiceType 常量）
	Type string `yaml:"type" json:"type"`

	// Endpoint 服务端点（可选，默认使用各客户端的公网端点）
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// TokenURL 认证端点（目录服务用）
	TokenURL string `yaml:"token_url" json:"token_url"`

	// ClientID / ClientSecret 目录服务凭证
	ClientID     string `yaml:"client_id" json:"client_id"`
	ClientSecret string `yaml:"client_secret" json:"client_secret"`

	// APIKey 推理服务密钥
	APIKey string `yaml:"api_key" json:"api_key"`

	// Market 检索市场
	Market string `yaml:"market" json:"market"`

	// Timeout 超时时间（秒）
	Timeout int `yaml:"timeout" json:"timeout"`
}

// 服务类型常量
const (
	ServiceTypeCatalog   = "catalog"   // 目录检索（含音频特征）
	ServiceTypeReasoning = "reasoning" // 推理服务
)

// NewCatalogService 根据配置创建目录服务客户端（工厂方法）。
// 返回值同时实现 core.CatalogClient 和 core.AudioFeatureClient。
func NewCatalogService(config *ServiceConfig, cache core.Store, logger zerolog.Logger) (*CatalogHTTP, error) {
	if config == nil {
		return nil, fmt.Errorf("service config is required")
	}
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("catalog credentials are required")
	}

	opts := []CatalogOption{
		WithCatalogLogger(logger),
		WithCatalogBrainz(NewAcousticBrainzClient(cache, WithBrainzLogger(logger))),
	}
	if config.Endpoint != "" && config.TokenURL != "" {
		opts = append(opts, WithCatalogEndpoints(config.TokenURL, config.Endpoint))
	}
	if config.Market != "" {
		opts = append(opts, WithCatalogMarket(config.Market))
	}
	if config.Timeout > 0 {
		opts = append(opts, WithCatalogTimeout(time.Duration(config.Timeout)*time.Second))
	}
	return NewCatalogHTTP(config.ClientID, config.ClientSecret, opts...), nil
}

// NewReasoningService 根据配置创建推理服务客户端（工厂方法）。
func NewReasoningService(config *ServiceConfig, logger zerolog.Logger) (*ReasoningHTTP, error) {
	if config == nil {
		return nil, fmt.Errorf("service config is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("reasoning api key is required")
	}

	opts := []ReasoningOption{
		WithReasoningLogger(logger),
	}
	if config.Endpoint != "" {
		opts = append(opts, WithReasoningEndpoint(config.Endpoint))
	}
	return NewReasoningHTTP(config.APIKey, opts...), nil
}
