package feast

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/adheep04/algorhythmn/core"
)

// 在线存储中的测量值特征名（feature_view:feature 格式）。
var measureFeatures = []string{
	"artist_audio:energy",
	"artist_audio:danceability",
	"artist_audio:valence",
	"artist_audio:acousticness",
	"artist_audio:instrumentalness",
}

// AudioFeatureStore 是 Feast Feature Store 的音频测量值客户端，
// 实现 core.AudioFeatureClient 接口。
//
// 部署了特征离线回填（由批处理任务把音频测量值物化到在线存储）的环境里，
// 可以用它替换实时的目录服务查询，避开外部接口的限流。
//
// 设计原则（DDD）：
//   - 领域层：core.AudioFeatureClient 接口保持不变
//   - 基础设施层：AudioFeatureStore 实现该接口
//   - 高内聚低耦合：通过接口抽象，与 CatalogHTTP 实现可互换
//
// 参考：https://github.com/feast-dev/feast
type AudioFeatureStore struct {
	// client 官方 SDK 的 gRPC 客户端
	client *feastsdk.GrpcClient

	// Project 项目名称
	Project string

	// Endpoint 服务端点（用于信息展示）
	Endpoint string
}

// NewAudioFeatureStore 创建一个基于官方 SDK 的 Feast 音频特征客户端。
//
// 参数：
//   - endpoint: Feature Server 地址，例如 "localhost:6565"
//   - project: 项目名称
func NewAudioFeatureStore(endpoint, project string) (*AudioFeatureStore, error) {
	host, port := parseEndpoint(endpoint)
	if port == 0 {
		port = 6565 // 默认 gRPC 端口
	}

	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("create feast grpc client: %w", err)
	}

	return &AudioFeatureStore{
		client:   client,
		Project:  project,
		Endpoint: fmt.Sprintf("%s:%d", host, port),
	}, nil
}

// ArtistAudioFeatures 实现 core.AudioFeatureClient 接口：
// 按 artist_id 实体从在线存储读取测量值。
// 在线存储缺该艺人数据时返回空 map（由富化层走启发式兜底）。
func (s *AudioFeatureStore) ArtistAudioFeatures(ctx context.Context, artistID string) (map[string]float64, error) {
	if artistID == "" {
		return map[string]float64{}, nil
	}

	req := &feastsdk.OnlineFeaturesRequest{
		Features: measureFeatures,
		Entities: []feastsdk.Row{
			{"artist_id": feastsdk.StrVal(artistID)},
		},
		Project: s.Project,
	}

	resp, err := s.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeUnavailable,
			fmt.Sprintf("feast get online features: %v", err))
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return map[string]float64{}, nil
	}

	measures := make(map[string]float64, len(measureFeatures))
	for _, feature := range measureFeatures {
		val, ok := rows[0][feature]
		if !ok || val == nil {
			continue
		}
		if f, ok := asFloat(val); ok {
			measures[measureName(feature)] = core.Clamp01(f)
		}
	}
	return measures, nil
}

// Close 关闭客户端连接。
func (s *AudioFeatureStore) Close() error {
	// 官方 SDK 没有显式的 Close 方法，连接由 gRPC 库管理
	s.client = nil
	return nil
}

// measureName 去掉 feature_view 前缀，返回测量值名。
func measureName(feature string) string {
	if idx := strings.Index(feature, ":"); idx >= 0 {
		return feature[idx+1:]
	}
	return feature
}

// asFloat 把 SDK 返回的 protobuf 值转换为 float64。
func asFloat(v *feasttypes.Value) (float64, bool) {
	switch val := v.Val.(type) {
	case *feasttypes.Value_DoubleVal:
		return val.DoubleVal, true
	case *feasttypes.Value_FloatVal:
		return float64(val.FloatVal), true
	case *feasttypes.Value_Int64Val:
		return float64(val.Int64Val), true
	case *feasttypes.Value_Int32Val:
		return float64(val.Int32Val), true
	case *feasttypes.Value_StringVal:
		if f, err := strconv.ParseFloat(val.StringVal, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// parseEndpoint 解析端点地址，返回 host 和 port。
func parseEndpoint(endpoint string) (string, int) {
	endpoint = strings.TrimPrefix(endpoint, "grpc://")

	parts := strings.Split(endpoint, ":")
	if len(parts) == 2 {
		if port, err := strconv.Atoi(parts[1]); err == nil {
			return parts[0], port
		}
	}
	return endpoint, 0
}

var _ core.AudioFeatureClient = (*AudioFeatureStore)(nil)
