package builders

import (
	"fmt"
	"sync"
	"time"

	"github.com/adheep04/algorhythmn/config"
	"github.com/adheep04/algorhythmn/core"
	"github.com/adheep04/algorhythmn/feature"
	"github.com/adheep04/algorhythmn/filter"
	"github.com/adheep04/algorhythmn/pipeline"
	"github.com/adheep04/algorhythmn/pkg/conv"
	"github.com/adheep04/algorhythmn/rank"
	"github.com/adheep04/algorhythmn/recall"
	"github.com/adheep04/algorhythmn/rerank"
)

func init() {
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("recall.trim", BuildTrimNode)
	config.Register("filter", BuildFilterNode)
	config.Register("filter.overlap", BuildOverlapNode)
	config.Register("feature.enrich", BuildEnrichNode)
	config.Register("rank.taste", BuildTasteNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// 外部客户端（目录检索、音频特征、推理服务、缓存）无法从 YAML 构建，
// 使用配置驱动前先调用 UseClients 注入；未注入的客户端对应能力降级
// （召回源空转、富化走启发式兜底）。
var (
	clientsMu sync.RWMutex
	catalog   core.CatalogClient
	features  core.AudioFeatureClient
	reasoning core.ReasoningClient
	cache     core.Store
)

// UseClients 注入配置驱动构建所需的外部客户端，任意参数可为 nil。
func UseClients(c core.CatalogClient, f core.AudioFeatureClient, r core.ReasoningClient, s core.Store) {
	clientsMu.Lock()
	defer clientsMu.Unlock()
	catalog, features, reasoning, cache = c, f, r, s
}

func injectedClients() (core.CatalogClient, core.AudioFeatureClient, core.ReasoningClient, core.Store) {
	clientsMu.RLock()
	defer clientsMu.RUnlock()
	return catalog, features, reasoning, cache
}

// runtimeConfig 从 node config 读运行参数，未给出的键保持 DefaultConfig。
func runtimeConfig(cfg map[string]interface{}) core.Config {
	rc := core.DefaultConfig()
	rc.PopularityThreshold = int(conv.ConfigGetInt64(cfg, "popularity_threshold", int64(rc.PopularityThreshold)))
	rc.MinFollowers = int(conv.ConfigGetInt64(cfg, "min_followers", int64(rc.MinFollowers)))
	rc.MaxResultsPerQuery = int(conv.ConfigGetInt64(cfg, "max_results_per_query", int64(rc.MaxResultsPerQuery)))
	rc.MaxCrossPairs = int(conv.ConfigGetInt64(cfg, "max_cross_pairs", int64(rc.MaxCrossPairs)))
	rc.CacheTTLSeconds = int(conv.ConfigGetInt64(cfg, "cache_ttl", int64(rc.CacheTTLSeconds)))
	return rc
}

func BuildFanoutNode(cfg map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	cat, _, _, _ := injectedClients()
	rc := runtimeConfig(cfg)

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet(sourceMap, "type", "")
		switch sourceType {
		case core.SourceSearch:
			sources = append(sources, &recall.SearchSource{Catalog: cat, Cfg: rc})
		case core.SourceRelated:
			sources = append(sources, &recall.RelatedSource{Catalog: cat, Cfg: rc})
		case core.SourceCross:
			sources = append(sources, &recall.CrossSource{Catalog: cat, Cfg: rc})
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}

	fanout := &recall.Fanout{Sources: sources}
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	return fanout, nil
}

func BuildTrimNode(cfg map[string]interface{}) (pipeline.Node, error) {
	target := int(conv.ConfigGetInt64(cfg, "target", 0))
	return &recall.Trim{Target: target}, nil
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "seed":
			filters = append(filters, &filter.SeedFilter{})
		case "dsl":
			expr := conv.ConfigGet(filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("dsl filter requires expr")
			}
			filters = append(filters, &filter.DSLFilter{Expr: expr})
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildOverlapNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &filter.OverlapFlagger{
		Fuzzy: conv.ConfigGet(cfg, "fuzzy", false),
	}, nil
}

func BuildEnrichNode(cfg map[string]interface{}) (pipeline.Node, error) {
	cat, feat, rsn, st := injectedClients()
	node := &feature.EnrichNode{
		Catalog:   cat,
		Features:  feat,
		Reasoning: rsn,
		Cache:     st,
		Cfg:       runtimeConfig(cfg),
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		node.MaxConcurrent = int(n)
	}
	return node, nil
}

func BuildTasteNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rank.TasteNode{}, nil
}

func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.Diversity{
		Lambda: conv.ConfigGet(cfg, "lambda", core.DefaultConfig().DiversityWeight),
		Target: int(conv.ConfigGetInt64(cfg, "target", 0)),
	}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive")
	}
	return &rerank.TopNNode{N: int(n)}, nil
}
