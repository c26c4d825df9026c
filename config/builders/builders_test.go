package builders

import (
	"testing"

	"github.com/adheep04/algorhythmn/config"
	"github.com/adheep04/algorhythmn/filter"
	"github.com/adheep04/algorhythmn/pipeline"
	"github.com/adheep04/algorhythmn/recall"
	"github.com/adheep04/algorhythmn/rerank"
)

func TestInitRegistersBuiltinNodes(t *testing.T) {
	want := []string{
		"recall.fanout", "recall.trim", "filter", "filter.overlap",
		"feature.enrich", "rank.taste", "rerank.diversity", "rerank.topn",
	}
	supported := make(map[string]bool)
	for _, typ := range config.SupportedTypes() {
		supported[typ] = true
	}
	for _, typ := range want {
		if !supported[typ] {
			t.Errorf("type %q not registered", typ)
		}
	}
}

func TestBuildPipelineFromConfig(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = "discover"
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "filter.overlap", Config: map[string]interface{}{"fuzzy": true}},
		{Type: "filter", Config: map[string]interface{}{
			"filters": []interface{}{
				map[string]interface{}{"type": "seed"},
				map[string]interface{}{"type": "dsl", "expr": "candidate.popularity <= 35"},
			},
		}},
		{Type: "rank.taste", Config: nil},
		{Type: "rerank.diversity", Config: map[string]interface{}{"lambda": 0.5, "target": 10}},
	}

	if err := config.ValidatePipelineConfig(cfg); err != nil {
		t.Fatalf("ValidatePipelineConfig: %v", err)
	}
	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}
	if len(p.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(p.Nodes))
	}

	overlap, ok := p.Nodes[0].(*filter.OverlapFlagger)
	if !ok || !overlap.Fuzzy {
		t.Errorf("nodes[0] = %T fuzzy=%v", p.Nodes[0], overlap != nil && overlap.Fuzzy)
	}
	filterNode, ok := p.Nodes[1].(*filter.FilterNode)
	if !ok || len(filterNode.Filters) != 2 {
		t.Errorf("nodes[1] = %T", p.Nodes[1])
	}
	diversity, ok := p.Nodes[3].(*rerank.Diversity)
	if !ok || diversity.Lambda != 0.5 || diversity.Target != 10 {
		t.Errorf("nodes[3] = %+v", p.Nodes[3])
	}
}

func TestValidatePipelineConfigRejectsUnknownType(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "no.such.node"}}
	if err := config.ValidatePipelineConfig(cfg); err == nil {
		t.Fatal("expected error for unknown node type")
	}
}

func TestBuildFanoutNodeSources(t *testing.T) {
	node, err := BuildFanoutNode(map[string]interface{}{
		"sources": []interface{}{
			map[string]interface{}{"type": "search"},
			map[string]interface{}{"type": "related"},
			map[string]interface{}{"type": "cross"},
		},
		"timeout":        int64(5),
		"max_concurrent": int64(2),
	})
	if err != nil {
		t.Fatalf("BuildFanoutNode: %v", err)
	}
	fanout, ok := node.(*recall.Fanout)
	if !ok {
		t.Fatalf("node = %T", node)
	}
	if len(fanout.Sources) != 3 {
		t.Errorf("sources = %d, want 3", len(fanout.Sources))
	}
	if fanout.MaxConcurrent != 2 {
		t.Errorf("MaxConcurrent = %d", fanout.MaxConcurrent)
	}

	if _, err := BuildFanoutNode(map[string]interface{}{
		"sources": []interface{}{map[string]interface{}{"type": "oracle"}},
	}); err == nil {
		t.Error("expected error for unknown source type")
	}
	if _, err := BuildFanoutNode(map[string]interface{}{}); err == nil {
		t.Error("expected error when sources missing")
	}
}

func TestBuildFilterNodeRequiresExpr(t *testing.T) {
	_, err := BuildFilterNode(map[string]interface{}{
		"filters": []interface{}{map[string]interface{}{"type": "dsl"}},
	})
	if err == nil {
		t.Fatal("dsl filter without expr must fail")
	}
}

func TestBuildTopNNodeRejectsNonPositive(t *testing.T) {
	if _, err := BuildTopNNode(map[string]interface{}{}); err == nil {
		t.Error("missing n must fail")
	}
	node, err := BuildTopNNode(map[string]interface{}{"n": int64(5)})
	if err != nil {
		t.Fatal(err)
	}
	if topn, ok := node.(*rerank.TopNNode); !ok || topn.N != 5 {
		t.Errorf("node = %+v", node)
	}
}
