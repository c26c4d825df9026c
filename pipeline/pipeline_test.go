package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adheep04/algorhythmn/core"
)

// stubNode 在候选列表尾部追加一个以自己名字命名的候选。
type stubNode struct {
	name string
	kind Kind
	err  error
}

func (n *stubNode) Name() string { return n.name }
func (n *stubNode) Kind() Kind   { return n.kind }

func (n *stubNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(candidates, core.NewCandidate(n.name, n.name)), nil
}

func TestPipelineRunsNodesInOrder(t *testing.T) {
	p := &Pipeline{Nodes: []Node{
		&stubNode{name: "first", kind: KindRecall},
		&stubNode{name: "second", kind: KindFilter},
		&stubNode{name: "third", kind: KindRank},
	}}

	out, err := p.Run(context.Background(), core.NewRecommendContext(core.Preferences{}), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(out) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(out), len(want))
	}
	for i, name := range want {
		if out[i].Name != name {
			t.Errorf("out[%d] = %s, want %s", i, out[i].Name, name)
		}
	}
}

func TestPipelineStopsOnNodeError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{
		&stubNode{name: "first", kind: KindRecall},
		&stubNode{name: "broken", kind: KindFilter, err: boom},
		&stubNode{name: "never", kind: KindRank},
	}}

	out, err := p.Run(context.Background(), core.NewRecommendContext(core.Preferences{}), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if out != nil {
		t.Errorf("out = %v, want nil on failure", out)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	content := `
pipeline:
  name: discover
  nodes:
    - type: filter.overlap
      config:
        fuzzy: true
    - type: rank.taste
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	if cfg.Pipeline.Name != "discover" {
		t.Errorf("name = %q", cfg.Pipeline.Name)
	}
	if len(cfg.Pipeline.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(cfg.Pipeline.Nodes))
	}
	if cfg.Pipeline.Nodes[0].Type != "filter.overlap" {
		t.Errorf("nodes[0].Type = %q", cfg.Pipeline.Nodes[0].Type)
	}
	if fuzzy, _ := cfg.Pipeline.Nodes[0].Config["fuzzy"].(bool); !fuzzy {
		t.Errorf("nodes[0].Config = %v, want fuzzy true", cfg.Pipeline.Nodes[0].Config)
	}
}

func TestLoadFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.json")
	content := `{"pipeline":{"name":"discover","nodes":[{"type":"rank.taste"}]}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromJSON(path)
	if err != nil {
		t.Fatalf("LoadFromJSON: %v", err)
	}
	if len(cfg.Pipeline.Nodes) != 1 || cfg.Pipeline.Nodes[0].Type != "rank.taste" {
		t.Errorf("nodes = %+v", cfg.Pipeline.Nodes)
	}
}

func TestBuildPipelineUnknownType(t *testing.T) {
	factory := NewNodeFactory()
	factory.Register("stub", func(map[string]interface{}) (Node, error) {
		return &stubNode{name: "stub", kind: KindRecall}, nil
	})

	cfg := &Config{}
	cfg.Pipeline.Nodes = []NodeConfig{{Type: "stub"}, {Type: "missing"}}
	if _, err := cfg.BuildPipeline(factory); err == nil {
		t.Fatal("expected error for unregistered node type")
	}

	cfg.Pipeline.Nodes = cfg.Pipeline.Nodes[:1]
	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}
	if len(p.Nodes) != 1 || p.Nodes[0].Name() != "stub" {
		t.Errorf("pipeline nodes = %v", p.Nodes)
	}
}
