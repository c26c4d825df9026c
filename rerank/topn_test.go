package rerank

import (
	"context"
	"testing"

	"github.com/adheep04/algorhythmn/core"
)

func TestTopNNode(t *testing.T) {
	a := scored("A", core.SourceSearch, 0.9, nil)
	b := scored("B", core.SourceSearch, 0.8, nil)
	c := scored("C", core.SourceSearch, 0.7, nil)

	tests := []struct {
		name   string
		n      int
		want   int
		scored int
	}{
		{"truncates", 2, 2, 2},
		{"zero keeps all", 0, 3, 3},
		{"larger than pool keeps all", 10, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rctx, candidates := contextWith(a, b, c)
			out, err := (&TopNNode{N: tt.n}).Process(context.Background(), rctx, candidates)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if len(out) != tt.want {
				t.Errorf("len(out) = %d, want %d", len(out), tt.want)
			}
			if len(rctx.Scored) != tt.scored {
				t.Errorf("len(Scored) = %d, want %d", len(rctx.Scored), tt.scored)
			}
		})
	}
}
