package feature

import (
	"testing"

	"github.com/adheep04/algorhythmn/core"
)

func TestHeuristicDefaultsNoGenres(t *testing.T) {
	defaults := HeuristicDefaults(nil)
	if len(defaults) != core.DimensionCount {
		t.Fatalf("expected %d dims, got %d", core.DimensionCount, len(defaults))
	}
	for dim, v := range defaults {
		if v != 0.5 {
			t.Errorf("dim %s = %v, want midpoint 0.5", dim, v)
		}
	}
}

func TestHeuristicDefaultsGenreRules(t *testing.T) {
	tests := []struct {
		name   string
		genres []string
		dim    string
		want   float64
	}{
		{"ambient lowers energy", []string{"dark ambient"}, core.DimEnergy, 0.2},
		{"noise raises harshness", []string{"harsh noise"}, core.DimHarshness, 0.9},
		{"techno raises electronic", []string{"minimal techno"}, core.DimElectronic, 0.95},
		{"folk lowers electronic", []string{"freak folk"}, core.DimElectronic, 0.1},
		{"unmatched keeps midpoint", []string{"zydeco"}, core.DimEnergy, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeuristicDefaults(tt.genres)[tt.dim]
			if got != tt.want {
				t.Errorf("HeuristicDefaults(%v)[%s] = %v, want %v", tt.genres, tt.dim, got, tt.want)
			}
		})
	}
}

func TestHeuristicDefaultsLaterRuleWins(t *testing.T) {
	// ambient 把 energy 压到 0.2，noise 再抬到 0.7
	defaults := HeuristicDefaults([]string{"ambient", "noise"})
	if defaults[core.DimEnergy] != 0.7 {
		t.Errorf("energy = %v, want later rule's 0.7", defaults[core.DimEnergy])
	}
}

func TestHeuristicDefaultsDeterministic(t *testing.T) {
	genres := []string{"idm", "experimental", "doom"}
	a := HeuristicDefaults(genres)
	b := HeuristicDefaults(genres)
	for dim, v := range a {
		if b[dim] != v {
			t.Fatalf("dim %s differs across calls: %v vs %v", dim, v, b[dim])
		}
	}
}
