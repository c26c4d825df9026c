package core

import (
	"math"
	"testing"
)

func TestEmbeddingSet(t *testing.T) {
	e := NewEmbedding()
	e.Set(DimEnergy, 1.7)
	if e[DimEnergy] != 1.0 {
		t.Errorf("Set should clamp to [0,1], got %v", e[DimEnergy])
	}
	e.Set(DimDarkness, -0.3)
	if e[DimDarkness] != 0 {
		t.Errorf("Set should clamp negatives, got %v", e[DimDarkness])
	}
	e.Set("bogus", 0.5)
	if _, ok := e["bogus"]; ok {
		t.Error("unknown dimension must be ignored")
	}
}

func TestEmbeddingComplete(t *testing.T) {
	e := NewEmbedding()
	if e.Complete() {
		t.Error("empty embedding reported complete")
	}
	for _, dim := range Dimensions() {
		e.Set(dim, 0.4)
	}
	if !e.Complete() {
		t.Error("fully populated embedding reported incomplete")
	}
	e[DimTempo] = math.NaN()
	if e.Complete() {
		t.Error("NaN dimension reported complete")
	}
}

func TestEmbeddingFillDefaults(t *testing.T) {
	e := NewEmbedding()
	e.Set(DimEnergy, 0.9)
	e.FillDefaults(map[string]float64{DimHarshness: 0.8})

	if !e.Complete() {
		t.Fatal("FillDefaults must leave a complete embedding")
	}
	if e[DimEnergy] != 0.9 {
		t.Error("existing values must be preserved")
	}
	if e[DimHarshness] != 0.8 {
		t.Error("defaults must apply to missing dimensions")
	}
	if e[DimTempo] != 0.5 {
		t.Error("dimensions without defaults fall to midpoint")
	}
}

func TestEmbeddingVectorOrder(t *testing.T) {
	e := NewEmbedding()
	e.Set(DimEnergy, 0.1)
	e.Set(DimHarshness, 0.9)
	v := e.Vector()
	if len(v) != DimensionCount {
		t.Fatalf("Vector len = %d", len(v))
	}
	if v[0] != 0.1 || v[DimensionCount-1] != 0.9 {
		t.Errorf("vector order mismatch: %v", v)
	}
}

func TestUniformWeights(t *testing.T) {
	w := UniformWeights()
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		t.Errorf("uniform weights sum = %v", w.Sum())
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{3, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
