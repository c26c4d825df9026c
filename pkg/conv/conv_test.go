package conv

import "testing"

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 0.42, 0.42, true},
		{"float32", float32(0.5), 0.5, true},
		{"int", 3, 3, true},
		{"int64", int64(-7), -7, true},
		{"int32", int32(9), 9, true},
		{"string is rejected", "high", 0, false},
		{"bool is rejected", true, 0, false},
		{"nil is rejected", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.in)
			if ok != tt.ok {
				t.Fatalf("ToFloat64(%v) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ToFloat64(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapToFloat64(t *testing.T) {
	payload := map[string]any{
		"energy":       0.8,
		"tempo":        128,
		"track_name":   "Rhubarb",
		"instrumental": true,
	}
	got := MapToFloat64(payload)
	if len(got) != 2 {
		t.Fatalf("MapToFloat64 kept %d entries, want 2: %v", len(got), got)
	}
	if got["energy"] != 0.8 {
		t.Errorf("energy = %v, want 0.8", got["energy"])
	}
	if got["tempo"] != 128 {
		t.Errorf("tempo = %v, want 128", got["tempo"])
	}
	if MapToFloat64(nil) != nil {
		t.Error("MapToFloat64(nil) should return nil")
	}
}

func TestConfigGet(t *testing.T) {
	cfg := map[string]any{
		"expr":  "candidate.popularity <= 40",
		"fuzzy": true,
		"limit": 10,
	}
	if got := ConfigGet(cfg, "expr", ""); got != "candidate.popularity <= 40" {
		t.Errorf("expr = %q", got)
	}
	if !ConfigGet(cfg, "fuzzy", false) {
		t.Error("fuzzy should be true")
	}
	// 类型不符时回落到默认值
	if got := ConfigGet(cfg, "limit", "none"); got != "none" {
		t.Errorf("limit as string = %q, want default", got)
	}
	if got := ConfigGet(cfg, "missing", 0.5); got != 0.5 {
		t.Errorf("missing key = %v, want default 0.5", got)
	}
	if got := ConfigGet[string](nil, "expr", "fallback"); got != "fallback" {
		t.Errorf("nil map = %q, want fallback", got)
	}
}

func TestConfigGetInt64(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
		key  string
		want int64
	}{
		{"int from yaml", map[string]any{"n": 25}, "n", 25},
		{"int64 passthrough", map[string]any{"n": int64(7)}, "n", 7},
		{"float64 from json", map[string]any{"n": 30.0}, "n", 30},
		{"missing key uses default", map[string]any{}, "n", 99},
		{"non-numeric uses default", map[string]any{"n": "many"}, "n", 99},
		{"nil map uses default", nil, "n", 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConfigGetInt64(tt.cfg, tt.key, 99); got != tt.want {
				t.Errorf("ConfigGetInt64 = %d, want %d", got, tt.want)
			}
		})
	}
}
