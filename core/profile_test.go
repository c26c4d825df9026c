package core

import "testing"

func TestProfileFromResponse(t *testing.T) {
	resp := map[string]any{
		"genres": []any{"idm", "ambient"},
		"scenes": "warp records", // string 与 []any 混用
		"moods":  []any{"dark", 42},
	}
	p := ProfileFromResponse(resp)
	if len(p.Genres) != 2 || p.Genres[0] != "idm" {
		t.Errorf("Genres = %v", p.Genres)
	}
	if len(p.Scenes) != 1 || p.Scenes[0] != "warp records" {
		t.Errorf("Scenes = %v", p.Scenes)
	}
	if len(p.Moods) != 1 {
		t.Errorf("non-string entries must be dropped: %v", p.Moods)
	}
	if p.Raw == nil {
		t.Error("Raw response must be retained")
	}
}

func TestProfileValid(t *testing.T) {
	var nilProfile *TasteProfile
	if nilProfile.Valid() {
		t.Error("nil profile reported valid")
	}
	if (&TasteProfile{EraPreferences: []string{"90s"}}).Valid() {
		t.Error("era-only profile has no query terms")
	}
	if !(&TasteProfile{Genres: []string{"idm"}}).Valid() {
		t.Error("genre-bearing profile reported invalid")
	}
}

func TestProfileTerms(t *testing.T) {
	p := &TasteProfile{
		Genres:           []string{"IDM", "ambient"},
		Scenes:           []string{"idm"}, // 大小写不敏感去重
		LikedDescriptors: []string{" glitchy "},
	}
	terms := p.Terms()
	if len(terms) != 3 {
		t.Fatalf("Terms = %v", terms)
	}
	if terms[0] != "IDM" || terms[2] != "glitchy" {
		t.Errorf("Terms order/trim mismatch: %v", terms)
	}
}

func TestProfileStableSignature(t *testing.T) {
	a := &TasteProfile{Genres: []string{"idm", "ambient"}}
	b := &TasteProfile{Genres: []string{"ambient", "idm"}}
	if a.StableSignature() != b.StableSignature() {
		t.Error("signature must not depend on slice order")
	}
	c := &TasteProfile{Genres: []string{"idm"}}
	if a.StableSignature() == c.StableSignature() {
		t.Error("different profiles must differ")
	}
}

func TestFallbackProfile(t *testing.T) {
	p := FallbackProfile(Preferences{Love: []string{" Grouper "}, Like: []string{"Plaid"}})
	if !p.Valid() {
		t.Fatal("fallback profile must be valid")
	}
	if len(p.Genres) != 2 || p.Genres[0] != "Grouper" {
		t.Errorf("Genres = %v", p.Genres)
	}
	if fallback, _ := p.Raw["fallback"].(bool); !fallback {
		t.Error("fallback marker missing")
	}
}
