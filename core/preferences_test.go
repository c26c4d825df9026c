package core

import "testing"

func TestPreferencesNormalized(t *testing.T) {
	p := Preferences{
		Love:    []string{"  Aphex Twin ", "", "Boards of Canada"},
		Dislike: []string{"   "},
	}
	n := p.Normalized()
	if len(n.Love) != 2 || n.Love[0] != "Aphex Twin" {
		t.Errorf("Love = %v", n.Love)
	}
	if len(n.Dislike) != 0 {
		t.Errorf("Dislike = %v", n.Dislike)
	}
	// 原值不被修改
	if p.Love[0] != "  Aphex Twin " {
		t.Error("Normalized must not mutate the receiver")
	}
}

func TestPreferencesHashOrderInsensitive(t *testing.T) {
	a := Preferences{Love: []string{"Autechre", "Plaid"}, Hate: []string{"Drake"}}
	b := Preferences{Love: []string{"Plaid", "Autechre"}, Hate: []string{"Drake"}}
	if a.Hash() != b.Hash() {
		t.Error("hash must not depend on list order")
	}

	c := Preferences{Love: []string{"Autechre"}, Hate: []string{"Drake"}}
	if a.Hash() == c.Hash() {
		t.Error("different preferences must hash differently")
	}
}

func TestPreferencesHashIgnoresWhitespace(t *testing.T) {
	a := Preferences{Love: []string{"Grouper"}}
	b := Preferences{Love: []string{"  Grouper  "}}
	if a.Hash() != b.Hash() {
		t.Error("hash must normalize whitespace")
	}
}

func TestPreferencesBucketsAndSets(t *testing.T) {
	p := Preferences{
		Love: []string{"Aphex Twin"},
		Hate: []string{"Drake", "drake"},
	}
	if got := p.Bucket(BucketLove); len(got) != 1 {
		t.Errorf("Bucket(love) = %v", got)
	}
	if got := p.Bucket("unknown"); got != nil {
		t.Errorf("Bucket(unknown) = %v", got)
	}

	hate := p.NormNameSet(BucketHate)
	if len(hate) != 1 {
		t.Errorf("NormNameSet should fold case, got %v", hate)
	}
	if _, ok := hate["drake"]; !ok {
		t.Error("expected normalized name in set")
	}

	all := p.AllNormNames()
	if len(all) != 2 {
		t.Errorf("AllNormNames = %v", all)
	}
}

func TestPreferencesEmpty(t *testing.T) {
	if !(Preferences{Love: []string{"  "}}).Empty() {
		t.Error("whitespace-only preferences should be empty")
	}
	if (Preferences{Like: []string{"Plaid"}}).Empty() {
		t.Error("non-empty preferences reported empty")
	}
}
