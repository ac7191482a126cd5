package teams

import "testing"

func fixture(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer([]Team{
		{League: "NFL", Code: "KC", Name: "Kansas City Chiefs", Aliases: []string{"Chiefs", "K.C."}},
		{League: "NFL", Code: "MIA", Name: "Miami Dolphins", Aliases: []string{"Dolphins"}},
		{League: "NCAAF", Code: "MIA", Name: "Miami (FL) Hurricanes", Aliases: []string{"Miami"}},
		{League: "NCAAB", Code: "SJSU", Name: "San José State", Aliases: []string{"San Jose St."}},
	})
	if err != nil {
		t.Fatalf("expected normalizer, got %v", err)
	}
	return n
}

func TestCanonical(t *testing.T) {
	n := fixture(t)
	cases := []struct {
		league, name, want string
		ok                 bool
	}{
		{"NFL", "Kansas City Chiefs", "KC", true},
		{"NFL", "  kansas   city chiefs ", "KC", true},
		{"NFL", "kc", "KC", true},
		{"NFL", "KC", "KC", true},
		{"NCAAF", "Miami", "MIA", true},
		{"NCAAB", "San Jose State", "SJSU", true},
		{"NCAAB", "san jose st", "SJSU", true},
		{"NFL", "Miami", "", false},
		{"NBA", "Chiefs", "", false},
	}
	for _, c := range cases {
		got, ok := n.Canonical(c.league, c.name)
		if ok != c.ok || got != c.want {
			t.Errorf("Canonical(%s, %q) = %q,%v want %q,%v", c.league, c.name, got, ok, c.want, c.ok)
		}
	}
}

func TestResolveFallsBackToInput(t *testing.T) {
	n := fixture(t)
	if got := n.Resolve("NFL", " buf "); got != "BUF" {
		t.Fatalf("expected BUF, got %q", got)
	}
	var empty *Normalizer
	if got := empty.Resolve("NFL", "kc"); got != "KC" {
		t.Fatalf("expected nil normalizer to upper-case, got %q", got)
	}
}

func TestNewNormalizerRejectsCollisions(t *testing.T) {
	_, err := NewNormalizer([]Team{
		{League: "NFL", Code: "NYG", Name: "New York Giants", Aliases: []string{"New York"}},
		{League: "NFL", Code: "NYJ", Name: "New York Jets", Aliases: []string{"New York"}},
	})
	if err == nil {
		t.Fatalf("expected alias collision error")
	}
	if _, err := NewNormalizer([]Team{{League: "NFL", Name: "No Code"}}); err == nil {
		t.Fatalf("expected missing code error")
	}
}
