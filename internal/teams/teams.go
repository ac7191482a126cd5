// Package teams maps the many spellings of a team name onto one canonical code.
package teams

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Team is one canonical team entry
type Team struct {
	League  string   `json:"league"`
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// Normalizer resolves names, codes and aliases to canonical codes. It is
// immutable once built and safe for concurrent use.
type Normalizer struct {
	byLeague map[string]map[string]string
	teams    map[string][]Team
}

// NewNormalizer indexes teams per league. Two teams in one league sharing a
// normalized name or alias is an error.
func NewNormalizer(entries []Team) (*Normalizer, error) {
	n := &Normalizer{
		byLeague: make(map[string]map[string]string),
		teams:    make(map[string][]Team),
	}
	for _, t := range entries {
		if t.League == "" || t.Code == "" {
			return nil, fmt.Errorf("team entry %q requires league and code", t.Name)
		}
		idx, ok := n.byLeague[t.League]
		if !ok {
			idx = make(map[string]string)
			n.byLeague[t.League] = idx
		}
		keys := append([]string{t.Code, t.Name}, t.Aliases...)
		for _, k := range keys {
			key := normalizeName(k)
			if key == "" {
				continue
			}
			if existing, dup := idx[key]; dup && existing != t.Code {
				return nil, fmt.Errorf("%s: %q maps to both %s and %s", t.League, k, existing, t.Code)
			}
			idx[key] = t.Code
		}
		n.teams[t.League] = append(n.teams[t.League], t)
	}
	return n, nil
}

// Canonical returns the canonical code for a name within a league
func (n *Normalizer) Canonical(league, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	code, ok := n.byLeague[league][normalizeName(name)]
	return code, ok
}

// Resolve returns the canonical code, or the trimmed upper-cased input when the
// name is unknown
func (n *Normalizer) Resolve(league, name string) string {
	if code, ok := n.Canonical(league, name); ok {
		return code
	}
	return strings.ToUpper(strings.TrimSpace(name))
}

// Teams returns the entries registered for a league
func (n *Normalizer) Teams(league string) []Team {
	if n == nil {
		return nil
	}
	out := make([]Team, len(n.teams[league]))
	copy(out, n.teams[league])
	return out
}

func normalizeName(name string) string {
	name = strings.ToLower(name)

	// strip accents
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)

	name = strings.Map(func(r rune) rune {
		if r == '.' || r == '\'' {
			return -1
		}
		return r
	}, name)

	return strings.Join(strings.Fields(name), " ")
}
