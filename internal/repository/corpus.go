package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/teams"
)

// Corpus is the on-disk shape of a historical data set
type Corpus struct {
	Teams     []teams.Team            `json:"teams,omitempty"`
	Games     []models.HistoricalGame `json:"games"`
	Snapshots []models.TeamSnapshot   `json:"snapshots"`
}

// Rejection records a corpus entry that failed validation and was skipped
type Rejection struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

var recordValidator = validator.New()

// LoadCorpus reads a JSON corpus file
func LoadCorpus(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()
	return ParseCorpus(f)
}

// ParseCorpus decodes a JSON corpus
func ParseCorpus(r io.Reader) (*Corpus, error) {
	var c Corpus
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode corpus: %w", err)
	}
	return &c, nil
}

// validateGame checks struct tags plus the market snapshot ordering a replay
// depends on
func validateGame(g *models.HistoricalGame) []string {
	var problems []string
	if err := recordValidator.Struct(g); err != nil {
		problems = append(problems, fieldErrors(err)...)
	}
	if g.AwayTeam != "" && g.AwayTeam == g.HomeTeam {
		problems = append(problems, "away_team equals home_team")
	}
	if (g.AwayScore == nil) != (g.HomeScore == nil) {
		problems = append(problems, "final score must carry both sides")
	}
	if g.AwayScore != nil && (*g.AwayScore < 0 || *g.HomeScore < 0) {
		problems = append(problems, "scores cannot be negative")
	}
	if g.Opening != nil && g.Opening.Kind != models.SnapshotOpening {
		problems = append(problems, fmt.Sprintf("opening line has kind %q", g.Opening.Kind))
	}
	if g.Closing != nil && g.Closing.Kind != models.SnapshotClosing {
		problems = append(problems, fmt.Sprintf("closing line has kind %q", g.Closing.Kind))
	}
	if g.Opening != nil && g.Closing != nil && g.Closing.Timestamp.Before(g.Opening.Timestamp) {
		problems = append(problems, "closing line predates opening line")
	}
	for _, rep := range []*models.InjurySnapshot{g.AwayInjuries, g.HomeInjuries} {
		if rep == nil {
			continue
		}
		for _, p := range rep.Players {
			if err := recordValidator.Struct(p); err != nil {
				problems = append(problems, fieldErrors(err)...)
			}
		}
	}
	return problems
}

func validateSnapshot(s *models.TeamSnapshot) []string {
	var problems []string
	if err := recordValidator.Struct(s); err != nil {
		problems = append(problems, fieldErrors(err)...)
	}
	return problems
}

func fieldErrors(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s failed '%s'", strings.ToLower(fe.Namespace()), fe.Tag()))
	}
	return out
}
