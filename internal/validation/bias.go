package validation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/models"
)

// minBiasBets is the population size below which a win-rate gap is not flagged
const minBiasBets = 10

// biasGapPoints is the win-rate gap, in percentage points, that flags skew
const biasGapPoints = 10.0

// Population summarizes one slice of the ledger
type Population struct {
	Name    string  `json:"name"`
	Bets    int     `json:"bets"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Pushes  int     `json:"pushes"`
	WinRate float64 `json:"win_rate"`
	ROI     float64 `json:"roi"`
	Profit  float64 `json:"profit"`
}

// BiasReport splits the ledger into complementary populations
type BiasReport struct {
	Home                Population `json:"home"`
	Away                Population `json:"away"`
	Favorite            Population `json:"favorite"`
	Underdog            Population `json:"underdog"`
	PickEm              Population `json:"pick_em"`
	LineThreshold       float64    `json:"line_threshold"`
	HomeAwayGap         float64    `json:"home_away_gap"`
	FavoriteUnderdogGap float64    `json:"favorite_underdog_gap"`
	Flags               []string   `json:"flags"`
}

// DetectBias reports home/away and favorite/underdog splits. Bets whose side
// is neither favored nor getting at least lineThreshold points are pick'em.
func DetectBias(ledger []*models.BetRecord, lineThreshold float64) BiasReport {
	var home, away, fav, dog, pick []*models.BetRecord
	for _, b := range ledger {
		if b == nil || !b.IsGraded() {
			continue
		}
		switch b.Edge.Side {
		case models.SideHome:
			home = append(home, b)
		case models.SideAway:
			away = append(away, b)
		}
		switch {
		case b.Edge.IsFavorite(lineThreshold):
			fav = append(fav, b)
		case b.Edge.IsUnderdog(lineThreshold):
			dog = append(dog, b)
		default:
			pick = append(pick, b)
		}
	}

	report := BiasReport{
		Home:          population("home", home),
		Away:          population("away", away),
		Favorite:      population("favorite", fav),
		Underdog:      population("underdog", dog),
		PickEm:        population("pick_em", pick),
		LineThreshold: lineThreshold,
		Flags:         []string{},
	}
	report.HomeAwayGap = report.Home.WinRate - report.Away.WinRate
	report.FavoriteUnderdogGap = report.Favorite.WinRate - report.Underdog.WinRate

	if flag := skewFlag(report.Home, report.Away); flag != "" {
		report.Flags = append(report.Flags, flag)
	}
	if flag := skewFlag(report.Favorite, report.Underdog); flag != "" {
		report.Flags = append(report.Flags, flag)
	}
	return report
}

func population(name string, bets []*models.BetRecord) Population {
	m := backtest.CalculateMetrics(bets, decimal.Zero, 0)
	return Population{
		Name:    name,
		Bets:    m.TotalBets,
		Wins:    m.Wins,
		Losses:  m.Losses,
		Pushes:  m.Pushes,
		WinRate: m.WinRate,
		ROI:     m.ROI,
		Profit:  m.TotalProfit.InexactFloat64(),
	}
}

func skewFlag(a, b Population) string {
	if a.Bets < minBiasBets || b.Bets < minBiasBets {
		return ""
	}
	gap := a.WinRate - b.WinRate
	if math.Abs(gap) < biasGapPoints {
		return ""
	}
	return fmt.Sprintf("%s vs %s win rate gap %.1f points", a.Name, b.Name, gap)
}
