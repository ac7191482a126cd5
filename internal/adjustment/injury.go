package adjustment

import (
	"fmt"

	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/models"
)

// InjuryPoints sums the table value of every listed player
func InjuryPoints(table league.InjuryTable, snap *models.InjurySnapshot) float64 {
	if snap == nil {
		return 0
	}
	var total float64
	for _, p := range snap.Players {
		total += table.Points(p.Position, p.Severity)
	}
	return total
}

// Injury returns the game-level spread adjustment. Away injuries move the
// line toward home and home injuries toward away.
func Injury(table league.InjuryTable, away, home *models.InjurySnapshot) models.Adjustment {
	b := newBuilder(models.AdjustmentInjury, models.MarketSpread, table.Cap)
	if pts := InjuryPoints(table, away); pts != 0 {
		b.add(fmt.Sprintf("away injuries (%d)", len(away.Players)), -pts)
	}
	if pts := InjuryPoints(table, home); pts != 0 {
		b.add(fmt.Sprintf("home injuries (%d)", len(home.Players)), pts)
	}
	return b.build("no material injuries")
}

// SummarizeInjuries aggregates an injury report into severity tiers for the
// rating engine
func SummarizeInjuries(table league.InjuryTable, snap *models.InjurySnapshot) *models.InjuryImpact {
	if snap == nil {
		return nil
	}
	impact := &models.InjuryImpact{Team: snap.Team}
	for _, p := range snap.Players {
		pts := table.Points(p.Position, p.Severity)
		var tier *models.InjuryTier
		switch p.Severity {
		case models.SeverityOut:
			tier = &impact.Out
		case models.SeverityDoubtful:
			tier = &impact.Doubtful
		case models.SeverityQuestionable:
			tier = &impact.Questionable
		default:
			continue
		}
		tier.Count++
		tier.ImpactPoints += pts
	}
	return impact
}
