package rating

import "github.com/yourusername/line-edge/internal/models"

// ProjectTotal estimates combined points by averaging each offense's scoring
// rate with the opposing defense's rate allowed. It returns nil unless all
// four rates are present.
func ProjectTotal(away, home *models.TeamSnapshot) *float64 {
	if away == nil || home == nil {
		return nil
	}
	awayOff, homeDef := away.Offense.Primary(), home.Defense.Primary()
	homeOff, awayDef := home.Offense.Primary(), away.Defense.Primary()
	if awayOff == nil || homeDef == nil || homeOff == nil || awayDef == nil {
		return nil
	}
	total := (*awayOff+*homeDef)/2 + (*homeOff+*awayDef)/2
	if !usable(total) {
		return nil
	}
	return &total
}
