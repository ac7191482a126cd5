package adjustment

import (
	"math"

	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/models"
)

// Situational returns the spread adjustment for rest, travel, altitude and
// motivation. Positive points favor the away side. The opening market line
// decides which side is the underdog for the rivalry bump; it may be nil.
func Situational(table league.SituationalTable, ctx *models.SituationalContext, market *models.MarketLine) models.Adjustment {
	b := newBuilder(models.AdjustmentSituational, models.MarketSpread, table.Cap)
	if ctx == nil {
		return b.build("no situational context")
	}

	b.add("rest", rest(table, ctx.AwayRestDays)-rest(table, ctx.HomeRestDays))
	b.add("travel", travel(table, ctx.HomeTravelMiles)-travel(table, ctx.AwayTravelMiles))

	if ctx.AwayAltitudeGainFt > table.AltitudeThresholdFt {
		b.add("away altitude", -table.AltitudePenalty)
	}
	if ctx.HomeAltitudeGainFt > table.AltitudeThresholdFt {
		b.add("home altitude", table.AltitudePenalty)
	}

	if ctx.Rivalry && market != nil {
		switch market.FavoredSide() {
		case models.SideAway:
			b.add("rivalry underdog", -table.Rivalry)
		case models.SideHome:
			b.add("rivalry underdog", table.Rivalry)
		}
	}

	if ctx.AwayEliminated {
		b.add("away eliminated", -table.Elimination)
	}
	if ctx.HomeEliminated {
		b.add("home eliminated", table.Elimination)
	}
	if ctx.AwayPlayoffImplications {
		b.add("away playoff implications", table.PlayoffImplications)
	}
	if ctx.HomePlayoffImplications {
		b.add("home playoff implications", -table.PlayoffImplications)
	}
	return b.build("neutral situation")
}

// rest is one team's bounded rest edge relative to the league baseline
func rest(table league.SituationalTable, days int) float64 {
	v := float64(days-table.BaselineRestDays) * table.RestPerDay
	capped, _ := capPoints(v, table.RestCap)
	return capped
}

// travel is one team's travel penalty as a positive number
func travel(table league.SituationalTable, miles float64) float64 {
	return math.Min(miles/1000*table.TravelPer1000, table.TravelCap)
}
