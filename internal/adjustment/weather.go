package adjustment

import (
	"github.com/yourusername/line-edge/internal/league"
	"github.com/yourusername/line-edge/internal/models"
)

// Weather returns the total-market adjustment for game conditions. Indoor
// venues and missing conditions return zero.
func Weather(table league.WeatherTable, w *models.WeatherConditions, outdoor bool) models.Adjustment {
	b := newBuilder(models.AdjustmentWeather, models.MarketTotal, table.Cap)
	if !outdoor || w == nil || w.Indoor {
		return b.build("indoor or no conditions")
	}

	if w.TemperatureF != nil {
		for _, band := range table.Temperature {
			if *w.TemperatureF < band.Limit {
				b.add("temperature", band.Points)
				break
			}
		}
	}
	if w.WindMPH != nil {
		for _, band := range table.Wind {
			if *w.WindMPH > band.Limit {
				b.add("wind", band.Points)
				break
			}
		}
	}
	if pts, ok := table.Precipitation[w.Precipitation]; ok {
		b.add(string(w.Precipitation), pts)
	}
	return b.build("neutral conditions")
}
