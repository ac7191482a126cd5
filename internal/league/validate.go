package league

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/line-edge/internal/models"
)

const weightTolerance = 1e-6

var structValidator = validator.New()

// Validate rejects out-of-range weights, thresholds and tables
func (l League) Validate() error {
	if err := structValidator.Struct(l); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return models.NewConfigurationError(
				fmt.Sprintf("%s.%s", l.Code, fe.Namespace()),
				"failed '%s' (value %v)", fe.Tag(), fe.Value(),
			)
		}
		return models.NewConfigurationError(l.Code, "%v", err)
	}
	return l.validateCrossField()
}

func (l League) validateCrossField() error {
	if sum := l.Rating.Weights.Sum(); math.Abs(sum-1) > weightTolerance {
		return models.NewConfigurationError(l.Code+".rating.weights", "must sum to 1, got %.6f", sum)
	}
	if sum := l.Rating.PrimaryWeight + l.Rating.SecondaryWeight; math.Abs(sum-1) > weightTolerance {
		return models.NewConfigurationError(l.Code+".rating.primary_weight", "primary and secondary must sum to 1, got %.6f", sum)
	}
	if l.Rating.Baseline < l.Rating.Min || l.Rating.Baseline > l.Rating.Max {
		return models.NewConfigurationError(l.Code+".rating.baseline", "%.2f outside [%.2f, %.2f]", l.Rating.Baseline, l.Rating.Min, l.Rating.Max)
	}
	for i := 1; i < len(l.Weather.Temperature); i++ {
		if l.Weather.Temperature[i].Limit <= l.Weather.Temperature[i-1].Limit {
			return models.NewConfigurationError(l.Code+".weather.temperature", "bands must be ascending")
		}
	}
	for i := 1; i < len(l.Weather.Wind); i++ {
		if l.Weather.Wind[i].Limit >= l.Weather.Wind[i-1].Limit {
			return models.NewConfigurationError(l.Code+".weather.wind", "bands must be descending")
		}
	}
	for _, b := range append(append([]Band{}, l.Weather.Temperature...), l.Weather.Wind...) {
		if math.Abs(b.Points) > l.Weather.Cap {
			return models.NewConfigurationError(l.Code+".weather", "band %.1f exceeds cap %.1f", b.Points, l.Weather.Cap)
		}
	}
	for p, pts := range l.Weather.Precipitation {
		if math.Abs(pts) > l.Weather.Cap {
			return models.NewConfigurationError(l.Code+".weather.precipitation", "%s %.1f exceeds cap %.1f", p, pts, l.Weather.Cap)
		}
	}
	return nil
}
