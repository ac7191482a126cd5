package models

import "time"

// Rating component names
const (
	ComponentOffense  = "offense"
	ComponentDefense  = "defense"
	ComponentInjury   = "injury"
	ComponentMomentum = "momentum"
	ComponentHome     = "home_field"
)

// ComponentContribution is one factor's share of a power rating
type ComponentContribution struct {
	Name         string  `json:"name"`
	Raw          float64 `json:"raw"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Missing      bool    `json:"missing"`
	Explanation  string  `json:"explanation"`
}

// PowerRating is a bounded team strength scalar with its breakdown
type PowerRating struct {
	Team                 string                  `json:"team"`
	League               string                  `json:"league"`
	Period               string                  `json:"period"`
	Season               int                     `json:"season,omitempty"`
	AsOf                 time.Time               `json:"as_of"`
	Baseline             float64                 `json:"baseline"`
	Overall              float64                 `json:"overall"`
	Unclamped            float64                 `json:"unclamped"`
	Components           []ComponentContribution `json:"components"`
	ExternalDifferential *float64                `json:"external_differential,omitempty"`
}

// Component returns the named contribution, if present
func (p *PowerRating) Component(name string) (ComponentContribution, bool) {
	if p == nil {
		return ComponentContribution{}, false
	}
	for _, c := range p.Components {
		if c.Name == name {
			return c, true
		}
	}
	return ComponentContribution{}, false
}

// UsableComponents counts components that were not zeroed for missing data
func (p *PowerRating) UsableComponents() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, c := range p.Components {
		if !c.Missing {
			n++
		}
	}
	return n
}
