// Package logger provides edge-detection logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// EdgeLogger provides dedicated logging for rating and edge decisions.
type EdgeLogger struct {
	*logrus.Entry
}

// NewEdgeLogger creates a new edge logger.
func NewEdgeLogger(baseLogger *logrus.Logger) *EdgeLogger {
	return &EdgeLogger{
		Entry: baseLogger.WithField("component", "edge"),
	}
}

// LogEdgeDetected logs a detected edge.
func (el *EdgeLogger) LogEdgeDetected(matchupID, league, side, tier string, predicted, market, magnitude, confidence, stakeFraction float64) {
	el.WithFields(logrus.Fields{
		"matchup_id":     matchupID,
		"league":         league,
		"side":           side,
		"tier":           tier,
		"predicted_line": predicted,
		"market_line":    market,
		"magnitude":      magnitude,
		"confidence":     confidence,
		"stake_fraction": stakeFraction,
	}).Info("Edge detected")
}

// LogNoEdge logs a matchup that produced no edge.
func (el *EdgeLogger) LogNoEdge(matchupID, league, reason, detail string) {
	el.WithFields(logrus.Fields{
		"matchup_id": matchupID,
		"league":     league,
		"reason":     reason,
		"detail":     detail,
	}).Debug("No edge")
}

// LogStakeSized logs the currency stake derived from a stake fraction.
func (el *EdgeLogger) LogStakeSized(matchupID string, stakeFraction float64, bankroll, stake string) {
	el.WithFields(logrus.Fields{
		"matchup_id":     matchupID,
		"stake_fraction": stakeFraction,
		"bankroll":       bankroll,
		"stake":          stake,
	}).Debug("Stake sized")
}
