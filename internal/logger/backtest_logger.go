// Package logger provides backtest run logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for replay and validation runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogRunStarted logs the start of a replay.
func (bl *BacktestLogger) LogRunStarted(runID, strategyName string, games, streams int) {
	bl.WithFields(logrus.Fields{
		"run_id":   runID,
		"strategy": strategyName,
		"games":    games,
		"streams":  streams,
	}).Info("Backtest run started")
}

// LogStreamCompleted logs one league+season stream finishing.
func (bl *BacktestLogger) LogStreamCompleted(runID, stream string, bets int, starting, ending string) {
	bl.WithFields(logrus.Fields{
		"run_id":            runID,
		"stream":            stream,
		"bets":              bets,
		"starting_bankroll": starting,
		"ending_bankroll":   ending,
	}).Info("Stream completed")
}

// LogGameFailure logs a game skipped because its analysis failed.
func (bl *BacktestLogger) LogGameFailure(runID, stream, matchupID, stage string, err error) {
	bl.WithFields(logrus.Fields{
		"run_id":     runID,
		"stream":     stream,
		"matchup_id": matchupID,
		"stage":      stage,
	}).WithError(err).Warn("Game analysis failed, skipping")
}

// LogBetGraded logs a graded bet.
func (bl *BacktestLogger) LogBetGraded(betID, matchupID, result, stake, profit, bankroll string) {
	bl.WithFields(logrus.Fields{
		"bet_id":     betID,
		"matchup_id": matchupID,
		"result":     result,
		"stake":      stake,
		"profit":     profit,
		"bankroll":   bankroll,
	}).Debug("Bet graded")
}

// LogRunCompleted logs the end of a replay.
func (bl *BacktestLogger) LogRunCompleted(runID string, bets, failures int, roi, winRate float64, duration time.Duration) {
	bl.WithFields(logrus.Fields{
		"run_id":      runID,
		"bets":        bets,
		"failures":    failures,
		"roi_pct":     roi,
		"win_rate":    winRate,
		"duration_ms": duration.Milliseconds(),
	}).Info("Backtest run completed")
}

// LogValidationResult logs a validator verdict.
func (bl *BacktestLogger) LogValidationResult(method, verdict string, fields map[string]interface{}) {
	bl.WithFields(logrus.Fields(fields)).WithFields(logrus.Fields{
		"method":  method,
		"verdict": verdict,
	}).Info("Validation completed")
}
