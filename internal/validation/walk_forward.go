package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/strategy"
)

// FoldBounds are half-open index ranges into the chronological game list
type FoldBounds struct {
	TrainStart int `json:"train_start"`
	TrainEnd   int `json:"train_end"`
	TestStart  int `json:"test_start"`
	TestEnd    int `json:"test_end"`
}

// Fold is one walk-forward window. The threshold is chosen from the train
// window alone and then applied unchanged to the test window.
type Fold struct {
	Index        int                         `json:"index"`
	Bounds       FoldBounds                  `json:"bounds"`
	TrainFrom    time.Time                   `json:"train_from"`
	TrainTo      time.Time                   `json:"train_to"`
	TestFrom     time.Time                   `json:"test_from"`
	TestTo       time.Time                   `json:"test_to"`
	Tuned        bool                        `json:"tuned"`
	Threshold    float64                     `json:"threshold,omitempty"`
	TrainBest    *ThresholdCandidate         `json:"train_best,omitempty"`
	TestMetrics  backtest.PerformanceMetrics `json:"test_metrics"`
	TestFailures int                         `json:"test_failures"`
	TestLedger   []*models.BetRecord         `json:"-"`
}

// WalkForwardResult aggregates out-of-sample results across folds
type WalkForwardResult struct {
	Folds            []Fold                      `json:"folds"`
	Pooled           backtest.PerformanceMetrics `json:"pooled"`
	ConsistencyScore float64                     `json:"consistency_score"`
	OverfitScore     float64                     `json:"overfit_score"`
	AverageTestROI   float64                     `json:"average_test_roi"`
}

// ToJSON exports the walk-forward result
func (w WalkForwardResult) ToJSON() string {
	data, _ := json.Marshal(w)
	return string(data)
}

// PlanFolds slides a train+test window over n games by step. Only folds with
// a complete test window are produced.
func PlanFolds(n, train, test, step int) []FoldBounds {
	if train <= 0 || test <= 0 || step <= 0 {
		return nil
	}
	var folds []FoldBounds
	for start := 0; start+train+test <= n; start += step {
		folds = append(folds, FoldBounds{
			TrainStart: start,
			TrainEnd:   start + train,
			TestStart:  start + train,
			TestEnd:    start + train + test,
		})
	}
	return folds
}

// completedChronological keeps games with a final score ordered by date then
// matchup id
func completedChronological(games []*models.HistoricalGame) []*models.HistoricalGame {
	out := make([]*models.HistoricalGame, 0, len(games))
	for _, g := range games {
		if g != nil && g.IsCompleted() {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].MatchupID < out[j].MatchupID
	})
	return out
}

// WalkForward runs every fold. A fold whose train window has no eligible
// threshold replays the test window with the untuned baseline strategy.
func (v *Validator) WalkForward(ctx context.Context, games []*models.HistoricalGame) (WalkForwardResult, error) {
	ordered := completedChronological(games)
	bounds := PlanFolds(len(ordered), v.config.TrainGames, v.config.TestGames, v.config.StepGames)
	if len(bounds) == 0 {
		return WalkForwardResult{}, &models.InsufficientSampleError{
			Required: v.config.TrainGames + v.config.TestGames,
			Actual:   len(ordered),
		}
	}

	result := WalkForwardResult{Folds: make([]Fold, 0, len(bounds))}
	for i, b := range bounds {
		train := ordered[b.TrainStart:b.TrainEnd]
		test := ordered[b.TestStart:b.TestEnd]
		fold, err := v.runFold(ctx, i, b, train, test)
		if err != nil {
			return WalkForwardResult{}, fmt.Errorf("fold %d: %w", i, err)
		}
		result.Folds = append(result.Folds, fold)
	}

	result.Pooled = backtest.CalculateMetrics(pooledLedger(result.Folds), v.engine.Config().InitialBankroll, v.engine.Config().RiskFreeRate)
	result.ConsistencyScore = CalculateConsistency(result.Folds)
	result.OverfitScore = calculateOverfitScore(result.Folds)
	for _, f := range result.Folds {
		result.AverageTestROI += f.TestMetrics.ROI
	}
	result.AverageTestROI /= float64(len(result.Folds))

	v.logger.LogValidationResult("walk_forward", fmt.Sprintf("%d folds", len(result.Folds)), map[string]interface{}{
		"consistency":      result.ConsistencyScore,
		"overfit":          result.OverfitScore,
		"pooled_roi":       result.Pooled.ROI,
		"average_test_roi": result.AverageTestROI,
	})
	return result, nil
}

func (v *Validator) runFold(ctx context.Context, index int, b FoldBounds, train, test []*models.HistoricalGame) (Fold, error) {
	fold := Fold{
		Index:     index,
		Bounds:    b,
		TrainFrom: train[0].Date,
		TrainTo:   train[len(train)-1].Date,
		TestFrom:  test[0].Date,
		TestTo:    test[len(test)-1].Date,
	}

	sweep, err := v.OptimizeThreshold(ctx, train)
	if err != nil {
		return Fold{}, fmt.Errorf("train: %w", err)
	}

	var strat strategy.Strategy = v.engine.Strategy()
	if sweep.Best != nil {
		best := *sweep.Best
		fold.Tuned = true
		fold.Threshold = best.Threshold
		fold.TrainBest = &best
		strat, err = v.factory(best.Threshold)
		if err != nil {
			return Fold{}, err
		}
	}

	summary, err := v.engine.WithStrategy(strat).RunStreams(ctx, test)
	if err != nil {
		return Fold{}, fmt.Errorf("test: %w", err)
	}
	fold.TestMetrics = summary.Metrics
	fold.TestFailures = summary.Failures
	fold.TestLedger = summary.Ledger
	return fold, nil
}

// pooledLedger concatenates fold ledgers. Overlapping test windows keep the
// earliest fold's bet for a matchup.
func pooledLedger(folds []Fold) []*models.BetRecord {
	seen := make(map[string]bool)
	var ledger []*models.BetRecord
	for _, f := range folds {
		for _, b := range f.TestLedger {
			if seen[b.Edge.MatchupID] {
				continue
			}
			seen[b.Edge.MatchupID] = true
			ledger = append(ledger, b)
		}
	}
	sort.SliceStable(ledger, func(i, j int) bool { return ledger[i].GameDate.Before(ledger[j].GameDate) })
	return ledger
}

// CalculateConsistency returns the share of folds with a profitable test window
func CalculateConsistency(folds []Fold) float64 {
	if len(folds) == 0 {
		return 0
	}
	profitable := 0
	for _, f := range folds {
		if f.TestMetrics.ROI > 0 {
			profitable++
		}
	}
	return float64(profitable) / float64(len(folds))
}

// calculateOverfitScore compares train-selected ROI with realized test ROI
// over tuned folds. 0 means no decay; 1 means the whole train edge vanished.
func calculateOverfitScore(folds []Fold) float64 {
	trainROI, testROI := 0.0, 0.0
	n := 0
	for _, f := range folds {
		if f.TrainBest == nil {
			continue
		}
		trainROI += f.TrainBest.ROI
		testROI += f.TestMetrics.ROI
		n++
	}
	if n == 0 || trainROI == 0 {
		return 0
	}
	return (trainROI - testROI) / math.Abs(trainROI)
}
