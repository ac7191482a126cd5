package validation

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/line-edge/internal/models"
)

// Significance verdicts
const (
	VerdictPass         = "PASS"
	VerdictFail         = "FAIL"
	VerdictInsufficient = "INSUFFICIENT_SAMPLE"
)

// SignificanceResult is a one-sample t-test of per-bet profit against zero.
// When Insufficient is set no statistic is reported. Degenerate marks a
// zero-variance sample, which never passes.
type SignificanceResult struct {
	Samples          int                             `json:"samples"`
	Insufficient     *models.InsufficientSampleError `json:"insufficient,omitempty"`
	Mean             float64                         `json:"mean"`
	StdDev           float64                         `json:"std_dev"`
	TStatistic       float64                         `json:"t_statistic"`
	DegreesOfFreedom float64                         `json:"degrees_of_freedom"`
	PValue           float64                         `json:"p_value"`
	ConfidenceLevel  float64                         `json:"confidence_level"`
	CILow            float64                         `json:"ci_low"`
	CIHigh           float64                         `json:"ci_high"`
	Significant      bool                            `json:"significant"`
	Degenerate       bool                            `json:"degenerate,omitempty"`
	Verdict          string                          `json:"verdict"`
}

// TTest runs a two-sided one-sample t-test. The verdict passes only when the
// p-value is below 1-confidence and the mean profit is positive.
func TTest(profits []float64, confidence float64, minSamples int) SignificanceResult {
	n := len(profits)
	res := SignificanceResult{Samples: n, ConfidenceLevel: confidence}
	if n < minSamples || n < 2 {
		res.Insufficient = &models.InsufficientSampleError{Required: max(minSamples, 2), Actual: n}
		res.Verdict = VerdictInsufficient
		return res
	}

	mean, std := stat.MeanStdDev(profits, nil)
	df := float64(n - 1)
	res.Mean = mean
	res.StdDev = std
	res.DegreesOfFreedom = df

	alpha := 1 - confidence
	if std == 0 || math.IsNaN(std) {
		// no spread means no test statistic; a constant ledger is never evidence
		res.CILow, res.CIHigh = mean, mean
		res.PValue = 1
		res.Degenerate = true
	} else {
		se := std / math.Sqrt(float64(n))
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		res.TStatistic = mean / se
		res.PValue = 2 * (1 - dist.CDF(math.Abs(res.TStatistic)))
		critical := dist.Quantile(1 - alpha/2)
		res.CILow = mean - critical*se
		res.CIHigh = mean + critical*se
	}

	res.Significant = res.PValue < alpha
	res.Verdict = VerdictFail
	if res.Significant && mean > 0 {
		res.Verdict = VerdictPass
	}
	return res
}

// LedgerSignificance runs TTest over the graded profits of a ledger
func LedgerSignificance(ledger []*models.BetRecord, confidence float64, minSamples int) SignificanceResult {
	profits := make([]float64, 0, len(ledger))
	for _, b := range ledger {
		if b != nil && b.IsGraded() {
			profits = append(profits, b.Profit.InexactFloat64())
		}
	}
	return TTest(profits, confidence, minSamples)
}
