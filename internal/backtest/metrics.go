package backtest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/line-edge/internal/models"
)

// profitFactorCeiling stands in for an infinite profit factor (no losses)
const profitFactorCeiling = 999

// PerformanceMetrics represents aggregate statistics over a bet ledger.
// Percentages are expressed 0-100.
type PerformanceMetrics struct {
	TotalBets         int             `json:"total_bets"`
	Wins              int             `json:"wins"`
	Losses            int             `json:"losses"`
	Pushes            int             `json:"pushes"`
	WinRate           float64         `json:"win_rate"`
	TotalStaked       decimal.Decimal `json:"total_staked"`
	TotalProfit       decimal.Decimal `json:"total_profit"`
	ROI               float64         `json:"roi"`
	SharpeRatio       float64         `json:"sharpe_ratio"`
	SortinoRatio      float64         `json:"sortino_ratio"`
	MaxDrawdown       float64         `json:"max_drawdown"`
	AverageCLV        float64         `json:"average_clv"`
	PositiveCLVRate   float64         `json:"positive_clv_rate"`
	CLVSamples        int             `json:"clv_samples"`
	LongestWinStreak  int             `json:"longest_win_streak"`
	LongestLossStreak int             `json:"longest_loss_streak"`
	ProfitFactor      float64         `json:"profit_factor"`
	AverageWin        float64         `json:"average_win"`
	AverageLoss       float64         `json:"average_loss"`
	LargestWin        float64         `json:"largest_win"`
	LargestLoss       float64         `json:"largest_loss"`
	Expectancy        float64         `json:"expectancy"`
	ValueAtRisk95     float64         `json:"var_95"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
}

// CalculateMetrics aggregates the graded bets of an ordered ledger. The
// drawdown curve starts at startingBankroll and adds each profit in order.
func CalculateMetrics(ledger []*models.BetRecord, startingBankroll decimal.Decimal, riskFreeRate float64) PerformanceMetrics {
	bets := gradedOnly(ledger)
	metrics := PerformanceMetrics{
		TotalStaked: decimal.Zero,
		TotalProfit: decimal.Zero,
	}
	if len(bets) == 0 {
		return metrics
	}

	profits := make([]float64, 0, len(bets))
	for _, b := range bets {
		switch b.Result {
		case models.BetResultWin:
			metrics.Wins++
		case models.BetResultLoss:
			metrics.Losses++
		case models.BetResultPush:
			metrics.Pushes++
		}
		metrics.TotalStaked = metrics.TotalStaked.Add(b.Stake)
		metrics.TotalProfit = metrics.TotalProfit.Add(b.Profit)
		profits = append(profits, b.Profit.InexactFloat64())

		if metrics.StartDate.IsZero() || b.GameDate.Before(metrics.StartDate) {
			metrics.StartDate = b.GameDate
		}
		if b.GameDate.After(metrics.EndDate) {
			metrics.EndDate = b.GameDate
		}
	}

	metrics.TotalBets = len(bets)
	metrics.WinRate = calculateWinRate(metrics.Wins, metrics.TotalBets)
	if metrics.TotalStaked.IsPositive() {
		metrics.ROI = metrics.TotalProfit.Div(metrics.TotalStaked).InexactFloat64() * 100
	}
	metrics.SharpeRatio = calculateSharpeRatio(profits, riskFreeRate)
	metrics.SortinoRatio = calculateSortinoRatio(profits, riskFreeRate)
	metrics.MaxDrawdown = calculateMaxDrawdown(profits, startingBankroll.InexactFloat64()) * 100
	metrics.AverageCLV, metrics.PositiveCLVRate, metrics.CLVSamples = calculateCLVStats(bets)
	metrics.LongestWinStreak, metrics.LongestLossStreak = calculateStreaks(bets)
	metrics.ProfitFactor = calculateProfitFactor(profits)
	metrics.AverageWin, metrics.AverageLoss, metrics.LargestWin, metrics.LargestLoss = calculateBetStats(profits)
	metrics.Expectancy = metrics.TotalProfit.InexactFloat64() / float64(metrics.TotalBets)
	metrics.ValueAtRisk95 = calculateVaR(profits, 0.95)

	return metrics
}

// ToJSON exports metrics to JSON
func (m PerformanceMetrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func gradedOnly(ledger []*models.BetRecord) []*models.BetRecord {
	out := make([]*models.BetRecord, 0, len(ledger))
	for _, b := range ledger {
		if b != nil && b.IsGraded() {
			out = append(out, b)
		}
	}
	return out
}

// calculateSharpeRatio uses the sample standard deviation of per-bet profit.
// Fewer than two bets or zero variance yield 0.
func calculateSharpeRatio(profits []float64, riskFreeRate float64) float64 {
	if len(profits) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(profits, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return (mean - riskFreeRate) / std
}

func calculateSortinoRatio(profits []float64, riskFreeRate float64) float64 {
	if len(profits) < 2 {
		return 0
	}
	downside := 0.0
	for _, p := range profits {
		if p < 0 {
			downside += p * p
		}
	}
	if downside == 0 {
		return 0
	}
	deviation := math.Sqrt(downside / float64(len(profits)-1))
	return (stat.Mean(profits, nil) - riskFreeRate) / deviation
}

// calculateMaxDrawdown walks starting + cumulative profit and returns the
// largest peak-to-trough decline as a fraction of the peak
func calculateMaxDrawdown(profits []float64, starting float64) float64 {
	value := starting
	peak := starting
	maxDD := 0.0
	for _, p := range profits {
		value += p
		if value > peak {
			peak = value
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - value) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func calculateCLVStats(bets []*models.BetRecord) (float64, float64, int) {
	sum := 0.0
	positive := 0
	n := 0
	for _, b := range bets {
		if b.CLV == nil {
			continue
		}
		n++
		sum += *b.CLV
		if *b.CLV > 0 {
			positive++
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	return sum / float64(n), float64(positive) / float64(n) * 100, n
}

// calculateStreaks scans the ledger in order. Pushes neither extend nor break
// a streak.
func calculateStreaks(bets []*models.BetRecord) (int, int) {
	longestWin, longestLoss := 0, 0
	win, loss := 0, 0
	for _, b := range bets {
		switch b.Result {
		case models.BetResultWin:
			win++
			loss = 0
		case models.BetResultLoss:
			loss++
			win = 0
		default:
			continue
		}
		if win > longestWin {
			longestWin = win
		}
		if loss > longestLoss {
			longestLoss = loss
		}
	}
	return longestWin, longestLoss
}

func calculateProfitFactor(profits []float64) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, p := range profits {
		if p > 0 {
			grossProfit += p
		} else {
			grossLoss += math.Abs(p)
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return profitFactorCeiling
		}
		return 0
	}
	return grossProfit / grossLoss
}

func calculateBetStats(profits []float64) (avgWin, avgLoss, largestWin, largestLoss float64) {
	wins, losses := 0, 0
	winSum, lossSum := 0.0, 0.0
	for _, p := range profits {
		switch {
		case p > 0:
			wins++
			winSum += p
			largestWin = math.Max(largestWin, p)
		case p < 0:
			losses++
			lossSum += p
			largestLoss = math.Min(largestLoss, p)
		}
	}
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	return avgWin, avgLoss, largestWin, largestLoss
}

// calculateWinRate returns wins over all bets, pushes included, as a percentage
func calculateWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

// calculateVaR returns the per-bet profit at the (1-level) empirical quantile
func calculateVaR(profits []float64, level float64) float64 {
	if len(profits) == 0 {
		return 0
	}
	sorted := append([]float64(nil), profits...)
	sort.Float64s(sorted)
	return stat.Quantile(1-level, stat.Empirical, sorted, nil)
}

// Segment is one filtered view of a ledger
type Segment struct {
	Key     string             `json:"key"`
	Metrics PerformanceMetrics `json:"metrics"`
}

// Segments groups the segmented views reported with every run
type Segments struct {
	ByConfidence []Segment `json:"by_confidence"`
	ByTier       []Segment `json:"by_tier"`
	ByMonth      []Segment `json:"by_month"`
}

// Confidence buckets
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ConfidenceBucket maps a 0-100 confidence to its reporting bucket
func ConfidenceBucket(confidence float64) string {
	switch {
	case confidence >= 70:
		return ConfidenceHigh
	case confidence >= 40:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// SegmentLedger applies CalculateMetrics to confidence, tier and calendar
// month subsets of the ledger
func SegmentLedger(ledger []*models.BetRecord, startingBankroll decimal.Decimal, riskFreeRate float64) Segments {
	tierOrder := []string{
		string(models.TierVeryStrong), string(models.TierStrong),
		string(models.TierMedium), string(models.TierWeak),
	}
	return Segments{
		ByConfidence: segmentBy(ledger, startingBankroll, riskFreeRate,
			func(b *models.BetRecord) string { return ConfidenceBucket(b.Edge.Confidence) },
			[]string{ConfidenceHigh, ConfidenceMedium, ConfidenceLow}),
		ByTier: segmentBy(ledger, startingBankroll, riskFreeRate,
			func(b *models.BetRecord) string { return string(b.Edge.Tier) }, tierOrder),
		ByMonth: segmentBy(ledger, startingBankroll, riskFreeRate,
			func(b *models.BetRecord) string { return b.GameDate.UTC().Format("2006-01") }, nil),
	}
}

// segmentBy groups in ledger order. With a nil order the keys are sorted.
func segmentBy(ledger []*models.BetRecord, starting decimal.Decimal, rf float64, key func(*models.BetRecord) string, order []string) []Segment {
	groups := make(map[string][]*models.BetRecord)
	for _, b := range gradedOnly(ledger) {
		k := key(b)
		groups[k] = append(groups[k], b)
	}
	if order == nil {
		for k := range groups {
			order = append(order, k)
		}
		sort.Strings(order)
	}
	segments := make([]Segment, 0, len(groups))
	for _, k := range order {
		bets, ok := groups[k]
		if !ok {
			continue
		}
		segments = append(segments, Segment{Key: k, Metrics: CalculateMetrics(bets, starting, rf)})
	}
	return segments
}

// HashParameters creates a stable hash for parameter maps
func HashParameters(params map[string]interface{}) string {
	data, _ := json.Marshal(params)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
