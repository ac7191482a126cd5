package backtest

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"
)

// EquityPoint represents a point in the equity curve
type EquityPoint struct {
	Time     time.Time `json:"time"`
	Value    float64   `json:"value"`
	Drawdown float64   `json:"drawdown"`
	PnL      float64   `json:"pnl"`
}

// EquityCurve represents a time-series of bankroll values, one per graded bet
type EquityCurve []EquityPoint

// GetReturns calculates per-bet returns from equity curve
func (e EquityCurve) GetReturns() []float64 {
	if len(e) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(e)-1)
	for i := 1; i < len(e); i++ {
		prev := e[i-1].Value
		curr := e[i].Value
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curr-prev)/prev)
	}
	return returns
}

// GetVolatility calculates the sample standard deviation of returns
func (e EquityCurve) GetVolatility() float64 {
	returns := e.GetReturns()
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil)
}

// MaxDrawdown returns the largest peak-to-trough decline as a fraction
func (e EquityCurve) MaxDrawdown() float64 {
	maxDD := 0.0
	peak := 0.0
	for _, p := range e {
		if p.Value > peak {
			peak = p.Value
		}
		if peak <= 0 {
			continue
		}
		drawdown := (peak - p.Value) / peak
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}
	return maxDD
}

// ToCSV exports equity curve to CSV string
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("time,value,drawdown,pnl\n")
	for _, point := range e {
		buf.WriteString(point.Time.Format(time.RFC3339))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Value, 2))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Drawdown, 6))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.PnL, 2))
		buf.WriteString("\n")
	}
	return buf.String()
}

// ToJSON exports equity curve to JSON string
func (e EquityCurve) ToJSON() string {
	data, _ := json.Marshal(e)
	return string(data)
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
