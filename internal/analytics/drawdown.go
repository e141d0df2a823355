package analytics

import "github.com/shopspring/decimal"

// Drawdown is a stretch of the equity curve spent below its running peak.
type Drawdown struct {
	Start string `json:"start" yaml:"start"`
	// End is the date the peak was regained, empty while the drawdown is ongoing.
	End       string          `json:"end,omitempty" yaml:"end,omitempty"`
	Peak      decimal.Decimal `json:"peak" yaml:"peak"`
	Trough    decimal.Decimal `json:"trough" yaml:"trough"`
	Depth     decimal.Decimal `json:"depth" yaml:"depth"`
	Trades    int             `json:"trades" yaml:"trades"`
	Recovered bool            `json:"recovered" yaml:"recovered"`
}

// Drawdowns splits an equity curve into its drawdown periods, oldest first.
// The running peak starts at zero; reaching the peak again ends a period.
// The deepest period's Depth equals Statistics.MaxDrawdown.
func Drawdowns(curve []EquityPoint) []Drawdown {
	periods := []Drawdown{}
	peak := decimal.Zero
	var current *Drawdown

	for _, p := range curve {
		value := p.CumulativePnL
		if value.GreaterThanOrEqual(peak) {
			if current != nil {
				current.End = p.Date
				current.Recovered = true
				periods = append(periods, *current)
				current = nil
			}
			peak = value
			continue
		}

		if current == nil {
			current = &Drawdown{Start: p.Date, Peak: peak, Trough: value}
		} else if value.LessThan(current.Trough) {
			current.Trough = value
		}
		current.Trades++
		current.Depth = current.Peak.Sub(current.Trough)
	}

	if current != nil {
		periods = append(periods, *current)
	}
	return periods
}
