package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"tradeJournal/internal/analytics"
	"tradeJournal/internal/app"
)

func printStatistics(out io.Writer, s *analytics.Statistics) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Trades\t%d (open %d, closed %d)\n", s.TotalTrades, s.OpenTrades, s.ClosedTrades)
	fmt.Fprintf(w, "Wins / Losses\t%d / %d\n", s.WinningTrades, s.LosingTrades)
	fmt.Fprintf(w, "Win rate\t%.2f%%\n", float64(s.WinRate))
	fmt.Fprintf(w, "Closed PnL\t%s\n", s.ClosedPnL.StringFixed(2))
	fmt.Fprintf(w, "Expectancy\t%s\n", s.Expectancy.StringFixed(2))
	fmt.Fprintf(w, "Profit factor\t%s\n", formatRatio(s.ProfitFactor))
	fmt.Fprintf(w, "Avg win / loss\t%s / %s\n", s.AvgWin.StringFixed(2), s.AvgLoss.StringFixed(2))
	fmt.Fprintf(w, "Top win / loss\t%s / %s\n", s.TopWin.StringFixed(2), s.TopLoss.StringFixed(2))
	fmt.Fprintf(w, "Streaks\t%d wins, %d losses\n", s.MaxWinStreak, s.MaxLossStreak)
	fmt.Fprintf(w, "Max drawdown\t%s\n", s.MaxDrawdown.StringFixed(2))
	if err := w.Flush(); err != nil {
		return err
	}

	if len(s.PerformanceBySymbol) > 0 {
		fmt.Fprintln(out, "\n## By symbol")
		if err := printPerformance(out, s.PerformanceBySymbol); err != nil {
			return err
		}
	}
	if len(s.PerformanceByTag) > 0 {
		fmt.Fprintln(out, "\n## By tag")
		if err := printPerformance(out, s.PerformanceByTag); err != nil {
			return err
		}
	}
	if len(s.PnLByMonth) > 0 {
		fmt.Fprintln(out, "\n## By month")
		w = tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
		for _, m := range s.PnLByMonth {
			fmt.Fprintf(w, "%s\t%s\t\n", m.Month, m.PnL.StringFixed(2))
		}
		return w.Flush()
	}
	return nil
}

// printPerformance lists groups ordered by PnL, best first.
func printPerformance(out io.Writer, groups map[string]analytics.Performance) error {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := groups[names[i]].PnL, groups[names[j]].PnL
		if !pi.Equal(pj) {
			return pi.GreaterThan(pj)
		}
		return names[i] < names[j]
	})

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Name\tTrades\tPnL\tPnL/unit\t")
	for _, name := range names {
		p := groups[name]
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t\n", name, p.Trades, p.PnL.StringFixed(2), p.WeightedPnL.StringFixed(2))
	}
	return w.Flush()
}

func formatRatio(r analytics.Ratio) string {
	if r.IsInf() {
		return "inf"
	}
	return fmt.Sprintf("%.2f", float64(r))
}

// printCalendar draws the month as a Sunday-first grid of day numbers and
// lists the days that had trades below it.
func printCalendar(out io.Writer, cal *analytics.CalendarMonth) error {
	fmt.Fprintf(out, "%04d-%02d  %d trade days, PnL %s\n\n", cal.Year, cal.Month, cal.TradeDays, cal.PnL.StringFixed(2))

	w := tabwriter.NewWriter(out, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Su\tMo\tTu\tWe\tTh\tFr\tSa\t")
	cells := make([]string, 0, cal.LeadingBlanks+len(cal.Days))
	for range cal.LeadingBlanks {
		cells = append(cells, "")
	}
	for _, d := range cal.Days {
		mark := ""
		if d.Count > 0 {
			mark = "*"
		}
		cells = append(cells, fmt.Sprintf("%d%s", d.Day, mark))
	}
	for start := 0; start < len(cells); start += 7 {
		end := min(start+7, len(cells))
		fmt.Fprintln(w, strings.Join(cells[start:end], "\t")+"\t")
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	for _, d := range cal.Days {
		if d.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%d trades\t%s\n", d.Date, d.Count, d.PnL.StringFixed(2))
	}
	return w.Flush()
}

func printImportResult(out io.Writer, res *app.ImportResult) {
	fmt.Fprintf(out, "imported %d, duplicates %d, skipped %d\n", res.Imported, res.Duplicates, res.Skipped)
}
