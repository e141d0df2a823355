package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"tradeJournal/internal/adapters/csvio"
	"tradeJournal/internal/analytics"
)

// analyzeAction compares CSV trade exports side by side without touching the database.
func analyzeAction(_ context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if dir := cmd.String("dir"); dir != "" {
		found, err := findCSVFiles(dir)
		if err != nil {
			return fmt.Errorf("error finding CSV files: %w", err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no CSV files given, pass file names or --dir")
	}
	return analyzeFiles(os.Stdout, files, time.Now().Format("2006-01-02"))
}

// analyzeFiles prints one statistics row per file. Unreadable files are
// reported and skipped.
func analyzeFiles(out io.Writer, files []string, today string) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "File\tTrades\tClosed\tWinRate\tAvgWin\tAvgLoss\tClosedPnL\tMaxDD\tPF\t")

	for _, file := range files {
		stats, skipped, err := analyzeFile(file, today)
		if err != nil {
			log.Printf("Error reading trades from %s: %v", file, err)
			continue
		}
		if skipped > 0 {
			log.Printf("%s: skipped %d malformed rows", file, skipped)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%s\t%s\t%s\t%s\t%s\t\n",
			filepath.Base(file),
			stats.TotalTrades,
			stats.ClosedTrades,
			float64(stats.WinRate),
			stats.AvgWin.StringFixed(2),
			stats.AvgLoss.StringFixed(2),
			stats.ClosedPnL.StringFixed(2),
			stats.MaxDrawdown.StringFixed(2),
			formatRatio(stats.ProfitFactor),
		)
	}
	return w.Flush()
}

func analyzeFile(path, today string) (*analytics.Statistics, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	res, err := csvio.Parse(f, today)
	if err != nil {
		return nil, 0, err
	}
	return analytics.Compute(res.Trades), len(res.Skipped), nil
}

func findCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
