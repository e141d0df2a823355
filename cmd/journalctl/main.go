package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"tradeJournal/config"
	"tradeJournal/internal/adapters/binanceclient"
	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/adapters/sqlite"
	"tradeJournal/internal/analytics"
	"tradeJournal/internal/app"
	"tradeJournal/internal/ports"
)

// journal bundles what every subcommand needs.
type journal struct {
	cfg     *config.Config
	logger  *logger.ZapLogger
	repo    *sqlite.Repository
	service *app.JournalService
	stats   *app.StatsService
}

func (j *journal) Close() {
	if err := j.repo.Close(); err != nil {
		j.logger.Error(context.Background(), err, "Error closing database repository")
	}
	_ = j.logger.Sync()
}

func openJournal(cmd *cli.Command) (*journal, error) {
	if cmd.String("user") == "" {
		return nil, fmt.Errorf("%w: --user is required", ports.ErrInvalidRequest)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if db := cmd.String("db"); db != "" {
		cfg.DBPath = db
	}

	appLogger, err := logger.New(logger.Config{
		Level:  logger.ParseLevel(cmd.String("log-level")),
		Format: "console",
	})
	if err != nil {
		return nil, err
	}

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		return nil, err
	}
	service, err := app.NewJournalService(repo, repo, appLogger, app.WithDefaultMarket(cfg.DefaultMarket))
	if err != nil {
		repo.Close()
		return nil, err
	}
	stats, err := app.NewStatsService(repo, appLogger)
	if err != nil {
		repo.Close()
		return nil, err
	}
	return &journal{cfg: cfg, logger: appLogger, repo: repo, service: service, stats: stats}, nil
}

func statsAction(ctx context.Context, cmd *cli.Command) error {
	j, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	stats, err := j.stats.Statistics(ctx, cmd.String("user"), cmd.String("from"), cmd.String("to"))
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}
	return printStatistics(os.Stdout, stats)
}

func calendarAction(ctx context.Context, cmd *cli.Command) error {
	j, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	cal, err := j.stats.Calendar(ctx, cmd.String("user"), int(cmd.Int("year")), int(cmd.Int("month")))
	if err != nil {
		return fmt.Errorf("failed to build calendar: %w", err)
	}
	return printCalendar(os.Stdout, cal)
}

func reportAction(ctx context.Context, cmd *cli.Command) error {
	j, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	report, err := j.stats.Report(ctx, cmd.String("user"), cmd.String("from"), cmd.String("to"))
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	out := cmd.String("out")
	if err := analytics.WriteReport(out, report); err != nil {
		return err
	}
	log.Printf("Report for %s written to %s (%d trades)", report.UserID, out, report.Statistics.TotalTrades)
	return nil
}

// showReportAction prints a report file written by the report command. It
// needs no database.
func showReportAction(_ context.Context, cmd *cli.Command) error {
	return showReport(os.Stdout, cmd.String("file"))
}

func showReport(out io.Writer, path string) error {
	report, err := analytics.ReadReport(path)
	if err != nil {
		return err
	}
	if report.Statistics == nil {
		return fmt.Errorf("%w: report %s has no statistics", ports.ErrInvalidRequest, path)
	}

	period := "all trades"
	if report.From != "" || report.To != "" {
		period = fmt.Sprintf("%s .. %s", report.From, report.To)
	}
	fmt.Fprintf(out, "Report for %s, %s, generated %s\n\n",
		report.UserID, period, report.GeneratedAt.Format(time.RFC3339))
	return printStatistics(out, report.Statistics)
}

func importCSVAction(ctx context.Context, cmd *cli.Command) error {
	j, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	f, err := os.Open(cmd.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := j.service.ImportCSV(ctx, cmd.String("user"), f)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	printImportResult(os.Stdout, res)
	return nil
}

func exportCSVAction(ctx context.Context, cmd *cli.Command) error {
	j, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	out := os.Stdout
	if path := cmd.String("file"); path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return j.service.ExportCSV(ctx, cmd.String("user"), out)
}

func importBinanceAction(ctx context.Context, cmd *cli.Command) error {
	j, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	if !j.cfg.HasBinanceCredentials() {
		return fmt.Errorf("%w: BINANCE_API_KEY and BINANCE_API_SECRET must be set", ports.ErrConfigurationError)
	}
	client, err := binanceclient.New(binanceclient.Config{
		APIKey:     j.cfg.APIKey,
		SecretKey:  j.cfg.SecretKey,
		UseTestnet: j.cfg.IsTestnet,
		Logger:     j.logger,
	})
	if err != nil {
		return err
	}

	res, err := j.service.ImportFromExchange(ctx, cmd.String("user"), client,
		cmd.String("symbol"), cmd.Timestamp("start"), cmd.Timestamp("end"))
	if err != nil {
		return fmt.Errorf("binance import failed: %w", err)
	}
	printImportResult(os.Stdout, res)
	return nil
}

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "first trade date to include, `YYYY-MM-DD`"},
		&cli.StringFlag{Name: "to", Usage: "last trade date to include, `YYYY-MM-DD`"},
	}
}

func newCommand() *cli.Command {
	now := time.Now()
	dateLayouts := cli.TimestampConfig{Layouts: []string{"2006-01-02"}}

	return &cli.Command{
		Name:  "journalctl",
		Usage: "Inspect and maintain the trading journal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "journal owner, required by every command that opens the database",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database path (overrides DB_PATH)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "DEBUG, INFO, WARN or ERROR",
				Value: "WARN",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Print the statistics summary",
				Flags:  rangeFlags(),
				Action: statsAction,
			},
			{
				Name:  "calendar",
				Usage: "Print the monthly calendar",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "year", Value: int64(now.Year())},
					&cli.IntFlag{Name: "month", Value: int64(now.Month())},
				},
				Action: calendarAction,
			},
			{
				Name:  "report",
				Usage: "Write the statistics as a YAML report",
				Flags: append(rangeFlags(),
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "report.yaml", Usage: "output `FILE`"},
				),
				Action: reportAction,
			},
			{
				Name:  "show-report",
				Usage: "Print a YAML report written by the report command",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Value: "report.yaml", Usage: "report `FILE` to read"},
				},
				Action: showReportAction,
			},
			{
				Name:  "import-csv",
				Usage: "Import trades from a CSV file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "CSV `FILE` to read"},
				},
				Action: importCSVAction,
			},
			{
				Name:  "export-csv",
				Usage: "Export trades as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Value: "-", Usage: "CSV `FILE` to write, - for stdout"},
				},
				Action: exportCSVAction,
			},
			{
				Name:  "import-binance",
				Usage: "Import closed futures trades from Binance",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "symbol", Aliases: []string{"s"}, Required: true, Usage: "futures symbol, e.g. BTCUSDT"},
					&cli.TimestampFlag{Name: "start", Required: true, Config: dateLayouts, Usage: "start date `YYYY-MM-DD`"},
					&cli.TimestampFlag{Name: "end", Value: now, Config: dateLayouts, Usage: "end date `YYYY-MM-DD`, defaults to now"},
				},
				Action: importBinanceAction,
			},
			{
				Name:      "analyze",
				Usage:     "Compare statistics of CSV trade files",
				ArgsUsage: "[FILE...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "also analyze every .csv file in `DIR`"},
				},
				Action: analyzeAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
