package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/dvloznov/senate-trades/internal/activity"
	"github.com/dvloznov/senate-trades/internal/config"
	"github.com/dvloznov/senate-trades/internal/domain"
	"github.com/dvloznov/senate-trades/internal/export"
	"github.com/dvloznov/senate-trades/internal/gcsuploader"
	"github.com/dvloznov/senate-trades/internal/infra"
	"github.com/dvloznov/senate-trades/internal/logger"
	"github.com/dvloznov/senate-trades/internal/query"
)

// activityService is the query surface the commands use.
type activityService interface {
	ListTransactions(ctx context.Context, req query.ListRequest) ([]domain.Transaction, error)
	CountTransactions(ctx context.Context, req query.CountRequest) (domain.Count, error)
	ListParties(ctx context.Context, limit string) ([]domain.Party, error)
	ListTickers(ctx context.Context, limit string) ([]domain.Ticker, error)
	TopActivity(ctx context.Context, req query.TopRequest) ([]domain.BucketAggregate, error)
	MonthlyTimeseries(ctx context.Context, req query.TimeseriesRequest) ([]domain.MonthlyPoint, error)
}

// env is an opened service plus the configuration it came from.
type env struct {
	svc   activityService
	cfg   *config.Config
	close func()
}

// uploader is a GCS client that can be closed.
type uploader interface {
	export.ObjectUploader
	Close() error
}

type app struct {
	out      io.Writer
	log      zerolog.Logger
	open     func(ctx context.Context, configPath string) (*env, error)
	uploader func(ctx context.Context) (uploader, error)
}

var errUsage = errors.New("usage")

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout, log: log, open: openEnv(log), uploader: newGCSUploader}
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
		} else {
			log.Error().Err(err).Str("command", os.Args[1]).Msg("Command failed")
		}
		stop()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Senate Trades CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  list        List transactions")
	fmt.Println("  count       Count transactions matching filters")
	fmt.Println("  parties     List distinct disclosing parties")
	fmt.Println("  tickers     List distinct tickers")
	fmt.Println("  top         Rank tickers by distinct parties per week, month or year")
	fmt.Println("  timeseries  Monthly distinct buyers and sellers of a ticker")
	fmt.Println("  export      Write a top or monthly report as csv, json or xlsx")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nEvery command accepts -config PATH (or SENATE_TRADES_CONFIG).")
	fmt.Println("Run 'cli <command> -h' for more information on a command.")
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		return a.runList(ctx, args)
	case "count":
		return a.runCount(ctx, args)
	case "parties":
		return a.runParties(ctx, args)
	case "tickers":
		return a.runTickers(ctx, args)
	case "top":
		return a.runTop(ctx, args)
	case "timeseries":
		return a.runTimeseries(ctx, args)
	case "export":
		return a.runExport(ctx, args)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return errUsage
	}
}

// openEnv connects to the configured store.
func openEnv(log zerolog.Logger) func(ctx context.Context, configPath string) (*env, error) {
	return func(ctx context.Context, configPath string) (*env, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		st, err := infra.Open(ctx, cfg.Store, log)
		if err != nil {
			return nil, err
		}
		return &env{
			svc:   activity.NewService(st, log),
			cfg:   cfg,
			close: func() { st.Close() },
		}, nil
	}
}

func newGCSUploader(ctx context.Context) (uploader, error) {
	return gcsuploader.NewClient(ctx)
}

// newFlagSet registers the flags every command shares.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("SENATE_TRADES_CONFIG"), "Path to YAML config file")
	return fs, configPath
}

type filterFlags struct {
	party, side, ticker, start, end *string
}

func addFilterFlags(fs *flag.FlagSet) filterFlags {
	return filterFlags{
		party:  fs.String("party", "", "Exact party name"),
		side:   fs.String("side", "", "BUY or SELL"),
		ticker: fs.String("ticker", "", "Ticker symbol"),
		start:  fs.String("start", "", "First trade date, YYYY-MM-DD"),
		end:    fs.String("end", "", "Last trade date, YYYY-MM-DD"),
	}
}

func (a *app) withEnv(ctx context.Context, configPath string, fn func(e *env) error) error {
	e, err := a.open(ctx, configPath)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(e)
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) runList(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("list")
	f := addFilterFlags(fs)
	sort := fs.String("sort", "", "trade_date, estimated_value, ticker, party_name or side")
	order := fs.String("order", "", "asc or desc")
	limit := fs.String("limit", "", "Page size (1-200, default 50)")
	offset := fs.String("offset", "", "Rows to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := query.ListRequest{
		PartyName: *f.party, Side: *f.side, Ticker: *f.ticker, Start: *f.start, End: *f.end,
		Sort: *sort, Order: *order, Limit: *limit, Offset: *offset,
	}
	return a.withEnv(ctx, *configPath, func(e *env) error {
		txs, err := e.svc.ListTransactions(ctx, req)
		if err != nil {
			return err
		}
		return a.print(txs)
	})
}

func (a *app) runCount(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("count")
	f := addFilterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := query.CountRequest{PartyName: *f.party, Side: *f.side, Ticker: *f.ticker, Start: *f.start, End: *f.end}
	return a.withEnv(ctx, *configPath, func(e *env) error {
		count, err := e.svc.CountTransactions(ctx, req)
		if err != nil {
			return err
		}
		return a.print(count)
	})
}

func (a *app) runParties(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("parties")
	limit := fs.String("limit", "", "Maximum parties (default 200)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return a.withEnv(ctx, *configPath, func(e *env) error {
		parties, err := e.svc.ListParties(ctx, *limit)
		if err != nil {
			return err
		}
		return a.print(parties)
	})
}

func (a *app) runTickers(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("tickers")
	limit := fs.String("limit", "", "Maximum tickers (default 5000)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return a.withEnv(ctx, *configPath, func(e *env) error {
		tickers, err := e.svc.ListTickers(ctx, *limit)
		if err != nil {
			return err
		}
		return a.print(tickers)
	})
}

type topFlags struct {
	period, side, topN, start, end *string
}

func addTopFlags(fs *flag.FlagSet) topFlags {
	return topFlags{
		period: fs.String("period", "month", "week, month or year"),
		side:   fs.String("side", "BUY", "BUY or SELL"),
		topN:   fs.String("top-n", "", "Tickers per bucket (1-50, default 10)"),
		start:  fs.String("start", "", "First trade date, YYYY-MM-DD"),
		end:    fs.String("end", "", "Last trade date, YYYY-MM-DD"),
	}
}

func (f topFlags) request() query.TopRequest {
	return query.TopRequest{Period: *f.period, Side: *f.side, TopN: *f.topN, Start: *f.start, End: *f.end}
}

func (a *app) runTop(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("top")
	f := addTopFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return a.withEnv(ctx, *configPath, func(e *env) error {
		aggs, err := e.svc.TopActivity(ctx, f.request())
		if err != nil {
			return err
		}
		return a.print(aggs)
	})
}

func (a *app) runTimeseries(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("timeseries")
	ticker := fs.String("ticker", "", "Ticker symbol (required)")
	mode := fs.String("mode", "both", "buy, sell or both")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return a.withEnv(ctx, *configPath, func(e *env) error {
		points, err := e.svc.MonthlyTimeseries(ctx, query.TimeseriesRequest{Ticker: *ticker, Mode: *mode})
		if err != nil {
			return err
		}
		return a.print(points)
	})
}

func (a *app) runExport(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("export")
	report := fs.String("report", "top", "top or monthly")
	format := fs.String("format", "csv", "csv, json or xlsx")
	dest := fs.String("dest", "", "Local directory or gs://bucket/prefix, overriding the configured destination")
	tickers := fs.String("tickers", "", "Comma-separated tickers for the monthly report")
	mode := fs.String("mode", "both", "buy, sell or both (monthly report)")
	tf := addTopFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	if *report != "top" && *report != "monthly" {
		return fmt.Errorf("unknown report %q (want top or monthly)", *report)
	}

	return a.withEnv(ctx, *configPath, func(e *env) error {
		sink, closeSink, err := a.sink(ctx, e.cfg.Export, *dest)
		if err != nil {
			return err
		}
		defer closeSink()

		exp := export.NewExporter(e.svc, sink, a.log)

		var res export.Result
		if *report == "top" {
			res, err = exp.ExportTop(ctx, tf.request(), f)
		} else {
			res, err = exp.ExportMonthly(ctx, splitList(*tickers), *mode, f)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "Exported %d rows to %s\n", res.Rows, res.Location)
		return nil
	})
}

// sink picks the export destination: -dest, then the configured bucket,
// then the configured directory.
func (a *app) sink(ctx context.Context, cfg config.ExportConfig, dest string) (export.Sink, func(), error) {
	switch {
	case strings.HasPrefix(dest, "gs://"):
		bucket, prefix, err := gcsuploader.ParseURI(dest)
		if err != nil {
			return nil, nil, err
		}
		cfg.Bucket, cfg.Prefix = bucket, prefix
	case dest != "":
		return export.FileSink{Dir: dest}, func() {}, nil
	case cfg.Bucket == "":
		return export.FileSink{Dir: cfg.Dir}, func() {}, nil
	}

	client, err := a.uploader(ctx)
	if err != nil {
		return nil, nil, err
	}
	sink := export.GCSSink{Uploader: client, Bucket: cfg.Bucket, Prefix: cfg.Prefix}
	return sink, func() { client.Close() }, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
