package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dreamerjackson/ghcrawler/generator"
	"github.com/dreamerjackson/ghcrawler/limiter"
	"github.com/dreamerjackson/ghcrawler/log"
	"github.com/dreamerjackson/ghcrawler/spider"
	"github.com/dreamerjackson/ghcrawler/storage/sqlstorage"
	"github.com/dreamerjackson/ghcrawler/tasklib/githubsearch"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ErrIncomplete = errors.New("crawl incomplete")

type Flags struct {
	Input   string
	Output  string
	Config  string
	Workers int
	Strict  bool
}

var flags Flags

var CrawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "search github and print the enriched results.",
	Long:  "search github for every keyword of the input file and print the results as JSON.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), flags, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	CrawlCmd.Flags().StringVarP(
		&flags.Input, "input", "i", "-", "input JSON file, - for stdin")

	CrawlCmd.Flags().StringVarP(
		&flags.Output, "output", "o", "", "output file, stdout when empty")

	CrawlCmd.Flags().StringVar(
		&flags.Config, "config", "config.toml", "config file")

	CrawlCmd.Flags().IntVar(
		&flags.Workers, "workers", 0, "worker count, overrides fetcher.workers")

	CrawlCmd.Flags().BoolVar(
		&flags.Strict, "strict", false, "fail when any task was dropped")
}

// Run executes one crawl. opts are applied after the ones built from config.
func Run(ctx context.Context, f Flags, stdin io.Reader, stdout io.Writer, opts ...githubsearch.Option) error {
	cfg, err := LoadConfig(f.Config)
	if err != nil {
		return err
	}

	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}

	logger, closer, err := log.New(log.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() {
		logger.Sync()
		closer.Close()
	}()

	runID, err := generator.NewRunID()
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("run", runID))
	zap.ReplaceGlobals(logger)

	data, err := readInput(f.Input, stdin)
	if err != nil {
		return err
	}

	in, err := githubsearch.ParseInput(data)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		stop := serveMetrics(cfg.MetricsAddr, logger)
		defer stop()
	}

	var storage spider.DataRepository = spider.EmptyDataRepository{}
	var flush func() error
	switch cfg.StorageType {
	case "mysql":
		s, err := sqlstorage.New(
			sqlstorage.WithSQLURL(cfg.SQLURL),
			sqlstorage.WithTable(cfg.Table),
			sqlstorage.WithBatchCount(cfg.BatchCount),
			sqlstorage.WithRunID(runID),
			sqlstorage.WithLogger(logger.Named("sqlDB")),
		)
		if err != nil {
			return fmt.Errorf("create sqlstorage: %w", err)
		}
		defer func() {
			if err := s.Close(); err != nil {
				logger.Error("close sqlstorage failed", zap.Error(err))
			}
		}()
		storage, flush = s, s.Flush
		logger.Info("start mysql storage")
	case "", "empty":
	default:
		return fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}

	crawler, err := githubsearch.New(in, append([]githubsearch.Option{
		githubsearch.WithWorkCount(cfg.Workers),
		githubsearch.WithMaxRetries(cfg.Retries),
		githubsearch.WithTimeout(cfg.Timeout),
		githubsearch.WithUserAgent(cfg.UserAgent),
		githubsearch.WithLimiter(limiter.FromConfig(cfg.Limits)),
		githubsearch.WithLogger(logger),
	}, opts...)...)
	if err != nil {
		return err
	}

	report, crawlErr := crawler.Crawl(ctx)

	if err := writeOutput(f.Output, stdout, report.Targets); err != nil {
		return err
	}

	if err := storage.Save(report.Targets...); err != nil {
		logger.Error("save targets failed", zap.Error(err))
	}
	if flush != nil {
		if err := flush(); err != nil {
			logger.Error("flush targets failed", zap.Error(err))
		}
	}

	if crawlErr != nil {
		return crawlErr
	}

	if f.Strict && !report.Complete() {
		return fmt.Errorf("%w: %d tasks dropped", ErrIncomplete, len(report.Failed))
	}

	return nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// writeOutput prints targets as a JSON array indented with one space.
func writeOutput(path string, stdout io.Writer, targets []*spider.Target) error {
	if targets == nil {
		targets = []*spider.Target{}
	}

	w := stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")

	return enc.Encode(targets)
}

func serveMetrics(addr string, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("metrics listen", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
