package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/render"
	"github.com/sells-group/selda-cli/internal/resilience"
	"github.com/sells-group/selda-cli/internal/urlutil"
)

var (
	batchFile        string
	batchOut         string
	batchFormat      string
	batchConcurrency int
	batchLimit       int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze every website listed in a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		format, err := render.ParseFormat(batchFormat)
		if err != nil {
			return err
		}

		f, err := os.Open(batchFile)
		if err != nil {
			return eris.Wrapf(err, "batch: open %s", batchFile)
		}
		urls, err := readURLs(f)
		_ = f.Close()
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := os.MkdirAll(batchOut, 0o755); err != nil {
			return eris.Wrapf(err, "batch: create %s", batchOut)
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}
		limiter := rate.NewLimiter(rate.Limit(cfg.Batch.RatePerSec), 1)

		summary, err := processBatch(ctx, urls, batchLimit, concurrency, limiter, env.Pipeline.Run, fileSink(batchOut, format))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Batch complete: %d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "file with one URL per line (required)")
	batchCmd.Flags().StringVar(&batchOut, "out", "reports", "directory for rendered reports")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "json", "output format: json | yaml | markdown | pdf")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent analyses (default from config)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of URLs to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// readURLs returns the non-blank lines of r that do not start with '#'.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, eris.Wrap(sc.Err(), "batch: read urls")
}

// analyzeFunc is the callback signature for running one analysis.
type analyzeFunc func(ctx context.Context, rawURL string) (*model.Report, error)

// reportSink receives each successful report with its position in the batch.
type reportSink func(index int, rawURL string, report *model.Report) error

// batchSummary counts batch outcomes.
type batchSummary struct {
	Succeeded int64
	Failed    int64
}

// processBatch applies limit, then analyzes urls concurrently. Individual
// failures are logged and counted; they never abort the batch.
func processBatch(ctx context.Context, urls []string, limit, concurrency int, limiter *rate.Limiter, analyze analyzeFunc, sink reportSink) (batchSummary, error) {
	if len(urls) == 0 {
		zap.L().Info("batch: no urls to process")
		return batchSummary{}, nil
	}

	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("batch: processing",
		zap.Int("urls", len(urls)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for i, rawURL := range urls {
		g.Go(func() error {
			log := zap.L().With(zap.String("url", rawURL))

			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					failed.Add(1)
					log.Warn("batch: rate limiter stopped", zap.Error(err))
					return nil
				}
			}

			report, err := analyze(gctx, rawURL)
			if err != nil {
				failed.Add(1)
				log.Error("batch: analysis failed",
					zap.String("kind", string(resilience.KindOf(err))),
					zap.Error(err),
				)
				return nil // don't abort batch on individual failure
			}

			if err := sink(i, rawURL, report); err != nil {
				failed.Add(1)
				log.Error("batch: failed to write report", zap.Error(err))
				return nil
			}

			succeeded.Add(1)
			log.Info("batch: analysis complete", zap.String("company", report.Company.Name))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return batchSummary{}, eris.Wrap(err, "batch processing")
	}

	summary := batchSummary{Succeeded: succeeded.Load(), Failed: failed.Load()}
	zap.L().Info("batch: complete",
		zap.Int64("succeeded", summary.Succeeded),
		zap.Int64("failed", summary.Failed),
	)
	return summary, nil
}

// fileSink writes each report to dir in the given format.
func fileSink(dir string, format render.Format) reportSink {
	return func(index int, rawURL string, report *model.Report) error {
		payload, err := render.Render(report, format)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, outputName(index, rawURL, format))
		return eris.Wrapf(os.WriteFile(path, payload, 0o644), "batch: write %s", path)
	}
}

var unsafeName = regexp.MustCompile(`[^a-z0-9.]+`)

// outputName derives a stable file name from the batch position and the
// URL's host and path, e.g. "001-acme.com-pricing.json".
func outputName(index int, rawURL string, format render.Format) string {
	slug := "site"
	if normalized, err := urlutil.Normalize(rawURL); err == nil {
		if u, err := url.Parse(normalized); err == nil {
			slug = strings.ToLower(u.Hostname() + u.Path)
		}
	}
	slug = strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(slug), "-"), "-.")
	if slug == "" {
		slug = "site"
	}
	return fmt.Sprintf("%03d-%s%s", index+1, slug, format.Extension())
}
