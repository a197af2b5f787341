// Package pipeline sequences one analysis run: normalize the URL, fetch
// the page, extract a snapshot, request the report and stamp it.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/resilience"
	"github.com/sells-group/selda-cli/internal/scrape"
	"github.com/sells-group/selda-cli/internal/store"
	"github.com/sells-group/selda-cli/internal/urlutil"
)

// PageFetcher retrieves the page for a normalized URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*scrape.Page, error)
}

// SnapshotExtractor turns fetched markup into a Snapshot.
type SnapshotExtractor interface {
	Extract(rawHTML, sourceURL string, status int, fetchedAt time.Time) *model.Snapshot
}

// InsightRequester produces a report for a snapshot.
type InsightRequester interface {
	Request(ctx context.Context, snap *model.Snapshot, extras map[string]any) (*model.Report, error)
}

// Options tunes a Pipeline. Zero values keep the single-attempt default and
// the Selda footer.
type Options struct {
	Retry           resilience.RetryConfig
	Footer          *model.Footer
	RevOpsChecklist []string

	// Now stamps generated_at. Defaults to time.Now.
	Now func() time.Time
}

// Pipeline runs the fetch, extract and request stages for one URL at a
// time. It holds no per-run state, so one Pipeline serves concurrent runs.
type Pipeline struct {
	fetcher   PageFetcher
	extractor SnapshotExtractor
	requester InsightRequester
	store     store.Store
	opts      Options
}

// New creates a Pipeline. st may be nil to skip run recording.
func New(fetcher PageFetcher, extractor SnapshotExtractor, requester InsightRequester, st store.Store, opts Options) *Pipeline {
	if opts.Footer == nil {
		footer := model.DefaultFooter()
		opts.Footer = &footer
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		requester: requester,
		store:     st,
		opts:      opts,
	}
}

// Run analyzes rawURL and returns the stamped report. Component failures
// are returned unchanged so callers can inspect their Kind.
func (p *Pipeline) Run(ctx context.Context, rawURL string) (*model.Report, error) {
	target, err := urlutil.Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("url", target))
	log.Info("pipeline: starting analysis")
	start := time.Now()

	rec := p.startRecording(ctx, log, target)

	retry := p.opts.Retry
	if retry.ShouldRetry == nil {
		retry.ShouldRetry = retryable
	}
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger(target)
	}

	report, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*model.Report, error) {
		return p.attempt(ctx, log, rec, target)
	})
	if err != nil {
		log.Error("pipeline: analysis failed",
			zap.String("kind", string(resilience.KindOf(err))),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		rec.fail(ctx, err)
		return nil, err
	}

	report.Metadata = report.Metadata.Merge(map[string]any{
		model.MetaGeneratedAt: p.opts.Now().UTC().Format(time.RFC3339),
	})
	footer := *p.opts.Footer
	report.Footer = &footer

	rec.complete(ctx, report)
	log.Info("pipeline: analysis complete", zap.Duration("elapsed", time.Since(start)))
	return report, nil
}

// attempt performs one fetch, one extraction and one model call.
func (p *Pipeline) attempt(ctx context.Context, log *zap.Logger, rec *recorder, target string) (*model.Report, error) {
	rec.status(ctx, model.RunStatusFetching)
	page, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	snap := p.extractor.Extract(page.HTML, page.URL, page.StatusCode, page.FetchedAt)
	log.Debug("pipeline: snapshot extracted",
		zap.Int("headings", len(snap.Headings)),
		zap.Int("keywords", len(snap.Keywords)),
		zap.Int("social_links", len(snap.SocialLinks)),
		zap.Int("contact_pages", len(snap.ContactPages)),
	)

	rec.status(ctx, model.RunStatusAnalyzing)
	return p.requester.Request(ctx, snap, p.extras(snap))
}

func (p *Pipeline) extras(snap *model.Snapshot) map[string]any {
	checklist := p.opts.RevOpsChecklist
	if checklist == nil {
		checklist = []string{}
	}
	return map[string]any{
		model.MetaSnapshotNotes:   SnapshotNotes(snap),
		model.MetaRevOpsChecklist: checklist,
	}
}

// retryable limits orchestrator retries to transient fetch failures.
func retryable(err error) bool {
	return resilience.IsKind(err, resilience.KindFetchFailed) && resilience.IsTransient(err)
}
