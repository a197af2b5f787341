package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/selda-cli/internal/config"
	"github.com/sells-group/selda-cli/internal/extract"
	"github.com/sells-group/selda-cli/internal/insight"
	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/pipeline"
	"github.com/sells-group/selda-cli/internal/resilience"
	"github.com/sells-group/selda-cli/internal/scrape"
	"github.com/sells-group/selda-cli/internal/store"
	"github.com/sells-group/selda-cli/pkg/anthropic"
)

// analyzer runs one analysis. *pipeline.Pipeline satisfies it.
type analyzer interface {
	Run(ctx context.Context, rawURL string) (*model.Report, error)
}

// appEnv bundles what the analysis commands share.
type appEnv struct {
	Store    store.Store // may be nil
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates config for mode, opens the optional store and builds
// the Pipeline. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	p, err := buildPipeline(cfg, st)
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}
	return &appEnv{Store: st, Pipeline: p}, nil
}

// initStore opens and migrates the configured run store. It returns a nil
// Store when recording is disabled.
func initStore(ctx context.Context) (store.Store, error) {
	if cfg.Store.Driver == "" {
		zap.L().Debug("store.driver not set, run history disabled")
		return nil, nil
	}
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
}

// buildPipeline wires the fetcher, extractor and requester from c.
func buildPipeline(c *config.Config, st store.Store) (*pipeline.Pipeline, error) {
	lex, err := extract.LoadLexicon(c.Extract.LexiconPath)
	if err != nil {
		return nil, err
	}

	var client anthropic.Client
	if c.Anthropic.Key != "" {
		client = anthropic.NewClient(c.Anthropic.Key, anthropic.Options{
			BaseURL: c.Anthropic.BaseURL,
			Timeout: time.Duration(c.Anthropic.TimeoutSecs) * time.Second,
		})
	} else {
		zap.L().Debug("SELDA_ANTHROPIC_KEY not set, analyses will fail before the model call")
	}

	fetcher := scrape.NewFetcher(scrape.Options{
		Timeout:      time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		UserAgent:    c.Fetch.UserAgent,
		MaxBodyBytes: c.Fetch.MaxBodyBytes,
	})
	extractor := extract.New(lex, extract.Options{
		MaxTextChars: c.Extract.MaxTextChars,
		MaxKeywords:  c.Extract.MaxKeywords,
	})
	requester := insight.New(client, insight.Config{
		APIKey:          c.Anthropic.Key,
		Model:           c.Anthropic.Model,
		MaxTokens:       c.Anthropic.MaxTokens,
		Temperature:     c.Anthropic.Temperature,
		PromptTextChars: c.Insight.PromptTextChars,
		MaxHeadings:     c.Insight.MaxHeadings,
		RequiredFields:  c.Insight.RequiredFields,
		PrefillJSON:     c.Insight.PrefillJSON,
	})

	footer := c.Report.Footer
	return pipeline.New(fetcher, extractor, requester, st, pipeline.Options{
		Retry: resilience.RetryConfig{
			MaxAttempts:    c.Pipeline.MaxAttempts,
			InitialBackoff: time.Duration(c.Pipeline.InitialBackoffSecs) * time.Second,
			JitterFraction: 0.2,
		},
		Footer:          &footer,
		RevOpsChecklist: c.Report.RevOpsChecklist,
	}), nil
}
