// Package insight turns a Snapshot into a sales-intelligence Report with a
// single language-model call.
package insight

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/resilience"
	"github.com/sells-group/selda-cli/pkg/anthropic"
)

// Defaults applied by New for zero-valued Config fields.
const (
	DefaultModel           = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens       = 4096
	DefaultPromptTextChars = 11000
	DefaultMaxHeadings     = 20

	// jsonPrefill opens the assistant turn so the model continues a JSON object.
	jsonPrefill = "{"
)

// Config configures a Requester.
type Config struct {
	APIKey          string
	Model           string
	MaxTokens       int64
	Temperature     *float64
	PromptTextChars int
	MaxHeadings     int
	RequiredFields  string
	PrefillJSON     bool
}

// Requester builds the prompt, calls the model once and reconciles the
// response into a Report.
type Requester struct {
	client anthropic.Client
	cfg    Config
}

// New creates a Requester. client may be nil when no API key is configured;
// Request then fails with a configuration error before any call.
func New(client anthropic.Client, cfg Config) *Requester {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.PromptTextChars <= 0 {
		cfg.PromptTextChars = DefaultPromptTextChars
	}
	if cfg.MaxHeadings <= 0 {
		cfg.MaxHeadings = DefaultMaxHeadings
	}
	if cfg.RequiredFields == "" {
		cfg.RequiredFields = PolicyDefault
	}
	return &Requester{client: client, cfg: cfg}
}

// Model returns the configured model identifier.
func (r *Requester) Model() string {
	return r.cfg.Model
}

// Request asks the model for a report on snap. extras are merged into the
// report metadata after the provenance keys.
func (r *Requester) Request(ctx context.Context, snap *model.Snapshot, extras map[string]any) (*model.Report, error) {
	if r.cfg.APIKey == "" || r.client == nil {
		return nil, resilience.ConfigurationError("anthropic API key is not configured (set SELDA_ANTHROPIC_KEY)")
	}
	if snap == nil {
		return nil, resilience.InvalidInput("snapshot is required", nil)
	}

	log := zap.L().With(zap.String("url", snap.URL), zap.String("model", r.cfg.Model))

	userMsg, err := r.userPrompt(snap)
	if err != nil {
		return nil, err
	}

	messages := []anthropic.Message{{Role: "user", Content: userMsg}}
	if r.cfg.PrefillJSON {
		messages = append(messages, anthropic.Message{Role: "assistant", Content: jsonPrefill})
	}

	start := time.Now()
	resp, err := r.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       r.cfg.Model,
		MaxTokens:   r.cfg.MaxTokens,
		System:      anthropic.CachedSystemBlocks(SystemPrompt()),
		Messages:    messages,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return nil, eris.Wrap(err, "insight: request report")
	}

	modelVersion := resp.Model
	if modelVersion == "" {
		modelVersion = r.cfg.Model
	}
	resp.Usage.LogCost(modelVersion, "insight")
	log.Debug("insight: model responded",
		zap.String("stop_reason", resp.StopReason),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StopReason == "max_tokens" {
		log.Warn("insight: model output hit max_tokens, report may be truncated",
			zap.Int64("max_tokens", r.cfg.MaxTokens))
	}

	text := resp.Text()
	if r.cfg.PrefillJSON {
		text = jsonPrefill + text
	}

	report, err := reconcile(text, r.cfg.RequiredFields)
	if err != nil {
		log.Warn("insight: reconcile failed", zap.Error(err))
		return nil, err
	}

	if report.VerifierInsights == nil {
		report.VerifierInsights = verifierFromSnapshot(snap)
	}
	report.Metadata = report.Metadata.Merge(provenance(snap, modelVersion)).Merge(extras)

	return report, nil
}
