package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/store"
)

// recorder mirrors a run's progress into the store. Every store failure is
// logged and swallowed; a nil recorder or store records nothing.
type recorder struct {
	st    store.Store
	runID string
	log   *zap.Logger
}

func (p *Pipeline) startRecording(ctx context.Context, log *zap.Logger, target string) *recorder {
	if p.store == nil {
		return nil
	}
	run, err := p.store.CreateRun(ctx, target)
	if err != nil {
		log.Warn("pipeline: failed to create run record", zap.Error(err))
		return nil
	}
	return &recorder{st: p.store, runID: run.ID, log: log.With(zap.String("run_id", run.ID))}
}

func (r *recorder) status(ctx context.Context, status model.RunStatus) {
	if r == nil {
		return
	}
	if err := r.st.UpdateRunStatus(ctx, r.runID, status); err != nil {
		r.log.Warn("pipeline: failed to update run status", zap.String("status", string(status)), zap.Error(err))
	}
}

func (r *recorder) complete(ctx context.Context, report *model.Report) {
	if r == nil {
		return
	}
	if err := r.st.CompleteRun(ctx, r.runID, report); err != nil {
		r.log.Warn("pipeline: failed to record report", zap.Error(err))
	}
}

func (r *recorder) fail(ctx context.Context, runErr error) {
	if r == nil {
		return
	}
	if err := r.st.FailRun(ctx, r.runID, runErr); err != nil {
		r.log.Warn("pipeline: failed to record failure", zap.Error(err))
	}
}
