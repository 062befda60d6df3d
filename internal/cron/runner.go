package cronrunner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled ledger sweep.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		// A sweep still running when its next tick fires skips that tick.
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

func (r *Runner) Add(job Job) (cron.EntryID, error) {
	return r.cron.AddFunc(job.Spec, func() { r.run(job) })
}

func (r *Runner) run(job Job) {
	if r.baseCtx.Err() != nil {
		return
	}
	start := time.Now()
	err := job.Run(r.baseCtx)
	fields := []zap.Field{zap.String("job", job.Name), zap.Duration("took", time.Since(start))}
	if err != nil {
		r.logger.Warn("cron job failed", append(fields, zap.Error(err))...)
		return
	}
	r.logger.Debug("cron job ok", fields...)
}

func (r *Runner) Start() {
	r.logger.Info("cron started", zap.Int("jobs", len(r.cron.Entries())))
	r.cron.Start()
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("cron stopped")
}
