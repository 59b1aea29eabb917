package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/SeakMengs/AutoTermo/internal/service"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DEFAULT_BATCH_SIZE = 50
	RUN_TIMEOUT        = 5 * time.Minute
)

type Reconciler interface {
	ReconcileDocuments(ctx context.Context, limit int) (*service.ReconcileResult, error)
}

// ReconcileJob periodically rebuilds terms whose stored file lags behind the
// signature rows. Overlapping runs are skipped.
type ReconcileJob struct {
	cron       *cron.Cron
	reconciler Reconciler
	schedule   string
	batchSize  int
	logger     *zap.SugaredLogger
}

func NewReconcileJob(reconciler Reconciler, cfg config.TermoConfig, logger *zap.SugaredLogger) *ReconcileJob {
	batchSize := cfg.ReconcileBatchSize
	if batchSize <= 0 {
		batchSize = DEFAULT_BATCH_SIZE
	}

	cl := cronLogger{logger: logger}
	return &ReconcileJob{
		cron:       cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		reconciler: reconciler,
		schedule:   cfg.ReconcileSchedule,
		batchSize:  batchSize,
		logger:     logger,
	}
}

func (j *ReconcileJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.Infof("Reconcile job scheduled with %q, batch size %d", j.schedule, j.batchSize)
	return nil
}

// Stop the scheduler and wait for a running job to finish or ctx to end.
func (j *ReconcileJob) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.logger.Warn("Reconcile job did not finish before shutdown")
	}
}

func (j *ReconcileJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), RUN_TIMEOUT)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Errorf("Reconcile run failed: %v", err)
	}
}

// RunOnce works through stale terms batch by batch. It stops at the first
// short batch, or when a full batch rebuilt nothing so persistent failures
// do not spin.
func (j *ReconcileJob) RunOnce(ctx context.Context) (service.ReconcileResult, error) {
	var total service.ReconcileResult

	for {
		res, err := j.reconciler.ReconcileDocuments(ctx, j.batchSize)
		if err != nil {
			return total, err
		}

		total.Checked += res.Checked
		total.Rebuilt += res.Rebuilt
		total.Failed += res.Failed

		if res.Checked < j.batchSize || res.Rebuilt == 0 {
			return total, nil
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}

// cronLogger routes robfig/cron logs to zap.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
