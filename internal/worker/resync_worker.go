package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/anonto42/campus-board/backend/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Resyncer is the part of the sync service the worker drives
type Resyncer interface {
	Resync(ctx context.Context, mode services.SyncMode, trigger string) (*services.SyncResult, error)
}

// ResyncWorker rebuilds the aggregate store on a cron schedule
type ResyncWorker struct {
	cron     *cron.Cron
	resyncer Resyncer
	mode     services.SyncMode
	log      logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewResyncWorker creates a worker running mode resyncs on schedule, a robfig/cron spec
// with optional seconds field or a descriptor such as "@every 15m"
func NewResyncWorker(resyncer Resyncer, schedule string, mode services.SyncMode, log logrus.FieldLogger) (*ResyncWorker, error) {
	if mode != services.SyncModeAll && mode != services.SyncModeActive {
		return nil, fmt.Errorf("unknown resync mode %q", mode)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &ResyncWorker{
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
		resyncer: resyncer,
		mode:     mode,
		log:      log.WithField("component", "resync_worker"),
		ctx:      ctx,
		cancel:   cancel,
	}
	if _, err := w.cron.AddFunc(schedule, w.RunOnce); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid resync schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start begins running scheduled resyncs in the background
func (w *ResyncWorker) Start() {
	w.cron.Start()
	w.log.WithField("mode", w.mode).Info("Resync worker started")
}

// Stop cancels any running resync and waits for it to return
func (w *ResyncWorker) Stop() {
	stopped := w.cron.Stop()
	w.cancel()
	<-stopped.Done()
	w.wg.Wait()
	w.log.Info("Resync worker stopped")
}

// RunOnce performs a single scheduled resync. A resync already running elsewhere is not an error.
func (w *ResyncWorker) RunOnce() {
	w.wg.Add(1)
	defer w.wg.Done()

	result, err := w.resyncer.Resync(w.ctx, w.mode, services.TriggerSchedule)
	switch {
	case errors.Is(err, services.ErrSyncInProgress):
		w.log.Debug("Resync already in progress, skipping tick")
	case err != nil:
		w.log.WithError(err).Error("Scheduled resync failed")
	default:
		w.log.WithFields(logrus.Fields{
			"run_id":   result.RunID,
			"inserted": result.InsertedCount,
			"removed":  result.Removed,
		}).Debug("Scheduled resync finished")
	}
}
