package render

import (
	"context"
	"sync"

	"github.com/mrqget/mrq-launcher/internal/log"
	"github.com/mrqget/mrq-launcher/internal/model"
)

// FailPolicy decides what happens to the rest of the queue when a task fails.
type FailPolicy string

const (
	// FailPolicyRetryThenNext retries the failed task up to the configured
	// count, then moves on. With zero retries this is plain
	// continue-on-failure, the default.
	FailPolicyRetryThenNext FailPolicy = "retry_then_next"

	// FailPolicySkipNext moves on immediately without retrying
	FailPolicySkipNext FailPolicy = "skip_next"

	// FailPolicyStopQueue halts the whole run on the first failure
	FailPolicyStopQueue FailPolicy = "stop_queue"
)

// ParseFailPolicy validates a serialized policy, defaulting to retry_then_next.
func ParseFailPolicy(s string) FailPolicy {
	switch FailPolicy(s) {
	case FailPolicySkipNext, FailPolicyStopQueue:
		return FailPolicy(s)
	default:
		return FailPolicyRetryThenNext
	}
}

// TaskRunner executes a single task. Satisfied by *Runner.
type TaskRunner interface {
	Run(ctx context.Context, task *model.RenderTask) error
}

// DriverOptions configure a run.
type DriverOptions struct {
	Retries    int
	FailPolicy FailPolicy
}

// Driver executes tasks strictly sequentially on a single background
// goroutine: at most one render process is in flight at any time. The
// remaining work is a lock-protected list, not an array snapshot, so tasks
// can be appended safely while a run is mid-iteration.
type Driver struct {
	runner TaskRunner
	opts   DriverOptions

	mu         sync.Mutex
	running    bool
	pending    []*model.RenderTask
	inFlight   *model.RenderTask
	cancelRun  context.CancelFunc
	cancelTask context.CancelFunc

	onUpdate func(*model.RenderTask)
	onDone   func()
}

// NewDriver creates a driver over the given runner.
func NewDriver(runner TaskRunner, opts DriverOptions) *Driver {
	return &Driver{runner: runner, opts: opts}
}

// SetUpdateCallback sets the per-task callback, fired from the run goroutine
// whenever a task changes state. The presentation layer marshals it onto its
// own thread.
func (d *Driver) SetUpdateCallback(callback func(*model.RenderTask)) {
	d.onUpdate = callback
}

// SetDoneCallback sets the callback fired once when a run drains or is
// cancelled.
func (d *Driver) SetDoneCallback(callback func()) {
	d.onDone = callback
}

// Configure swaps the runner and fail-policy options between runs, so the
// next Start picks up edited settings. Fails with ErrAlreadyRunning while a
// run is active.
func (d *Driver) Configure(runner TaskRunner, opts DriverOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return ErrAlreadyRunning
	}
	d.runner = runner
	d.opts = opts
	return nil
}

// IsRunning reports whether a run is in progress.
func (d *Driver) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Start begins sequential execution of the given ordered tasks. It returns
// immediately; the run proceeds on its own goroutine. Fails with
// ErrAlreadyRunning while a run is active, leaving the in-flight state
// untouched.
func (d *Driver) Start(tasks []*model.RenderTask) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrAlreadyRunning
	}
	d.running = true
	d.pending = append(d.pending[:0:0], tasks...)
	for _, task := range d.pending {
		task.Status = model.TaskStatusPending
		task.Percent = 0
		task.LastError = ""
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancelRun = cancel
	d.mu.Unlock()

	log.GetLogger().Infof("run started with %d task(s)", len(tasks))
	go d.loop(ctx)
	return nil
}

// Append enqueues a task for execution after everything already scheduled.
// Safe to call from the presentation layer while the run loop is
// mid-iteration. Reports false when no run is active, in which case the task
// belongs in the store only.
func (d *Driver) Append(task *model.RenderTask) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return false
	}
	task.Status = model.TaskStatusPending
	task.Percent = 0
	task.LastError = ""
	d.pending = append(d.pending, task)
	return true
}

// Cancel requests termination of the in-flight render and halts further
// iteration. Completed tasks keep their status; the in-flight task becomes
// Cancelled; not-yet-started tasks remain Pending. Cancellation is not an
// error.
func (d *Driver) Cancel() {
	d.mu.Lock()
	cancel := d.cancelRun
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// CancelCurrent terminates only the in-flight render; the remaining pending
// tasks still run. The cancelled task is not retried. No-op when nothing is
// in flight.
func (d *Driver) CancelCurrent() {
	d.mu.Lock()
	cancel := d.cancelTask
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// loop is the single logical worker: pop, run, repeat.
func (d *Driver) loop(ctx context.Context) {
	logger := log.GetLogger()

	for {
		if ctx.Err() != nil {
			break
		}

		d.mu.Lock()
		if len(d.pending) == 0 {
			d.mu.Unlock()
			break
		}
		task := d.pending[0]
		d.pending = d.pending[1:]
		d.inFlight = task
		d.mu.Unlock()

		stop := d.runOne(ctx, task)

		d.mu.Lock()
		d.inFlight = nil
		d.mu.Unlock()

		if stop {
			break
		}
	}

	d.mu.Lock()
	d.running = false
	d.pending = nil
	d.cancelRun = nil
	d.mu.Unlock()

	logger.Info("run complete")
	if d.onDone != nil {
		d.onDone()
	}
}

// runOne executes a single task under the fail policy, reporting whether the
// run should stop.
func (d *Driver) runOne(ctx context.Context, task *model.RenderTask) bool {
	logger := log.GetLogger()

	if err := task.Validate(); err != nil {
		// Incomplete tasks get a terminal diagnostic instead of lingering
		// Pending forever.
		task.Status = model.TaskStatusFailed
		task.LastError = err.Error()
		d.notifyUpdate(task)
		logger.Warnf("task %s skipped: %v", task.ID, err)
		return false
	}

	attempts := 1
	if d.opts.FailPolicy == FailPolicyRetryThenNext && d.opts.Retries > 0 {
		attempts += d.opts.Retries
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		taskCtx, taskCancel := context.WithCancel(ctx)
		d.mu.Lock()
		d.cancelTask = taskCancel
		d.mu.Unlock()

		err := d.runner.Run(taskCtx, task)

		d.mu.Lock()
		d.cancelTask = nil
		d.mu.Unlock()
		taskCancel()

		if err != nil {
			// Setup errors (missing executable, bad task) are terminal for
			// the task; the rest of the batch still gets its chance.
			task.Status = model.TaskStatusFailed
			task.LastError = err.Error()
			d.notifyUpdate(task)
			logger.Errorf("task %s setup failed: %v", task.ID, err)
			break
		}
		if task.Status != model.TaskStatusFailed {
			break
		}
		if attempt < attempts && ctx.Err() == nil {
			logger.Infof("task %s failed, retrying (%d/%d)", task.ID, attempt+1, attempts)
		}
	}

	if task.Status == model.TaskStatusFailed && d.opts.FailPolicy == FailPolicyStopQueue {
		logger.Warn("task failed, stopping queue by policy")
		return true
	}
	return false
}

func (d *Driver) notifyUpdate(task *model.RenderTask) {
	if d.onUpdate != nil {
		d.onUpdate(task)
	}
}
