package render

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrqget/mrq-launcher/internal/model"
)

// fakeRunner simulates per-task outcomes and lets tests block mid-task.
type fakeRunner struct {
	mu       sync.Mutex
	outcomes map[string]model.TaskStatus // task ID -> terminal status, default Succeeded
	order    []string
	started  chan string   // receives task ID when a task begins, if set
	release  chan struct{} // blocks each task until a receive, if set
}

func (f *fakeRunner) Run(ctx context.Context, task *model.RenderTask) error {
	f.mu.Lock()
	f.order = append(f.order, task.ID)
	f.mu.Unlock()

	task.Status = model.TaskStatusRunning
	if f.started != nil {
		f.started <- task.ID
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			task.Status = model.TaskStatusCancelled
			return nil
		}
	}
	if ctx.Err() != nil {
		task.Status = model.TaskStatusCancelled
		return nil
	}

	f.mu.Lock()
	status, ok := f.outcomes[task.ID]
	f.mu.Unlock()
	if !ok {
		status = model.TaskStatusSucceeded
	}
	task.Status = status
	return nil
}

func (f *fakeRunner) ranOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

func driverTask(t *testing.T, name string) *model.RenderTask {
	t.Helper()
	task, err := model.NewRenderTask(
		"C:/P/Demo.uproject", "/Game/Maps/"+name+"."+name, "/Game/Cine/S.S", "/Game/Presets/P.P")
	require.NoError(t, err)
	return task
}

func startAndWait(t *testing.T, d *Driver, tasks []*model.RenderTask) {
	t.Helper()
	done := make(chan struct{})
	d.SetDoneCallback(func() { close(done) })
	require.NoError(t, d.Start(tasks))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not complete in time")
	}
}

func TestDriver_FailureDoesNotHaltBatch(t *testing.T) {
	t1 := driverTask(t, "A")
	t2 := driverTask(t, "B")
	t3 := driverTask(t, "C")

	runner := &fakeRunner{outcomes: map[string]model.TaskStatus{t1.ID: model.TaskStatusFailed}}
	d := NewDriver(runner, DriverOptions{FailPolicy: FailPolicyRetryThenNext})

	startAndWait(t, d, []*model.RenderTask{t1, t2, t3})

	assert.Equal(t, model.TaskStatusFailed, t1.Status)
	assert.Equal(t, model.TaskStatusSucceeded, t2.Status)
	assert.Equal(t, model.TaskStatusSucceeded, t3.Status)
	assert.Len(t, runner.ranOrder(), 3, "completion is reported after the last task, never after the first failure")
	assert.False(t, d.IsRunning())
}

func TestDriver_StopQueuePolicyHalts(t *testing.T) {
	t1 := driverTask(t, "A")
	t2 := driverTask(t, "B")

	runner := &fakeRunner{outcomes: map[string]model.TaskStatus{t1.ID: model.TaskStatusFailed}}
	d := NewDriver(runner, DriverOptions{FailPolicy: FailPolicyStopQueue})

	startAndWait(t, d, []*model.RenderTask{t1, t2})

	assert.Equal(t, model.TaskStatusFailed, t1.Status)
	assert.Equal(t, model.TaskStatusPending, t2.Status, "queued tasks stay Pending when the run stops")
	assert.Len(t, runner.ranOrder(), 1)
}

func TestDriver_RetryThenNext(t *testing.T) {
	t1 := driverTask(t, "A")
	t2 := driverTask(t, "B")

	runner := &fakeRunner{outcomes: map[string]model.TaskStatus{t1.ID: model.TaskStatusFailed}}
	d := NewDriver(runner, DriverOptions{Retries: 2, FailPolicy: FailPolicyRetryThenNext})

	startAndWait(t, d, []*model.RenderTask{t1, t2})

	order := runner.ranOrder()
	require.Len(t, order, 4, "failed task runs 1+2 times, then the next task")
	assert.Equal(t, []string{t1.ID, t1.ID, t1.ID, t2.ID}, order)
	assert.Equal(t, model.TaskStatusFailed, t1.Status)
	assert.Equal(t, model.TaskStatusSucceeded, t2.Status)
}

func TestDriver_SkipNextDoesNotRetry(t *testing.T) {
	t1 := driverTask(t, "A")

	runner := &fakeRunner{outcomes: map[string]model.TaskStatus{t1.ID: model.TaskStatusFailed}}
	d := NewDriver(runner, DriverOptions{Retries: 3, FailPolicy: FailPolicySkipNext})

	startAndWait(t, d, []*model.RenderTask{t1})

	assert.Len(t, runner.ranOrder(), 1)
}

func TestDriver_AppendWhileRunning(t *testing.T) {
	t1 := driverTask(t, "A")
	t2 := driverTask(t, "B")
	t3 := driverTask(t, "C")
	t4 := driverTask(t, "D")

	runner := &fakeRunner{
		started: make(chan string),
		release: make(chan struct{}),
	}
	d := NewDriver(runner, DriverOptions{FailPolicy: FailPolicyRetryThenNext})
	done := make(chan struct{})
	d.SetDoneCallback(func() { close(done) })

	require.NoError(t, d.Start([]*model.RenderTask{t1, t2, t3}))

	// T1 is in flight; append T4 before T2 starts
	<-runner.started
	assert.True(t, d.Append(t4))
	runner.release <- struct{}{}

	for i := 0; i < 3; i++ {
		<-runner.started
		runner.release <- struct{}{}
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not complete in time")
	}

	assert.Equal(t, []string{t1.ID, t2.ID, t3.ID, t4.ID}, runner.ranOrder(),
		"appended task executes after the originally scheduled set")
}

func TestDriver_AppendWhenIdle(t *testing.T) {
	d := NewDriver(&fakeRunner{}, DriverOptions{})
	assert.False(t, d.Append(driverTask(t, "A")), "append outside a run belongs to the store")
}

func TestDriver_CancelMidRun(t *testing.T) {
	t1 := driverTask(t, "A")
	t2 := driverTask(t, "B")
	t3 := driverTask(t, "C")

	runner := &fakeRunner{
		started: make(chan string),
		release: make(chan struct{}),
	}
	d := NewDriver(runner, DriverOptions{FailPolicy: FailPolicyRetryThenNext})
	done := make(chan struct{})
	d.SetDoneCallback(func() { close(done) })

	require.NoError(t, d.Start([]*model.RenderTask{t1, t2, t3}))

	// Let T1 finish cleanly
	<-runner.started
	runner.release <- struct{}{}

	// Cancel while T2 is in flight
	<-runner.started
	d.Cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}

	assert.Equal(t, model.TaskStatusSucceeded, t1.Status)
	assert.Equal(t, model.TaskStatusCancelled, t2.Status)
	assert.Equal(t, model.TaskStatusPending, t3.Status)
	assert.False(t, d.IsRunning())
}

func TestDriver_CancelCurrentContinuesQueue(t *testing.T) {
	t1 := driverTask(t, "A")
	t2 := driverTask(t, "B")

	runner := &fakeRunner{
		started: make(chan string),
		release: make(chan struct{}),
	}
	d := NewDriver(runner, DriverOptions{FailPolicy: FailPolicyRetryThenNext, Retries: 2})
	done := make(chan struct{})
	d.SetDoneCallback(func() { close(done) })

	require.NoError(t, d.Start([]*model.RenderTask{t1, t2}))

	// Cancel only T1; T2 must still run
	<-runner.started
	d.CancelCurrent()

	<-runner.started
	runner.release <- struct{}{}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not complete after cancelling the current task")
	}

	assert.Equal(t, model.TaskStatusCancelled, t1.Status)
	assert.Equal(t, model.TaskStatusSucceeded, t2.Status)
	// A cancelled task is never retried
	assert.Equal(t, []string{t1.ID, t2.ID}, runner.ranOrder())
}

func TestDriver_StartWhileRunning(t *testing.T) {
	t1 := driverTask(t, "A")

	runner := &fakeRunner{
		started: make(chan string),
		release: make(chan struct{}),
	}
	d := NewDriver(runner, DriverOptions{FailPolicy: FailPolicyRetryThenNext})
	done := make(chan struct{})
	d.SetDoneCallback(func() { close(done) })

	require.NoError(t, d.Start([]*model.RenderTask{t1}))
	<-runner.started

	err := d.Start([]*model.RenderTask{driverTask(t, "B")})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.ErrorIs(t, d.Configure(runner, DriverOptions{}), ErrAlreadyRunning)
	assert.Equal(t, model.TaskStatusRunning, t1.Status, "in-flight state is untouched")

	runner.release <- struct{}{}
	<-done
}

func TestDriver_InvalidTaskGetsTerminalFailure(t *testing.T) {
	broken := &model.RenderTask{ID: "broken", Enabled: true, Status: model.TaskStatusPending}
	good := driverTask(t, "A")

	runner := &fakeRunner{}
	d := NewDriver(runner, DriverOptions{FailPolicy: FailPolicyRetryThenNext})

	startAndWait(t, d, []*model.RenderTask{broken, good})

	assert.Equal(t, model.TaskStatusFailed, broken.Status, "never left Pending indefinitely")
	assert.NotEmpty(t, broken.LastError)
	assert.Equal(t, model.TaskStatusSucceeded, good.Status)
	assert.Equal(t, []string{good.ID}, runner.ranOrder())
}
