package render

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrqget/mrq-launcher/internal/log"
	"github.com/mrqget/mrq-launcher/internal/model"
	"github.com/mrqget/mrq-launcher/internal/unreal"
)

// Renderer invocation flags for headless, non-interactive batch execution
const (
	FlagGame               = "-game"
	FlagLog                = "-log"
	FlagNoTextureStreaming = "-notexturestreaming"
	FlagLevelSequence      = "-LevelSequence"
	FlagPipelineConfig     = "-MoviePipelineConfig"
)

// DefaultKillTimeout bounds the wait between soft termination and hard kill
const DefaultKillTimeout = 10 * time.Second

// DefaultLogsDirName is the per-session render log directory
const DefaultLogsDirName = "mrq_logs"

const logTimestampLayout = "20060102_150405"

// RunnerOptions configure a Runner.
type RunnerOptions struct {
	ExecutablePath string
	LogsDir        string
	KillTimeout    time.Duration
}

// Runner executes exactly one render task as an external process and reports
// the outcome through the task's status fields. Render exit failures are
// recorded, not returned; only setup problems (missing executable, invalid
// task) surface as errors.
type Runner struct {
	opts     RunnerOptions
	onUpdate func(*model.RenderTask)
}

// NewRunner creates a runner for the given executable and logs directory.
func NewRunner(opts RunnerOptions) *Runner {
	if opts.KillTimeout <= 0 {
		opts.KillTimeout = DefaultKillTimeout
	}
	if opts.LogsDir == "" {
		opts.LogsDir = DefaultLogsDirName
	}
	return &Runner{opts: opts}
}

// SetUpdateCallback sets the callback fired on task status and progress
// changes. It is invoked from the run goroutine.
func (r *Runner) SetUpdateCallback(callback func(*model.RenderTask)) {
	r.onUpdate = callback
}

// BuildArgs composes the renderer command line for one task: the project,
// the map, and the MRQ job specification plus the fixed batch flags.
func (r *Runner) BuildArgs(task *model.RenderTask) []string {
	return []string{
		task.UProject,
		unreal.MapArgument(task.Level),
		FlagGame,
		fmt.Sprintf("%s=%q", FlagLevelSequence, task.Sequence),
		fmt.Sprintf("%s=%q", FlagPipelineConfig, task.Preset),
		FlagLog,
		FlagNoTextureStreaming,
	}
}

// LogFileName builds a session-unique log name from the task's short asset
// names, a timestamp, and the task ID tail, so reruns never collide.
func (r *Runner) LogFileName(task *model.RenderTask, now time.Time) string {
	base := fmt.Sprintf("%s__%s__%s",
		unreal.SoftName(task.Level), unreal.SoftName(task.Sequence), unreal.SoftName(task.Preset))
	tail := task.ID
	if idx := strings.LastIndex(tail, "-"); idx >= 0 {
		tail = tail[idx+1:]
	}
	return fmt.Sprintf("%s_%s_%s.log", now.Format(logTimestampLayout), base, tail)
}

// Run executes the task synchronously, blocking until the process exits or
// the context is cancelled. The task must be valid; the executable must
// exist. A cancelled context terminates the process softly first, then kills
// it after the configured timeout.
func (r *Runner) Run(ctx context.Context, task *model.RenderTask) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if r.opts.ExecutablePath == "" {
		return &ExecutableNotFoundError{}
	}
	if _, err := os.Stat(r.opts.ExecutablePath); err != nil {
		return &ExecutableNotFoundError{Path: r.opts.ExecutablePath}
	}
	if err := os.MkdirAll(r.opts.LogsDir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}

	logger := log.GetLogger()
	started := time.Now()
	logPath := filepath.Join(r.opts.LogsDir, r.LogFileName(task, started))

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	task.LogPath = logPath
	task.StartedAt = started
	task.FinishedAt = time.Time{}
	task.Percent = 0
	task.LastError = ""
	task.Status = model.TaskStatusRunning
	r.notifyUpdate(task)

	args := r.BuildArgs(task)
	cmd := exec.CommandContext(ctx, r.opts.ExecutablePath, args...)

	// Soft-terminate on cancel; force-kill when the process outlives the
	// kill timeout.
	cmd.Cancel = func() error {
		// Interrupt is not deliverable on Windows; fall straight through to
		// the hard kill there.
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = r.opts.KillTimeout

	// Combined stdout/stderr stream, teed into the log file and scanned for
	// progress markers.
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	fmt.Fprintf(logFile, "CMD: %s %s\n", r.opts.ExecutablePath, strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		// Spawn failure after the log file exists: terminal Failed with a
		// diagnostic, never a task stuck in Pending.
		pw.Close()
		pr.Close()
		fmt.Fprintf(logFile, "SPAWN ERROR: %v\n", err)
		r.finish(task, model.TaskStatusFailed, fmt.Sprintf("failed to start renderer: %v", err))
		logger.WithField("task", task.ID).Errorf("failed to start renderer: %v", err)
		return nil
	}

	logger.WithField("task", task.ID).Infof("render started, log: %s", logPath)

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		r.pumpOutput(pr, logFile, task)
	}()

	waitErr := cmd.Wait()
	pw.Close()
	<-pumpDone

	switch {
	case ctx.Err() != nil:
		fmt.Fprintf(logFile, "\nCANCELLED\n")
		r.finish(task, model.TaskStatusCancelled, "")
		logger.WithField("task", task.ID).Info("render cancelled")
	case waitErr != nil:
		rc := -1
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			rc = exitErr.ExitCode()
		}
		fmt.Fprintf(logFile, "\nEXIT: %d\n", rc)
		r.finish(task, model.TaskStatusFailed, fmt.Sprintf("renderer exited with code %d", rc))
		logger.WithField("task", task.ID).Warnf("render failed, rc=%d", rc)
	default:
		fmt.Fprintf(logFile, "\nEXIT: 0\n")
		task.Percent = 100
		r.finish(task, model.TaskStatusSucceeded, "")
		logger.WithField("task", task.ID).Infof("render succeeded in %s", task.Elapsed.Round(time.Second))
	}

	return nil
}

// pumpOutput copies renderer output into the log file line by line and
// surfaces progress markers through the task.
func (r *Runner) pumpOutput(out io.Reader, logFile io.Writer, task *model.RenderTask) {
	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(logFile, line)
		if p, ok := ExtractProgress(line); ok && p != task.Percent {
			task.Percent = p
			r.notifyUpdate(task)
		}
	}
}

// finish records the terminal state and elapsed time.
func (r *Runner) finish(task *model.RenderTask, status model.TaskStatus, lastError string) {
	task.FinishedAt = time.Now()
	task.Elapsed = task.FinishedAt.Sub(task.StartedAt)
	task.Status = status
	if lastError != "" {
		task.LastError = lastError
	}
	r.notifyUpdate(task)
}

func (r *Runner) notifyUpdate(task *model.RenderTask) {
	if r.onUpdate != nil {
		r.onUpdate(task)
	}
}
