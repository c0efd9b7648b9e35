package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	applog "github.com/mrqget/mrq-launcher/internal/log"
	"github.com/mrqget/mrq-launcher/internal/model"
	"github.com/mrqget/mrq-launcher/internal/persist"
	"github.com/mrqget/mrq-launcher/internal/render"
	"github.com/mrqget/mrq-launcher/internal/unreal"
)

// Environment overrides for saved queue options
const (
	EnvExecutable  = "MRQ_UE_CMD"
	EnvLogsDir     = "MRQ_LOGS_DIR"
	EnvKillTimeout = "MRQ_KILL_TIMEOUT"
)

var rootCmd = &cobra.Command{
	Use:   "mrqctl",
	Short: "Headless runner for saved Movie Render Queue files",
}

var runCmd = &cobra.Command{
	Use:   "run <queue.json>",
	Short: "Render every enabled task from a saved queue file",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueue,
}

var validateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Check a queue or task file without rendering",
	Args:  cobra.ExactArgs(1),
	RunE:  validateFile,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := godotenv.Load(); err != nil {
		applog.GetLogger().Debug("No .env file found, using environment variables")
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runQueue(cmd *cobra.Command, args []string) error {
	logger := applog.GetLogger()

	store, opts, err := persist.LoadQueue(args[0])
	if err != nil {
		return err
	}

	exe := store.ExecutablePath()
	if v := os.Getenv(EnvExecutable); v != "" {
		exe = v
	}
	if exe == "" {
		exe = unreal.DetectDefaultEditorCmd()
	}
	if exe == "" {
		return &render.ExecutableNotFoundError{}
	}
	if _, err := os.Stat(exe); err != nil {
		return &render.ExecutableNotFoundError{Path: exe}
	}

	logsDir := os.Getenv(EnvLogsDir)
	if logsDir == "" {
		logsDir = render.DefaultLogsDirName
	}

	killTimeout := time.Duration(opts.KillTimeout) * time.Second
	if v := os.Getenv(EnvKillTimeout); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			killTimeout = time.Duration(secs) * time.Second
		}
	}
	if killTimeout <= 0 {
		killTimeout = render.DefaultKillTimeout
	}

	tasks := store.Collect(true, nil)
	if len(tasks) == 0 {
		logger.Warn("Queue has no enabled tasks")
		return nil
	}

	runner := render.NewRunner(render.RunnerOptions{
		ExecutablePath: exe,
		LogsDir:        logsDir,
		KillTimeout:    killTimeout,
	})
	runner.SetUpdateCallback(func(task *model.RenderTask) {
		if task.Status == model.TaskStatusRunning {
			logger.WithFields(map[string]interface{}{
				"sequence": unreal.SoftName(task.Sequence),
				"percent":  task.Percent,
			}).Debug("Render progress")
		}
	})

	driver := render.NewDriver(runner, render.DriverOptions{
		Retries:    opts.Retries,
		FailPolicy: render.ParseFailPolicy(opts.FailPolicy),
	})
	driver.SetUpdateCallback(func(task *model.RenderTask) {
		if !task.Status.IsTerminal() {
			return
		}
		entry := logger.WithFields(map[string]interface{}{
			"sequence": unreal.SoftName(task.Sequence),
			"status":   task.Status,
			"elapsed":  task.ElapsedString(),
			"log":      task.LogPath,
		})
		if task.Status == model.TaskStatusSucceeded {
			entry.Info("Render finished")
		} else {
			entry.WithField("error", task.LastError).Error("Render did not succeed")
		}
	})

	done := make(chan struct{})
	driver.SetDoneCallback(func() { close(done) })

	logger.WithField("tasks", len(tasks)).Info("Starting queue")
	if err := driver.Start(tasks); err != nil {
		return err
	}
	<-done

	failed := 0
	for _, task := range tasks {
		if task.Status != model.TaskStatusSucceeded {
			failed++
		}
	}
	if failed > 0 {
		logger.WithField("failed", failed).Error("Queue finished with failures")
		os.Exit(1)
	}
	logger.Info("Queue finished, all tasks succeeded")
	return nil
}

func validateFile(cmd *cobra.Command, args []string) error {
	logger := applog.GetLogger()

	tasks, err := persist.LoadTasks(args[0])
	if err != nil {
		return err
	}
	for i, task := range tasks {
		if err := task.Validate(); err != nil {
			logger.WithFields(map[string]interface{}{
				"index":    i,
				"sequence": unreal.SoftName(task.Sequence),
			}).WithError(err).Error("Invalid task")
			os.Exit(1)
		}
	}
	logger.WithField("tasks", len(tasks)).Info("File is valid")
	return nil
}
