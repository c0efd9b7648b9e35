package config

import (
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"

	"github.com/mrqget/mrq-launcher/internal/render"
	"github.com/mrqget/mrq-launcher/internal/unreal"
)

// Settings keys for Fyne preferences
const (
	KeyExecutablePath  = "unreal_editor_cmd"
	KeyRetries         = "render_retries"
	KeyFailPolicy      = "fail_policy"
	KeyKillTimeout     = "kill_timeout_seconds"
	KeyLogsDir         = "logs_directory"
	KeyRevealFailedLog = "reveal_log_on_failure"
)

// Default values
const (
	DefaultRetries         = 0
	MaxRetries             = 3
	DefaultKillTimeoutSecs = 10
	MaxKillTimeoutSecs     = 120
	DefaultRevealFailedLog = false
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetExecutablePath returns the configured renderer executable path, probing
// the standard install locations when nothing is configured yet.
func (s *Settings) GetExecutablePath() string {
	path := s.app.Preferences().String(KeyExecutablePath)
	if path == "" {
		path = unreal.DetectDefaultEditorCmd()
		if path != "" {
			s.SetExecutablePath(path)
		}
	}
	return path
}

// SetExecutablePath sets the renderer executable path
func (s *Settings) SetExecutablePath(path string) {
	s.app.Preferences().SetString(KeyExecutablePath, path)
}

// GetRetries returns the per-task retry count
func (s *Settings) GetRetries() int {
	value := s.app.Preferences().IntWithFallback(KeyRetries, DefaultRetries)
	if value < 0 {
		return DefaultRetries
	}
	if value > MaxRetries {
		return MaxRetries
	}
	return value
}

// SetRetries sets the per-task retry count
func (s *Settings) SetRetries(count int) {
	if count < 0 {
		count = 0
	}
	if count > MaxRetries {
		count = MaxRetries
	}
	s.app.Preferences().SetInt(KeyRetries, count)
}

// GetFailPolicy returns the configured fail policy
func (s *Settings) GetFailPolicy() render.FailPolicy {
	return render.ParseFailPolicy(s.app.Preferences().String(KeyFailPolicy))
}

// SetFailPolicy sets the fail policy
func (s *Settings) SetFailPolicy(policy render.FailPolicy) {
	s.app.Preferences().SetString(KeyFailPolicy, string(policy))
}

// GetFailPolicyOptions returns the selectable fail policies
func (s *Settings) GetFailPolicyOptions() []render.FailPolicy {
	return []render.FailPolicy{
		render.FailPolicyRetryThenNext,
		render.FailPolicySkipNext,
		render.FailPolicyStopQueue,
	}
}

// GetKillTimeout returns the soft-cancel window before a hard kill
func (s *Settings) GetKillTimeout() time.Duration {
	secs := s.app.Preferences().IntWithFallback(KeyKillTimeout, DefaultKillTimeoutSecs)
	if secs < 0 {
		secs = DefaultKillTimeoutSecs
	}
	if secs > MaxKillTimeoutSecs {
		secs = MaxKillTimeoutSecs
	}
	return time.Duration(secs) * time.Second
}

// SetKillTimeoutSeconds sets the soft-cancel window in seconds
func (s *Settings) SetKillTimeoutSeconds(secs int) {
	if secs < 0 {
		secs = 0
	}
	if secs > MaxKillTimeoutSecs {
		secs = MaxKillTimeoutSecs
	}
	s.app.Preferences().SetInt(KeyKillTimeout, secs)
}

// GetLogsDirectory returns the render log directory, defaulting to mrq_logs
// under the working directory.
func (s *Settings) GetLogsDirectory() string {
	dir := s.app.Preferences().String(KeyLogsDir)
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		dir = filepath.Join(cwd, render.DefaultLogsDirName)
		s.SetLogsDirectory(dir)
	}
	return dir
}

// SetLogsDirectory sets the render log directory
func (s *Settings) SetLogsDirectory(dir string) {
	s.app.Preferences().SetString(KeyLogsDir, dir)
}

// GetRevealLogOnFailure returns whether to reveal the log file of a failed
// render in the system file manager.
func (s *Settings) GetRevealLogOnFailure() bool {
	return s.app.Preferences().BoolWithFallback(KeyRevealFailedLog, DefaultRevealFailedLog)
}

// SetRevealLogOnFailure sets whether to reveal failed render logs
func (s *Settings) SetRevealLogOnFailure(reveal bool) {
	s.app.Preferences().SetBool(KeyRevealFailedLog, reveal)
}
