package config

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"

	"github.com/mrqget/mrq-launcher/internal/render"
)

func TestExecutablePath(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	custom := "C:/UE/UnrealEditor-Cmd.exe"
	settings.SetExecutablePath(custom)

	if got := settings.GetExecutablePath(); got != custom {
		t.Errorf("Expected executable path %s, got %s", custom, got)
	}
}

func TestRetries(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if got := settings.GetRetries(); got != DefaultRetries {
		t.Errorf("Expected default retries %d, got %d", DefaultRetries, got)
	}

	settings.SetRetries(2)
	if got := settings.GetRetries(); got != 2 {
		t.Errorf("Expected retries 2, got %d", got)
	}

	// Out-of-range values clamp
	settings.SetRetries(99)
	if got := settings.GetRetries(); got != MaxRetries {
		t.Errorf("Expected retries clamped to %d, got %d", MaxRetries, got)
	}
	settings.SetRetries(-5)
	if got := settings.GetRetries(); got != 0 {
		t.Errorf("Expected retries clamped to 0, got %d", got)
	}
}

func TestFailPolicy(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if got := settings.GetFailPolicy(); got != render.FailPolicyRetryThenNext {
		t.Errorf("Expected default policy retry_then_next, got %s", got)
	}

	settings.SetFailPolicy(render.FailPolicyStopQueue)
	if got := settings.GetFailPolicy(); got != render.FailPolicyStopQueue {
		t.Errorf("Expected policy stop_queue, got %s", got)
	}

	if len(settings.GetFailPolicyOptions()) != 3 {
		t.Error("Expected three fail policy options")
	}
}

func TestKillTimeout(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if got := settings.GetKillTimeout(); got != DefaultKillTimeoutSecs*time.Second {
		t.Errorf("Expected default kill timeout, got %v", got)
	}

	settings.SetKillTimeoutSeconds(25)
	if got := settings.GetKillTimeout(); got != 25*time.Second {
		t.Errorf("Expected kill timeout 25s, got %v", got)
	}

	settings.SetKillTimeoutSeconds(9999)
	if got := settings.GetKillTimeout(); got != MaxKillTimeoutSecs*time.Second {
		t.Errorf("Expected kill timeout clamped to %ds, got %v", MaxKillTimeoutSecs, got)
	}
}

func TestLogsDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if got := settings.GetLogsDirectory(); got == "" {
		t.Error("Logs directory should not be empty")
	}

	custom := "/tmp/render-logs"
	settings.SetLogsDirectory(custom)
	if got := settings.GetLogsDirectory(); got != custom {
		t.Errorf("Expected logs directory %s, got %s", custom, got)
	}
}

func TestRevealLogOnFailure(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.GetRevealLogOnFailure() != DefaultRevealFailedLog {
		t.Error("Expected default reveal-log setting")
	}

	settings.SetRevealLogOnFailure(true)
	if !settings.GetRevealLogOnFailure() {
		t.Error("Expected reveal-log setting to persist")
	}
}
