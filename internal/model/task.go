package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskIDPrefix prefixes generated render task IDs
const TaskIDPrefix = "render-"

// RenderTask represents a single Movie Render Queue job: one map, one level
// sequence, and one render preset inside an Unreal project.
type RenderTask struct {
	ID         string
	UProject   string // filesystem path to the .uproject
	Level      string // map SoftObjectPath, e.g. /Game/Maps/MyMap.MyMap
	Sequence   string // LevelSequence SoftObjectPath
	Preset     string // MRQ preset SoftObjectPath
	Notes      string
	Enabled    bool
	Status     TaskStatus
	Percent    int    // 0 to 100, best-effort from renderer output
	LastError  string // last error message if any
	LogPath    string // path to the captured render log
	StartedAt  time.Time
	FinishedAt time.Time
	Elapsed    time.Duration
}

// ValidationError reports a task with missing required fields.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("render task validation: %s must not be empty", e.Field)
}

// MalformedRecordError reports a serialized task mapping that cannot be
// reconstructed.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed task record: field %q %s", e.Field, e.Reason)
}

// NewRenderTask constructs a validated task. All four asset paths are
// required for the task to be runnable.
func NewRenderTask(uproject, level, sequence, preset string) (*RenderTask, error) {
	fields := []struct {
		name, value string
	}{
		{"uproject", uproject},
		{"level", level},
		{"sequence", sequence},
		{"preset", preset},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return nil, &ValidationError{Field: f.name}
		}
	}

	return &RenderTask{
		ID:       GenerateTaskID(),
		UProject: uproject,
		Level:    level,
		Sequence: sequence,
		Preset:   preset,
		Enabled:  true,
		Status:   TaskStatusPending,
	}, nil
}

// Validate reports whether the task carries every path a render needs.
func (rt *RenderTask) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"uproject", rt.UProject},
		{"level", rt.Level},
		{"sequence", rt.Sequence},
		{"preset", rt.Preset},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name}
		}
	}
	return nil
}

// Clone returns a copy with independent identity. Runtime state is reset so
// the duplicate starts as a fresh Pending task.
func (rt *RenderTask) Clone() *RenderTask {
	return &RenderTask{
		ID:       GenerateTaskID(),
		UProject: rt.UProject,
		Level:    rt.Level,
		Sequence: rt.Sequence,
		Preset:   rt.Preset,
		Notes:    rt.Notes,
		Enabled:  rt.Enabled,
		Status:   TaskStatusPending,
	}
}

// ElapsedString formats elapsed time as mm:ss or hh:mm:ss, or "—" when the
// task has not run.
func (rt *RenderTask) ElapsedString() string {
	if rt.Elapsed <= 0 {
		return "—"
	}
	total := int(rt.Elapsed.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Mapping field names shared by the queue and task JSON formats.
const (
	FieldUProject = "uproject"
	FieldLevel    = "level"
	FieldSequence = "sequence"
	FieldPreset   = "preset"
	FieldNotes    = "notes"
	FieldEnabled  = "enabled"
	FieldStatus   = "status"
	FieldElapsed  = "elapsed_s"
	FieldLogPath  = "log_path"
)

// ToMap serializes the task to a mapping of primitive fields. Identity and
// wall-clock timestamps are session state and stay out of the file format.
func (rt *RenderTask) ToMap() map[string]any {
	return map[string]any{
		FieldUProject: rt.UProject,
		FieldLevel:    rt.Level,
		FieldSequence: rt.Sequence,
		FieldPreset:   rt.Preset,
		FieldNotes:    rt.Notes,
		FieldEnabled:  rt.Enabled,
		FieldStatus:   rt.Status.String(),
		FieldElapsed:  rt.Elapsed.Seconds(),
		FieldLogPath:  rt.LogPath,
	}
}

// TaskFromMap reconstructs a task from its primitive mapping. Required path
// fields must be present non-empty strings; optional fields fall back to
// defaults (enabled=true, status=Pending).
func TaskFromMap(m map[string]any) (*RenderTask, error) {
	required := []string{FieldUProject, FieldLevel, FieldSequence, FieldPreset}
	paths := make(map[string]string, len(required))
	for _, key := range required {
		raw, ok := m[key]
		if !ok {
			return nil, &MalformedRecordError{Field: key, Reason: "is missing"}
		}
		s, ok := raw.(string)
		if !ok {
			return nil, &MalformedRecordError{Field: key, Reason: "is not a string"}
		}
		if strings.TrimSpace(s) == "" {
			return nil, &MalformedRecordError{Field: key, Reason: "is empty"}
		}
		paths[key] = s
	}

	task := &RenderTask{
		ID:       GenerateTaskID(),
		UProject: paths[FieldUProject],
		Level:    paths[FieldLevel],
		Sequence: paths[FieldSequence],
		Preset:   paths[FieldPreset],
		Enabled:  true,
		Status:   TaskStatusPending,
	}

	if raw, ok := m[FieldNotes]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, &MalformedRecordError{Field: FieldNotes, Reason: "is not a string"}
		}
		task.Notes = s
	}
	if raw, ok := m[FieldEnabled]; ok {
		b, ok := raw.(bool)
		if !ok {
			return nil, &MalformedRecordError{Field: FieldEnabled, Reason: "is not a boolean"}
		}
		task.Enabled = b
	}
	if raw, ok := m[FieldStatus]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, &MalformedRecordError{Field: FieldStatus, Reason: "is not a string"}
		}
		status, ok := ParseTaskStatus(s)
		if !ok {
			return nil, &MalformedRecordError{Field: FieldStatus, Reason: fmt.Sprintf("has unknown value %q", s)}
		}
		task.Status = status
	}
	if raw, ok := m[FieldElapsed]; ok {
		// encoding/json decodes every number into float64
		f, ok := raw.(float64)
		if !ok {
			return nil, &MalformedRecordError{Field: FieldElapsed, Reason: "is not a number"}
		}
		if f < 0 {
			return nil, &MalformedRecordError{Field: FieldElapsed, Reason: "is negative"}
		}
		task.Elapsed = time.Duration(f * float64(time.Second))
	}
	if raw, ok := m[FieldLogPath]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, &MalformedRecordError{Field: FieldLogPath, Reason: "is not a string"}
		}
		task.LogPath = s
	}

	return task, nil
}

// GenerateTaskID generates a unique task ID using UUID v7 for better
// uniqueness and time ordering.
func GenerateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to a random v4 if the clock source misbehaves
		return TaskIDPrefix + uuid.NewString()
	}
	return TaskIDPrefix + id.String()
}
