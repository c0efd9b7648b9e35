package persist

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mrqget/mrq-launcher/internal/model"
	"github.com/mrqget/mrq-launcher/internal/queue"
	"github.com/mrqget/mrq-launcher/internal/unreal"
)

// Queue file settings keys
const (
	KeyExecutable  = "ue_cmd"
	KeyRetries     = "retries"
	KeyFailPolicy  = "fail_policy"
	KeyKillTimeout = "kill_timeout_s"
	KeyTasks       = "tasks"
)

// File permissions for saved JSON
const filePerm = 0o644

// MalformedFileError reports a JSON file whose schema does not match the
// queue or task format.
type MalformedFileError struct {
	Path   string
	Reason string
}

func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("malformed file %s: %s", e.Path, e.Reason)
}

// RunOptions are the run settings stored alongside the queue, mirroring the
// launcher's settings panel.
type RunOptions struct {
	Retries     int
	FailPolicy  string
	KillTimeout int // seconds
}

// SaveQueue writes the ordered task list, the executable path, and the run
// options as JSON, overwriting any existing file.
func SaveQueue(store *queue.Store, opts RunOptions, path string) error {
	tasks := store.Tasks()
	records := make([]map[string]any, 0, len(tasks))
	for _, task := range tasks {
		records = append(records, task.ToMap())
	}

	doc := map[string]any{
		KeyExecutable:  store.ExecutablePath(),
		KeyRetries:     opts.Retries,
		KeyFailPolicy:  opts.FailPolicy,
		KeyKillTimeout: opts.KillTimeout,
		KeyTasks:       records,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}
	return os.WriteFile(path, data, filePerm)
}

// LoadQueue reads and validates a queue JSON file, reconstructing a fresh
// store. The caller's in-memory state is untouched on failure. Statuses are
// restored verbatim, never reset.
func LoadQueue(path string) (*queue.Store, RunOptions, error) {
	var opts RunOptions

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, opts, err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, opts, &MalformedFileError{Path: path, Reason: err.Error()}
	}

	rawTasks, ok := doc[KeyTasks]
	if !ok {
		return nil, opts, &MalformedFileError{Path: path, Reason: "missing tasks array"}
	}
	list, ok := rawTasks.([]any)
	if !ok {
		return nil, opts, &MalformedFileError{Path: path, Reason: "tasks is not an array"}
	}

	tasks := make([]*model.RenderTask, 0, len(list))
	for i, raw := range list {
		record, ok := raw.(map[string]any)
		if !ok {
			return nil, opts, &MalformedFileError{Path: path, Reason: fmt.Sprintf("task %d is not an object", i)}
		}
		task, err := model.TaskFromMap(record)
		if err != nil {
			return nil, opts, &MalformedFileError{Path: path, Reason: fmt.Sprintf("task %d: %v", i, err)}
		}
		tasks = append(tasks, task)
	}

	executable, err := optionalString(doc, KeyExecutable, path)
	if err != nil {
		return nil, opts, err
	}
	if opts.Retries, err = optionalInt(doc, KeyRetries, path); err != nil {
		return nil, opts, err
	}
	if opts.FailPolicy, err = optionalString(doc, KeyFailPolicy, path); err != nil {
		return nil, opts, err
	}
	if opts.KillTimeout, err = optionalInt(doc, KeyKillTimeout, path); err != nil {
		return nil, opts, err
	}

	store := queue.NewStore()
	store.Replace(tasks, executable)
	return store, opts, nil
}

// SaveTask writes a single task record as JSON.
func SaveTask(task *model.RenderTask, path string) error {
	data, err := json.MarshalIndent(task.ToMap(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	return os.WriteFile(path, data, filePerm)
}

// LoadTasks reads tasks from a JSON file. Both shapes are accepted: a single
// task object, or a whole queue file whose tasks are appended in order.
func LoadTasks(path string) ([]*model.RenderTask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedFileError{Path: path, Reason: err.Error()}
	}

	if raw, ok := doc[KeyTasks]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, &MalformedFileError{Path: path, Reason: "tasks is not an array"}
		}
		tasks := make([]*model.RenderTask, 0, len(list))
		for i, item := range list {
			record, ok := item.(map[string]any)
			if !ok {
				return nil, &MalformedFileError{Path: path, Reason: fmt.Sprintf("task %d is not an object", i)}
			}
			task, err := model.TaskFromMap(record)
			if err != nil {
				return nil, &MalformedFileError{Path: path, Reason: fmt.Sprintf("task %d: %v", i, err)}
			}
			tasks = append(tasks, task)
		}
		return tasks, nil
	}

	task, err := model.TaskFromMap(doc)
	if err != nil {
		return nil, &MalformedFileError{Path: path, Reason: err.Error()}
	}
	return []*model.RenderTask{task}, nil
}

// TaskFileName builds the default file name for a saved task from its short
// asset names, mirroring the log file naming.
func TaskFileName(task *model.RenderTask) string {
	return fmt.Sprintf("%s__%s__%s.task.json",
		unreal.SoftName(task.Level), unreal.SoftName(task.Sequence), unreal.SoftName(task.Preset))
}

func optionalString(doc map[string]any, key, path string) (string, error) {
	raw, ok := doc[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", &MalformedFileError{Path: path, Reason: fmt.Sprintf("%s is not a string", key)}
	}
	return s, nil
}

func optionalInt(doc map[string]any, key, path string) (int, error) {
	raw, ok := doc[key]
	if !ok {
		return 0, nil
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, &MalformedFileError{Path: path, Reason: fmt.Sprintf("%s is not a number", key)}
	}
	return int(f), nil
}
