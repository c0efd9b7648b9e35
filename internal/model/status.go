package model

// TaskStatus represents the status of a render task
type TaskStatus string

const (
	// TaskStatusPending means the task is queued but not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusRunning means the render process is executing
	TaskStatusRunning TaskStatus = "Running"

	// TaskStatusSucceeded means the render finished with exit code 0
	TaskStatusSucceeded TaskStatus = "Succeeded"

	// TaskStatusFailed means the render exited non-zero or failed to start
	TaskStatusFailed TaskStatus = "Failed"

	// TaskStatusCancelled means the task was cancelled by the user
	TaskStatusCancelled TaskStatus = "Cancelled"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is currently executing
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusRunning
}

// IsTerminal returns true if the task reached a final state
func (ts TaskStatus) IsTerminal() bool {
	return ts == TaskStatusSucceeded || ts == TaskStatusFailed || ts == TaskStatusCancelled
}

// ParseTaskStatus validates a serialized status value. Empty input defaults
// to Pending; unknown values report false.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case TaskStatusPending, TaskStatusRunning, TaskStatusSucceeded, TaskStatusFailed, TaskStatusCancelled:
		return TaskStatus(s), true
	case "":
		return TaskStatusPending, true
	default:
		return TaskStatusPending, false
	}
}
