package queue

import (
	"errors"
	"sort"
	"sync"

	"github.com/mrqget/mrq-launcher/internal/model"
)

// ErrIndexOutOfRange reports a queue operation on an index outside [0, Len).
var ErrIndexOutOfRange = errors.New("queue: index out of range")

// Store is the ordered, mutable collection of render tasks for a session.
// Order is execution order. The store owns its tasks and shares the single
// renderer executable path across them; it never touches disk or processes.
type Store struct {
	mu             sync.RWMutex
	tasks          []*model.RenderTask
	executablePath string
}

// NewStore creates an empty queue store
func NewStore() *Store {
	return &Store{}
}

// Add appends a task to the end of the queue. Duplicates are allowed; every
// task carries its own identity.
func (s *Store) Add(task *model.RenderTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// Remove deletes the task at index i.
func (s *Store) Remove(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.tasks) {
		return ErrIndexOutOfRange
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

// RemoveAll deletes the tasks at the given indices in one pass.
func (s *Store) RemoveAll(indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range indices {
		if i < 0 || i >= len(s.tasks) {
			return ErrIndexOutOfRange
		}
	}
	// Delete back to front so earlier indices stay valid
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, i := range sorted {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
	return nil
}

// Duplicate inserts a copy of the task at index i immediately after it. The
// copy gets a fresh identity and Pending status regardless of the source.
func (s *Store) Duplicate(i int) (*model.RenderTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.tasks) {
		return nil, ErrIndexOutOfRange
	}
	dup := s.tasks[i].Clone()
	s.tasks = append(s.tasks, nil)
	copy(s.tasks[i+2:], s.tasks[i+1:])
	s.tasks[i+1] = dup
	return dup, nil
}

// Move reorders the task at index i by a relative offset, clamping the target
// to the valid range. Moving past either end is a deliberate no-op, not an
// error.
func (s *Store) Move(i, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.tasks) {
		return ErrIndexOutOfRange
	}
	target := i + delta
	if target < 0 {
		target = 0
	}
	if target > len(s.tasks)-1 {
		target = len(s.tasks) - 1
	}
	if target == i {
		return nil
	}
	task := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.tasks = append(s.tasks, nil)
	copy(s.tasks[target+1:], s.tasks[target:])
	s.tasks[target] = task
	return nil
}

// SetEnabled toggles the runnable flag without touching status.
func (s *Store) SetEnabled(i int, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.tasks) {
		return ErrIndexOutOfRange
	}
	s.tasks[i].Enabled = enabled
	return nil
}

// SetEnabledAll sets the runnable flag on every task.
func (s *Store) SetEnabledAll(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		task.Enabled = enabled
	}
}

// ToggleEnabled flips the runnable flag of the task at index i.
func (s *Store) ToggleEnabled(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.tasks) {
		return ErrIndexOutOfRange
	}
	s.tasks[i].Enabled = !s.tasks[i].Enabled
	return nil
}

// Task returns the task at index i.
func (s *Store) Task(i int) (*model.RenderTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.tasks) {
		return nil, ErrIndexOutOfRange
	}
	return s.tasks[i], nil
}

// Tasks returns a snapshot copy of the task list in queue order. The slice is
// the caller's; the tasks are shared.
func (s *Store) Tasks() []*model.RenderTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.RenderTask, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks in the queue.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Collect returns the ordered run subset. Selection is a presentation-layer
// concept handed in as indices; it is never stored here. Invalid selection
// indices are skipped. With onlyEnabled set, disabled tasks are filtered out
// of the result.
func (s *Store) Collect(onlyEnabled bool, selected []int) []*model.RenderTask {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var picked []*model.RenderTask
	if selected != nil {
		sorted := append([]int(nil), selected...)
		sort.Ints(sorted)
		for _, i := range sorted {
			if i >= 0 && i < len(s.tasks) {
				picked = append(picked, s.tasks[i])
			}
		}
	} else {
		picked = append(picked, s.tasks...)
	}

	if !onlyEnabled {
		return picked
	}
	out := picked[:0]
	for _, task := range picked {
		if task.Enabled {
			out = append(out, task)
		}
	}
	return out
}

// ExecutablePath returns the shared renderer executable path.
func (s *Store) ExecutablePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.executablePath
}

// SetExecutablePath sets the shared renderer executable path.
func (s *Store) SetExecutablePath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executablePath = path
}

// Replace swaps the whole queue contents, used when loading from disk.
func (s *Store) Replace(tasks []*model.RenderTask, executablePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]*model.RenderTask(nil), tasks...)
	s.executablePath = executablePath
}
