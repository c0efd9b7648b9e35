package render

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning reports Start called while a run is in progress.
var ErrAlreadyRunning = errors.New("render: a run is already in progress")

// ExecutableNotFoundError reports a renderer executable path that does not
// point to an existing file. It is raised before any process is spawned.
type ExecutableNotFoundError struct {
	Path string
}

func (e *ExecutableNotFoundError) Error() string {
	if e.Path == "" {
		return "renderer executable path is not configured"
	}
	return fmt.Sprintf("renderer executable not found: %s", e.Path)
}
