package model

import "testing"

func TestTaskStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		terminal bool
	}{
		{TaskStatusPending, false},
		{TaskStatusRunning, false},
		{TaskStatusSucceeded, true},
		{TaskStatusFailed, true},
		{TaskStatusCancelled, true},
	}

	for _, test := range tests {
		if got := test.status.IsTerminal(); got != test.terminal {
			t.Errorf("IsTerminal() for %s = %v, expected %v", test.status, got, test.terminal)
		}
	}
}

func TestTaskStatus_IsActive(t *testing.T) {
	if !TaskStatusRunning.IsActive() {
		t.Error("Running should be active")
	}
	for _, st := range []TaskStatus{TaskStatusPending, TaskStatusSucceeded, TaskStatusFailed, TaskStatusCancelled} {
		if st.IsActive() {
			t.Errorf("%s should not be active", st)
		}
	}
}

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected TaskStatus
		ok       bool
	}{
		{"Pending", TaskStatusPending, true},
		{"Running", TaskStatusRunning, true},
		{"Succeeded", TaskStatusSucceeded, true},
		{"Failed", TaskStatusFailed, true},
		{"Cancelled", TaskStatusCancelled, true},
		{"", TaskStatusPending, true},
		{"Done", TaskStatusPending, false},
		{"pending", TaskStatusPending, false},
	}

	for _, test := range tests {
		status, ok := ParseTaskStatus(test.input)
		if status != test.expected || ok != test.ok {
			t.Errorf("ParseTaskStatus(%q) = (%s, %v), expected (%s, %v)",
				test.input, status, ok, test.expected, test.ok)
		}
	}
}
