package persist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrqget/mrq-launcher/internal/model"
	"github.com/mrqget/mrq-launcher/internal/queue"
)

func sampleStore(t *testing.T) *queue.Store {
	t.Helper()
	s := queue.NewStore()
	s.SetExecutablePath("C:/UE/UnrealEditor-Cmd.exe")

	a, err := model.NewRenderTask("C:/P/Demo.uproject", "/Game/Maps/A.A", "/Game/Cine/S1.S1", "/Game/Presets/High.High")
	require.NoError(t, err)
	a.Notes = "first"
	a.Status = model.TaskStatusSucceeded
	a.Elapsed = 42 * time.Second
	a.LogPath = "mrq_logs/a.log"

	b, err := model.NewRenderTask("C:/P/Demo.uproject", "/Game/Maps/B.B", "/Game/Cine/S2.S2", "/Game/Presets/Low.Low")
	require.NoError(t, err)
	b.Enabled = false

	s.Add(a)
	s.Add(b)
	return s
}

func TestQueueRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queue.json")

	store := sampleStore(t)
	opts := RunOptions{Retries: 2, FailPolicy: "skip_next", KillTimeout: 15}
	require.NoError(t, SaveQueue(store, opts, path))

	loaded, loadedOpts, err := LoadQueue(path)
	require.NoError(t, err)

	assert.Equal(t, store.ExecutablePath(), loaded.ExecutablePath())
	assert.Equal(t, opts, loadedOpts)

	want := store.Tasks()
	got := loaded.Tasks()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].UProject, got[i].UProject)
		assert.Equal(t, want[i].Level, got[i].Level)
		assert.Equal(t, want[i].Sequence, got[i].Sequence)
		assert.Equal(t, want[i].Preset, got[i].Preset)
		assert.Equal(t, want[i].Notes, got[i].Notes)
		assert.Equal(t, want[i].Enabled, got[i].Enabled)
		assert.Equal(t, want[i].Status, got[i].Status, "status is restored verbatim")
		assert.Equal(t, want[i].Elapsed, got[i].Elapsed)
		assert.Equal(t, want[i].LogPath, got[i].LogPath)
	}
}

func TestSaveQueueOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queue.json")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o644))

	require.NoError(t, SaveQueue(sampleStore(t), RunOptions{}, path))

	loaded, _, err := LoadQueue(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
}

func TestLoadQueue_Errors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, contents string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
		return path
	}

	t.Run("unreadable file", func(t *testing.T) {
		_, _, err := LoadQueue(filepath.Join(dir, "missing.json"))
		require.Error(t, err)
		var merr *MalformedFileError
		assert.NotErrorAs(t, err, &merr, "IO errors are not schema errors")
	})

	t.Run("invalid json", func(t *testing.T) {
		path := write("bad.json", "{oops}")
		_, _, err := LoadQueue(path)
		var merr *MalformedFileError
		require.ErrorAs(t, err, &merr)
	})

	t.Run("missing tasks array", func(t *testing.T) {
		path := write("notasks.json", `{"ue_cmd": "x.exe"}`)
		_, _, err := LoadQueue(path)
		var merr *MalformedFileError
		require.ErrorAs(t, err, &merr)
	})

	t.Run("task missing required field", func(t *testing.T) {
		path := write("incomplete.json", `{"tasks": [{"uproject": "a.uproject", "level": "/Game/M.M", "sequence": "/Game/S.S"}]}`)
		_, _, err := LoadQueue(path)
		var merr *MalformedFileError
		require.ErrorAs(t, err, &merr)
	})

	t.Run("settings of wrong type", func(t *testing.T) {
		path := write("badsettings.json", `{"retries": "two", "tasks": []}`)
		_, _, err := LoadQueue(path)
		var merr *MalformedFileError
		require.ErrorAs(t, err, &merr)
	})
}

func TestTaskRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.task.json")

	task, err := model.NewRenderTask("C:/P/Demo.uproject", "/Game/Maps/A.A", "/Game/Cine/S1.S1", "/Game/Presets/High.High")
	require.NoError(t, err)
	task.Status = model.TaskStatusFailed
	require.NoError(t, SaveTask(task, path))

	loaded, err := LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, task.Level, loaded[0].Level)
	assert.Equal(t, model.TaskStatusFailed, loaded[0].Status)
}

func TestLoadTasks_AcceptsQueueFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queue.json")
	require.NoError(t, SaveQueue(sampleStore(t), RunOptions{}, path))

	tasks, err := LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "/Game/Maps/A.A", tasks[0].Level)
	assert.Equal(t, "/Game/Maps/B.B", tasks[1].Level)
}

func TestTaskFileName(t *testing.T) {
	task, err := model.NewRenderTask("C:/P/Demo.uproject", "/Game/Maps/City.City", "/Game/Cine/Shot01.Shot01", "/Game/Presets/High.High")
	require.NoError(t, err)
	assert.Equal(t, "City__Shot01__High.task.json", TaskFileName(task))
}
