package ui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/mrqget/mrq-launcher/internal/config"
	"github.com/mrqget/mrq-launcher/internal/model"
	"github.com/mrqget/mrq-launcher/internal/persist"
	"github.com/mrqget/mrq-launcher/internal/platform"
	"github.com/mrqget/mrq-launcher/internal/queue"
	"github.com/mrqget/mrq-launcher/internal/render"
	"github.com/mrqget/mrq-launcher/internal/unreal"
)

// RootUI represents the main window: the task table, the run controls, and
// the log pane. It is a thin view over the store and the driver; all queue
// semantics live below it.
type RootUI struct {
	window   fyne.Window
	app      fyne.App
	settings *config.Settings
	store    *queue.Store
	driver   *render.Driver

	table       *widget.Table
	selectedRow int // -1 when nothing is selected

	exeEntry    *widget.Entry
	retriesSel  *widget.Select
	policySel   *widget.Select
	killEntry   *widget.Entry
	logView     *widget.Entry
	logLines    []string
	statusLabel *widget.Label
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, store *queue.Store, driver *render.Driver) *RootUI {
	ui := &RootUI{
		window:      window,
		app:         app,
		settings:    config.NewSettings(app),
		store:       store,
		driver:      driver,
		selectedRow: -1,
	}

	if store.ExecutablePath() == "" {
		store.SetExecutablePath(ui.settings.GetExecutablePath())
	}

	driver.SetUpdateCallback(ui.onTaskUpdate)
	driver.SetDoneCallback(ui.onRunDone)

	ui.setupUI()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.exeEntry = widget.NewEntry()
	ui.exeEntry.SetPlaceHolder("Path to " + unreal.EditorCmdName)
	ui.exeEntry.SetText(ui.store.ExecutablePath())
	ui.exeEntry.OnChanged = func(text string) {
		ui.store.SetExecutablePath(text)
		ui.settings.SetExecutablePath(text)
	}
	browseExeBtn := widget.NewButton("Browse", ui.onBrowseExecutable)

	retryOptions := make([]string, 0, config.MaxRetries+1)
	for i := 0; i <= config.MaxRetries; i++ {
		retryOptions = append(retryOptions, strconv.Itoa(i))
	}
	ui.retriesSel = widget.NewSelect(retryOptions, func(s string) {
		if v, err := strconv.Atoi(s); err == nil {
			ui.settings.SetRetries(v)
		}
	})
	ui.retriesSel.SetSelected(strconv.Itoa(ui.settings.GetRetries()))

	policyOptions := []string{}
	for _, p := range ui.settings.GetFailPolicyOptions() {
		policyOptions = append(policyOptions, string(p))
	}
	ui.policySel = widget.NewSelect(policyOptions, func(s string) {
		ui.settings.SetFailPolicy(render.ParseFailPolicy(s))
	})
	ui.policySel.SetSelected(string(ui.settings.GetFailPolicy()))

	ui.killEntry = widget.NewEntry()
	ui.killEntry.SetText(strconv.Itoa(int(ui.settings.GetKillTimeout().Seconds())))
	ui.killEntry.OnChanged = func(s string) {
		if v, err := strconv.Atoi(s); err == nil {
			ui.settings.SetKillTimeoutSeconds(v)
		}
	}

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	topPanel := container.NewBorder(nil, nil,
		widget.NewLabel(unreal.EditorCmdName+":"),
		container.NewHBox(
			browseExeBtn,
			widget.NewLabel("Retries:"), ui.retriesSel,
			widget.NewLabel("On fail:"), ui.policySel,
			widget.NewLabel("Kill timeout s:"), ui.killEntry,
			settingsBtn,
		),
		ui.exeEntry,
	)

	ui.table = ui.buildTable()

	sidebar := container.NewVBox(
		ui.buttonGroup("Tasks",
			widget.NewButton("Add…", ui.onAddTask),
			widget.NewButton("Edit…", ui.onEditTask),
			widget.NewButton("Duplicate", ui.onDuplicateTask),
			widget.NewButton("Remove", ui.onRemoveTask),
		),
		ui.buttonGroup("Order",
			widget.NewButton("Move Up", func() { ui.onMoveSelected(-1) }),
			widget.NewButton("Move Down", func() { ui.onMoveSelected(1) }),
		),
		ui.buttonGroup("Selection",
			widget.NewButton("Enable All", func() { ui.onSetEnabledAll(true) }),
			widget.NewButton("Disable All", func() { ui.onSetEnabledAll(false) }),
			widget.NewButton("Toggle", ui.onToggleSelected),
		),
		ui.buttonGroup("Run",
			widget.NewButton("Run Selected", ui.onRunSelected),
			widget.NewButton("Run Enabled", ui.onRunEnabled),
			widget.NewButton("Run All", ui.onRunAll),
		),
		ui.buttonGroup("Cancel",
			widget.NewButton("Cancel Current", ui.onCancelCurrent),
			widget.NewButton("Cancel All", ui.onCancelRun),
		),
		ui.buttonGroup("Task I/O",
			widget.NewButton("Load Task(s)…", ui.onLoadTasks),
			widget.NewButton("Save Task…", ui.onSaveTask),
		),
		ui.buttonGroup("Queue I/O",
			widget.NewButton("Load Queue…", ui.onLoadQueue),
			widget.NewButton("Save Queue…", ui.onSaveQueue),
		),
		ui.buttonGroup("Logs",
			widget.NewButton(IconFile+" Open Log", ui.onOpenLog),
			widget.NewButton(IconFolder+" Reveal Log", ui.onRevealLog),
		),
	)

	ui.logView = widget.NewMultiLineEntry()
	ui.logView.Wrapping = fyne.TextWrapOff
	ui.logView.Disable()

	ui.statusLabel = widget.NewLabel("Idle")

	middle := container.NewBorder(nil, nil, nil, container.NewVScroll(sidebar), ui.table)
	bottom := container.NewBorder(ui.statusLabel, nil, nil, nil, container.NewVScroll(ui.logView))

	split := container.NewVSplit(middle, bottom)
	split.SetOffset(0.72)

	content := container.NewBorder(topPanel, nil, nil, nil, split)
	ui.window.SetContent(content)
}

// buildTable creates the task table. Tapping the checkmark column toggles a
// task; tapping anywhere else selects the row.
func (ui *RootUI) buildTable() *widget.Table {
	table := widget.NewTableWithHeaders(
		func() (int, int) {
			return ui.store.Len(), ColumnCount
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("template")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			task, err := ui.store.Task(id.Row)
			if err != nil {
				label.SetText("")
				return
			}
			label.SetText(ui.cellText(task, id.Col))
		},
	)

	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabel("header")
	}
	table.UpdateHeader = func(id widget.TableCellID, cell fyne.CanvasObject) {
		label := cell.(*widget.Label)
		if id.Row < 0 {
			label.SetText(columnTitle(id.Col))
		} else {
			label.SetText(strconv.Itoa(id.Row + 1))
		}
	}

	for col, width := range columnWidths {
		table.SetColumnWidth(col, width)
	}

	table.OnSelected = func(id widget.TableCellID) {
		ui.selectedRow = id.Row
		if id.Col == ColEnabled {
			if err := ui.store.ToggleEnabled(id.Row); err == nil {
				table.RefreshItem(id)
			}
		}
	}
	table.OnUnselected = func(widget.TableCellID) {}

	return table
}

func columnTitle(col int) string {
	switch col {
	case ColEnabled:
		return IconEnabled
	case ColLevel:
		return "Level"
	case ColSequence:
		return "Sequence"
	case ColPreset:
		return "Preset"
	case ColStatus:
		return "Status"
	case ColElapsed:
		return "Elapsed"
	case ColNotes:
		return "Notes"
	default:
		return ""
	}
}

// cellText renders one table cell for a task
func (ui *RootUI) cellText(task *model.RenderTask, col int) string {
	switch col {
	case ColEnabled:
		if task.Enabled {
			return IconEnabled
		}
		return IconDisabled
	case ColLevel:
		return unreal.SoftName(task.Level)
	case ColSequence:
		return unreal.SoftName(task.Sequence)
	case ColPreset:
		return unreal.SoftName(task.Preset)
	case ColStatus:
		if task.Status == model.TaskStatusRunning && task.Percent > 0 {
			return fmt.Sprintf("%s %d%%", task.Status, task.Percent)
		}
		if task.Status == model.TaskStatusFailed && task.LastError != "" {
			return fmt.Sprintf("%s (%s)", task.Status, task.LastError)
		}
		return task.Status.String()
	case ColElapsed:
		return task.ElapsedString()
	case ColNotes:
		if task.Notes == "" {
			return DashPlaceholder
		}
		return task.Notes
	default:
		return ""
	}
}

// buttonGroup builds a labeled vertical group of buttons, the sidebar idiom.
func (ui *RootUI) buttonGroup(title string, buttons ...*widget.Button) fyne.CanvasObject {
	items := []fyne.CanvasObject{widget.NewLabelWithStyle(title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})}
	for _, b := range buttons {
		items = append(items, b)
	}
	items = append(items, widget.NewSeparator())
	return container.NewVBox(items...)
}

// selectedTask returns the currently selected task, or nil with a hint shown
func (ui *RootUI) selectedTask() (*model.RenderTask, int) {
	if ui.selectedRow < 0 {
		dialog.ShowInformation("Selection", "Select a task in the table first.", ui.window)
		return nil, -1
	}
	task, err := ui.store.Task(ui.selectedRow)
	if err != nil {
		ui.selectedRow = -1
		return nil, -1
	}
	return task, ui.selectedRow
}

// --- Task actions ---

func (ui *RootUI) onAddTask() {
	ShowTaskEditor(ui.window, nil, func(task *model.RenderTask) {
		ui.store.Add(task)
		// Joining an in-flight run: appended tasks execute after everything
		// already scheduled.
		if ui.driver.IsRunning() && task.Enabled {
			if ui.driver.Append(task) {
				ui.appendLog(fmt.Sprintf("Appended %s to the running queue", unreal.SoftName(task.Sequence)))
			}
		}
		ui.table.Refresh()
	})
}

func (ui *RootUI) onEditTask() {
	task, idx := ui.selectedTask()
	if task == nil {
		return
	}
	if task.Status.IsActive() {
		dialog.ShowInformation("Edit", "The task is rendering; cancel the run first.", ui.window)
		return
	}
	ShowTaskEditor(ui.window, task, func(edited *model.RenderTask) {
		edited.Enabled = task.Enabled
		if current, err := ui.store.Task(idx); err == nil && current == task {
			*task = *edited
		}
		ui.table.Refresh()
	})
}

func (ui *RootUI) onDuplicateTask() {
	_, idx := ui.selectedTask()
	if idx < 0 {
		return
	}
	if _, err := ui.store.Duplicate(idx); err != nil {
		dialog.ShowError(err, ui.window)
		return
	}
	ui.table.Refresh()
}

func (ui *RootUI) onRemoveTask() {
	_, idx := ui.selectedTask()
	if idx < 0 {
		return
	}
	if err := ui.store.Remove(idx); err != nil {
		dialog.ShowError(err, ui.window)
		return
	}
	ui.selectedRow = -1
	ui.table.Refresh()
}

func (ui *RootUI) onMoveSelected(delta int) {
	_, idx := ui.selectedTask()
	if idx < 0 {
		return
	}
	if err := ui.store.Move(idx, delta); err != nil {
		return
	}
	target := idx + delta
	if target < 0 {
		target = 0
	}
	if target > ui.store.Len()-1 {
		target = ui.store.Len() - 1
	}
	ui.selectedRow = target
	ui.table.Refresh()
}

func (ui *RootUI) onSetEnabledAll(enabled bool) {
	ui.store.SetEnabledAll(enabled)
	ui.table.Refresh()
}

func (ui *RootUI) onToggleSelected() {
	_, idx := ui.selectedTask()
	if idx < 0 {
		return
	}
	if err := ui.store.ToggleEnabled(idx); err == nil {
		ui.table.Refresh()
	}
}

// --- Run actions ---

func (ui *RootUI) onRunSelected() {
	_, idx := ui.selectedTask()
	if idx < 0 {
		return
	}
	ui.runTasks(ui.store.Collect(false, []int{idx}))
}

func (ui *RootUI) onRunEnabled() {
	ui.runTasks(ui.store.Collect(true, nil))
}

func (ui *RootUI) onRunAll() {
	ui.runTasks(ui.store.Collect(false, nil))
}

// runTasks validates setup and starts the sequential run. Setup errors are
// surfaced immediately and never start a run.
func (ui *RootUI) runTasks(tasks []*model.RenderTask) {
	if len(tasks) == 0 {
		dialog.ShowInformation("Run", "No tasks to run.", ui.window)
		return
	}

	exe := ui.store.ExecutablePath()
	if exe == "" {
		dialog.ShowError(&render.ExecutableNotFoundError{}, ui.window)
		return
	}
	if _, err := os.Stat(exe); err != nil {
		dialog.ShowError(&render.ExecutableNotFoundError{Path: exe}, ui.window)
		return
	}

	logsDir := ui.settings.GetLogsDirectory()
	if err := platform.CreateDirectoryIfNotExists(logsDir); err != nil {
		dialog.ShowError(err, ui.window)
		return
	}

	runner := render.NewRunner(render.RunnerOptions{
		ExecutablePath: exe,
		LogsDir:        logsDir,
		KillTimeout:    ui.settings.GetKillTimeout(),
	})
	runner.SetUpdateCallback(ui.onTaskUpdate)

	if err := ui.driver.Configure(runner, render.DriverOptions{
		Retries:    ui.settings.GetRetries(),
		FailPolicy: ui.settings.GetFailPolicy(),
	}); err != nil {
		dialog.ShowError(err, ui.window)
		return
	}

	if err := ui.driver.Start(tasks); err != nil {
		dialog.ShowError(err, ui.window)
		return
	}

	ui.statusLabel.SetText(fmt.Sprintf("Running %d task(s)…", len(tasks)))
	ui.appendLog(fmt.Sprintf("== Launch %d task(s) ==", len(tasks)))
	ui.table.Refresh()
}

func (ui *RootUI) onCancelCurrent() {
	if !ui.driver.IsRunning() {
		ui.appendLog("[Cancel] No run in progress")
		return
	}
	ui.driver.CancelCurrent()
	ui.appendLog("[Cancel] Terminating the current render, queue continues")
}

func (ui *RootUI) onCancelRun() {
	if !ui.driver.IsRunning() {
		ui.appendLog("[Cancel] No run in progress")
		return
	}
	ui.driver.Cancel()
	ui.appendLog("[Cancel] Termination requested")
}

// --- Driver callbacks (run goroutine -> UI thread) ---

// onTaskUpdate handles task updates from the runner and the driver
func (ui *RootUI) onTaskUpdate(task *model.RenderTask) {
	fyne.Do(func() {
		ui.table.Refresh()
		if task.Status.IsTerminal() {
			ui.appendLogLocked(fmt.Sprintf("%s: %s (%s)",
				unreal.SoftName(task.Sequence), task.Status, task.ElapsedString()))
			if task.Status == model.TaskStatusFailed && task.LogPath != "" && ui.settings.GetRevealLogOnFailure() {
				_ = platform.OpenFileInManager(task.LogPath)
			}
		}
	})
}

// onRunDone handles overall run completion
func (ui *RootUI) onRunDone() {
	fyne.Do(func() {
		ui.statusLabel.SetText("Idle")
		ui.appendLogLocked("== Queue complete ==")
		ui.table.Refresh()
	})
}

// appendLog adds a line to the log pane from the UI thread
func (ui *RootUI) appendLog(msg string) {
	ui.appendLogLocked(msg)
}

// appendLogLocked must run on the Fyne thread
func (ui *RootUI) appendLogLocked(msg string) {
	ui.logLines = append(ui.logLines, msg)
	if len(ui.logLines) > LogPaneMaxLines {
		ui.logLines = ui.logLines[len(ui.logLines)-LogPaneMaxLines:]
	}
	ui.logView.SetText(strings.Join(ui.logLines, "\n"))
	ui.logView.CursorRow = len(ui.logLines) - 1
}

// --- Persistence actions ---

func (ui *RootUI) runOptions() persist.RunOptions {
	return persist.RunOptions{
		Retries:     ui.settings.GetRetries(),
		FailPolicy:  string(ui.settings.GetFailPolicy()),
		KillTimeout: int(ui.settings.GetKillTimeout().Seconds()),
	}
}

func (ui *RootUI) onSaveQueue() {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := persist.SaveQueue(ui.store, ui.runOptions(), path); err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		ui.appendLog("Saved queue: " + path)
	}, ui.window)
}

func (ui *RootUI) onLoadQueue() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		loaded, opts, err := persist.LoadQueue(path)
		if err != nil {
			// The in-memory queue stays untouched on a failed load
			dialog.ShowError(err, ui.window)
			return
		}
		exe := loaded.ExecutablePath()
		if exe == "" {
			exe = ui.store.ExecutablePath()
		}
		ui.store.Replace(loaded.Tasks(), exe)
		ui.exeEntry.SetText(exe)
		ui.settings.SetRetries(opts.Retries)
		ui.settings.SetFailPolicy(render.ParseFailPolicy(opts.FailPolicy))
		ui.settings.SetKillTimeoutSeconds(opts.KillTimeout)
		ui.retriesSel.SetSelected(strconv.Itoa(ui.settings.GetRetries()))
		ui.policySel.SetSelected(string(ui.settings.GetFailPolicy()))
		ui.killEntry.SetText(strconv.Itoa(int(ui.settings.GetKillTimeout().Seconds())))
		ui.selectedRow = -1
		ui.table.Refresh()
		ui.appendLog(fmt.Sprintf("Loaded queue: %s (%d task(s))", path, ui.store.Len()))
	}, ui.window)
}

func (ui *RootUI) onSaveTask() {
	task, _ := ui.selectedTask()
	if task == nil {
		return
	}
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := persist.SaveTask(task, path); err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		ui.appendLog("Saved task: " + path)
	}, ui.window)
	save.SetFileName(persist.TaskFileName(task))
	save.Show()
}

func (ui *RootUI) onLoadTasks() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		tasks, err := persist.LoadTasks(path)
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		for _, task := range tasks {
			ui.store.Add(task)
		}
		ui.table.Refresh()
		ui.appendLog(fmt.Sprintf("Loaded %d task(s) from %s", len(tasks), path))
	}, ui.window)
}

// --- Log actions ---

func (ui *RootUI) onOpenLog() {
	task, _ := ui.selectedTask()
	if task == nil {
		return
	}
	if task.LogPath == "" {
		dialog.ShowInformation("Log", "The task has not produced a log yet.", ui.window)
		return
	}
	if err := platform.OpenFileWithDefaultApp(task.LogPath); err != nil {
		dialog.ShowError(err, ui.window)
	}
}

func (ui *RootUI) onRevealLog() {
	task, _ := ui.selectedTask()
	if task == nil {
		return
	}
	if task.LogPath == "" {
		dialog.ShowInformation("Log", "The task has not produced a log yet.", ui.window)
		return
	}
	if err := platform.OpenFileInManager(task.LogPath); err != nil {
		dialog.ShowError(err, ui.window)
	}
}

// --- Dialog triggers ---

func (ui *RootUI) onBrowseExecutable() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		ui.exeEntry.SetText(path)
	}, ui.window)
}

func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.window).Show()
}
