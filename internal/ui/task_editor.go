package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/mrqget/mrq-launcher/internal/model"
	"github.com/mrqget/mrq-launcher/internal/unreal"
)

// ShowTaskEditor opens the add/edit dialog for a render task. When task is
// nil a new record is created; otherwise its fields pre-fill the form. onSave
// receives a validated task and is only called on confirmation.
func ShowTaskEditor(window fyne.Window, task *model.RenderTask, onSave func(*model.RenderTask)) {
	title := "Add Render Task"
	if task != nil {
		title = "Edit Render Task"
	}

	uprojectEntry := widget.NewEntry()
	uprojectEntry.SetPlaceHolder("C:/Projects/MyGame/MyGame.uproject")
	levelEntry := widget.NewEntry()
	levelEntry.SetPlaceHolder("/Game/Maps/MainLevel.MainLevel")
	sequenceEntry := widget.NewEntry()
	sequenceEntry.SetPlaceHolder("/Game/Cinematics/Shot010.Shot010")
	presetEntry := widget.NewEntry()
	presetEntry.SetPlaceHolder("/Game/Cinematics/Presets/Final.Final")
	notesEntry := widget.NewEntry()
	enabledCheck := widget.NewCheck("Enabled", nil)
	enabledCheck.SetChecked(true)

	if task != nil {
		uprojectEntry.SetText(task.UProject)
		levelEntry.SetText(task.Level)
		sequenceEntry.SetText(task.Sequence)
		presetEntry.SetText(task.Preset)
		notesEntry.SetText(task.Notes)
		enabledCheck.SetChecked(task.Enabled)
	}

	// Asset pickers turn a picked .umap/.uasset file into its soft object
	// path so the entries always hold engine paths, never filesystem ones.
	browseInto := func(entry *widget.Entry, convert bool) func() {
		return func() {
			dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
				if err != nil || reader == nil {
					return
				}
				path := reader.URI().Path()
				reader.Close()
				if convert {
					if soft, err := unreal.SoftObjectFromAsset(path); err == nil {
						entry.SetText(soft)
						return
					}
				}
				entry.SetText(path)
			}, window)
		}
	}

	pathRow := func(entry *widget.Entry, convert bool) fyne.CanvasObject {
		return container.NewBorder(nil, nil, nil,
			widget.NewButton("Browse", browseInto(entry, convert)), entry)
	}

	items := []*widget.FormItem{
		widget.NewFormItem("Project", pathRow(uprojectEntry, false)),
		widget.NewFormItem("Level", pathRow(levelEntry, true)),
		widget.NewFormItem("Sequence", pathRow(sequenceEntry, true)),
		widget.NewFormItem("Preset", pathRow(presetEntry, true)),
		widget.NewFormItem("Notes", notesEntry),
		widget.NewFormItem("", enabledCheck),
	}

	form := dialog.NewForm(title, "Save", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		result, err := model.NewRenderTask(
			strings.TrimSpace(uprojectEntry.Text),
			strings.TrimSpace(levelEntry.Text),
			strings.TrimSpace(sequenceEntry.Text),
			strings.TrimSpace(presetEntry.Text),
		)
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		result.Notes = notesEntry.Text
		result.Enabled = enabledCheck.Checked
		if task != nil {
			result.ID = task.ID
			result.Status = task.Status
			result.LogPath = task.LogPath
		}
		onSave(result)
	}, window)
	form.Resize(fyne.NewSize(640, 360))
	form.Show()
}
