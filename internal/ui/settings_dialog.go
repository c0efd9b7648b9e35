package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/mrqget/mrq-launcher/internal/config"
	"github.com/mrqget/mrq-launcher/internal/render"
)

// SettingsDialog lets the user change the launcher preferences that do not
// live on the main toolbar: logs directory, failure handling, and timeouts.
type SettingsDialog struct {
	settings *config.Settings
	window   fyne.Window
}

// NewSettingsDialog creates a settings dialog
func NewSettingsDialog(settings *config.Settings, window fyne.Window) *SettingsDialog {
	return &SettingsDialog{settings: settings, window: window}
}

// Show displays the settings dialog
func (d *SettingsDialog) Show() {
	logsDirEntry := widget.NewEntry()
	logsDirEntry.SetText(d.settings.GetLogsDirectory())
	browseLogsBtn := widget.NewButton("Browse", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			logsDirEntry.SetText(uri.Path())
		}, d.window)
	})

	retryOptions := make([]string, 0, config.MaxRetries+1)
	for i := 0; i <= config.MaxRetries; i++ {
		retryOptions = append(retryOptions, strconv.Itoa(i))
	}
	retriesSel := widget.NewSelect(retryOptions, nil)
	retriesSel.SetSelected(strconv.Itoa(d.settings.GetRetries()))

	policyOptions := []string{}
	for _, p := range d.settings.GetFailPolicyOptions() {
		policyOptions = append(policyOptions, string(p))
	}
	policySel := widget.NewSelect(policyOptions, nil)
	policySel.SetSelected(string(d.settings.GetFailPolicy()))

	killEntry := widget.NewEntry()
	killEntry.SetText(strconv.Itoa(int(d.settings.GetKillTimeout().Seconds())))

	revealCheck := widget.NewCheck("Reveal log file when a render fails", nil)
	revealCheck.SetChecked(d.settings.GetRevealLogOnFailure())

	items := []*widget.FormItem{
		widget.NewFormItem("Logs directory", container.NewBorder(nil, nil, nil, browseLogsBtn, logsDirEntry)),
		widget.NewFormItem("Retries on failure", retriesSel),
		widget.NewFormItem("Failure policy", policySel),
		widget.NewFormItem("Kill timeout (s)", killEntry),
		widget.NewFormItem("", revealCheck),
	}

	form := dialog.NewForm("Settings", "Save", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		d.settings.SetLogsDirectory(logsDirEntry.Text)
		if v, err := strconv.Atoi(retriesSel.Selected); err == nil {
			d.settings.SetRetries(v)
		}
		d.settings.SetFailPolicy(render.ParseFailPolicy(policySel.Selected))
		if v, err := strconv.Atoi(killEntry.Text); err == nil {
			d.settings.SetKillTimeoutSeconds(v)
		}
		d.settings.SetRevealLogOnFailure(revealCheck.Checked)
	}, d.window)
	form.Resize(fyne.NewSize(560, 320))
	form.Show()
}
