package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/mrqget/mrq-launcher/internal/config"
	"github.com/mrqget/mrq-launcher/internal/platform"
	"github.com/mrqget/mrq-launcher/internal/queue"
	"github.com/mrqget/mrq-launcher/internal/render"
	"github.com/mrqget/mrq-launcher/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.mrqget.mrq-launcher"
	AppName = "MRQ Launcher"

	WindowWidth  = 1100
	WindowHeight = 720
)

func main() {
	fmt.Printf("MRQ Launcher v%s starting...\n", version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	settings := config.NewSettings(myApp)
	logsDir := settings.GetLogsDirectory()
	if err := platform.CreateDirectoryIfNotExists(logsDir); err != nil {
		fmt.Printf("failed to ensure logs dir: %v\n", err)
	}

	store := queue.NewStore()
	store.SetExecutablePath(settings.GetExecutablePath())
	driver := render.NewDriver(nil, render.DriverOptions{
		Retries:    settings.GetRetries(),
		FailPolicy: settings.GetFailPolicy(),
	})

	ui.NewRootUI(myWindow, myApp, store, driver)

	myWindow.ShowAndRun()
}
