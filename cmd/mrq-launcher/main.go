package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/mrqget/mrq-launcher/internal/queue"
	"github.com/mrqget/mrq-launcher/internal/render"
	"github.com/mrqget/mrq-launcher/internal/ui"
)

func main() {
	myApp := app.NewWithID("com.mrqget.mrq-launcher")
	myApp.Settings().SetTheme(ui.NewCompactTheme())
	myWindow := myApp.NewWindow("MRQ Launcher")
	myWindow.Resize(fyne.NewSize(1100, 720))

	store := queue.NewStore()
	driver := render.NewDriver(nil, render.DriverOptions{})
	ui.NewRootUI(myWindow, myApp, store, driver)

	myWindow.ShowAndRun()
}
