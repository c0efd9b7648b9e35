package ui

// Package ui contains the Fyne-based desktop user interface for the
// launcher. It wires user interactions to the queue store, the render
// driver, and persistence, and renders the task table, the run controls,
// and the log pane.
