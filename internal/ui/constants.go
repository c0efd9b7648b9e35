package ui

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconEnabled  = "✔"
	IconDisabled = " "
	IconFolder   = "📁"
	IconFile     = "📄"
)

// Text fragments
const (
	DashPlaceholder = "—"
)

// Table layout
const (
	ColEnabled = iota
	ColLevel
	ColSequence
	ColPreset
	ColStatus
	ColElapsed
	ColNotes
	ColumnCount
)

// Column widths
var columnWidths = map[int]float32{
	ColEnabled:  36,
	ColLevel:    170,
	ColSequence: 170,
	ColPreset:   200,
	ColStatus:   150,
	ColElapsed:  80,
	ColNotes:    200,
}

// Log pane
const (
	LogPaneMaxLines = 2000
)
