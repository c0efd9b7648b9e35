package unreal

// Package unreal holds Unreal Engine specifics shared by the queue and the
// UI: SoftObjectPath conversion for picked asset files and detection of the
// command-line editor binary.
