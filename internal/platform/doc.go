package platform

// Package platform isolates OS integrations: ensuring directories exist and
// revealing or opening render log files with the system tools of each
// desktop OS.
