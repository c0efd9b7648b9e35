package unreal

import "os"

// EditorCmdName is the renderer executable file name on Windows
const EditorCmdName = "UnrealEditor-Cmd.exe"

// defaultEditorCmdCandidates lists the standard Epic Games Launcher install
// locations, newest engine first.
var defaultEditorCmdCandidates = []string{
	"C:/Program Files/Epic Games/UE_5.6/Engine/Binaries/Win64/UnrealEditor-Cmd.exe",
	"C:/Program Files/Epic Games/UE_5.5/Engine/Binaries/Win64/UnrealEditor-Cmd.exe",
	"C:/Program Files/Epic Games/UE_5.4/Engine/Binaries/Win64/UnrealEditor-Cmd.exe",
}

// DetectDefaultEditorCmd probes the standard install locations and returns
// the first existing UnrealEditor-Cmd.exe, or "" when none is found.
func DetectDefaultEditorCmd() string {
	for _, candidate := range defaultEditorCmdCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
