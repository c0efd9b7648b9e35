package unreal

import (
	"fmt"
	"path"
	"strings"
)

// Asset file extensions accepted by the soft path converter
const (
	ExtUAsset = ".uasset"
	ExtUMap   = ".umap"
)

// ContentDirName is the project directory that anchors /Game paths
const ContentDirName = "Content"

// SoftObjectFromAsset converts a filesystem path to a .uasset/.umap inside a
// project's Content directory into its SoftObjectPath form:
//
//	.../<Project>/Content/<Rel>/<Asset>.uasset -> /Game/<Rel>/<Asset>.<Asset>
func SoftObjectFromAsset(fsPath string) (string, error) {
	// Windows paths arrive with either separator; normalize before splitting
	norm := path.Clean(strings.ReplaceAll(fsPath, `\`, "/"))
	lower := strings.ToLower(norm)
	if !strings.HasSuffix(lower, ExtUAsset) && !strings.HasSuffix(lower, ExtUMap) {
		return "", fmt.Errorf("asset path %q: expected a %s or %s file", fsPath, ExtUAsset, ExtUMap)
	}

	parts := strings.Split(norm, "/")
	contentIdx := -1
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] == ContentDirName {
			contentIdx = i
			break
		}
	}
	if contentIdx < 0 {
		return "", fmt.Errorf("asset path %q: must be inside the project's %s directory", fsPath, ContentDirName)
	}

	rel := parts[contentIdx+1:]
	if len(rel) == 0 {
		return "", fmt.Errorf("asset path %q: no asset under %s", fsPath, ContentDirName)
	}
	assetName := strings.TrimSuffix(rel[len(rel)-1], path.Ext(rel[len(rel)-1]))

	gamePath := "/Game"
	if dir := rel[:len(rel)-1]; len(dir) > 0 {
		gamePath += "/" + strings.Join(dir, "/")
	}
	return fmt.Sprintf("%s/%s.%s", gamePath, assetName, assetName), nil
}

// SoftName returns the short display name of a SoftObjectPath, the segment
// after the last dot, or "?" when the path is empty.
func SoftName(softPath string) string {
	if softPath == "" {
		return "?"
	}
	idx := strings.LastIndex(softPath, ".")
	return softPath[idx+1:]
}

// MapArgument returns the level path in the form the positional map argument
// expects: the SoftObjectPath without its .Asset suffix.
func MapArgument(level string) string {
	if idx := strings.Index(level, "."); idx >= 0 {
		return level[:idx]
	}
	return level
}
