package dts

import (
	"os"
	"path/filepath"

	"github.com/kylebonnici/dts-lsp-sub002/dts/parser"
)

// ResolveIncludes is the second phase of include handling: the parse phase
// records the include path text, this pass resolves it against the
// including file's directory and any extra search paths. Resolution
// happens once; already-resolved includes are left alone.
func ResolveIncludes(items []*parser.Node, baseDir string, searchPaths ...string) {
	for _, item := range items {
		if item.Kind != parser.KindInclude {
			continue
		}
		if item.Text == "" || item.ResolvedPath != "" {
			continue
		}
		item.ResolvedPath = resolveIncludePath(item.Text, baseDir, searchPaths)
	}
}

func resolveIncludePath(path, baseDir string, searchPaths []string) string {
	if filepath.IsAbs(path) {
		if fileExists(path) {
			return path
		}
		return ""
	}
	for _, dir := range append([]string{baseDir}, searchPaths...) {
		full := filepath.Join(dir, path)
		if fileExists(full) {
			return full
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
