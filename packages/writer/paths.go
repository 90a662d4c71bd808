package writer

import (
	"path/filepath"
	"strings"
)

// specMarkers are stripped from the end of a source file stem.
var specMarkers = []string{".spec", ".test", ".cy"}

// FlatPath is the report path of a target named name under root.
func FlatPath(root, name string) string {
	return filepath.Join(root, name)
}

// NestedPath mirrors the directory of sourcePath, relative to specRoot,
// under root. The file is the source stem with ext appended:
//
//	NestedPath("out", "", "a/b/c.spec.js", "txt") == "out/a/b/c.txt"
func NestedPath(root, specRoot, sourcePath, ext string) string {
	return filepath.Join(root, relativeDir(specRoot, sourcePath), Stem(sourcePath)+normalizeExt(ext))
}

// Stem is the base name of sourcePath without its extension and without a
// trailing spec marker. Other dots are kept.
func Stem(sourcePath string) string {
	base := filepath.Base(filepath.FromSlash(sourcePath))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for _, m := range specMarkers {
		if len(stem) > len(m) && strings.HasSuffix(stem, m) {
			return strings.TrimSuffix(stem, m)
		}
	}
	return stem
}

func normalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// relativeDir returns the source directory relative to specRoot, confined
// to stay below the output root.
func relativeDir(specRoot, sourcePath string) string {
	dir := filepath.Dir(filepath.FromSlash(sourcePath))
	if specRoot != "" {
		if rel, err := filepath.Rel(filepath.FromSlash(specRoot), dir); err == nil && !escapes(rel) {
			dir = rel
		}
	}

	dir = filepath.Clean(dir)
	if vol := filepath.VolumeName(dir); vol != "" {
		dir = dir[len(vol):]
	}
	dir = strings.TrimLeft(dir, string(filepath.Separator))
	for escapes(dir) {
		dir = strings.TrimPrefix(strings.TrimPrefix(dir, ".."), string(filepath.Separator))
	}
	if dir == "." {
		return ""
	}
	return dir
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
