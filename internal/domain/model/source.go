package model

import (
	"path/filepath"
	"strings"
)

// Stem returns the file name of path without its final extension. It is the
// identity used for aggregation keys and report file names. Names made only
// of a leading dot and a suffix (".bashrc") are returned unchanged.
func Stem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// SourceLabel returns the name used to tag entries coming from path.
func SourceLabel(path string) string {
	return filepath.Base(path)
}
