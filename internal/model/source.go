// Package model defines the data structures shared by the checker, the fix
// engine and the host adapters.
package model

import (
	"path/filepath"
	"strings"
)

// Path represents a file system path.
type Path string

// File represents a source code file discovered on disk.
type File struct {
	FullPath  Path
	ShortPath Path
}

// BaseName returns the file name without directory and extension.
func BaseName(path Path) string {
	base := filepath.Base(string(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WithBaseName returns path with its base name replaced by name, keeping the
// directory and the extension.
func WithBaseName(path Path, name string) Path {
	p := string(path)
	return Path(filepath.Join(filepath.Dir(p), name+filepath.Ext(p)))
}

// Ext returns the extension of path including the leading dot.
func Ext(path Path) string {
	return filepath.Ext(string(path))
}

// Dir returns the directory that holds path.
func Dir(path Path) Path {
	return Path(filepath.Dir(string(path)))
}
