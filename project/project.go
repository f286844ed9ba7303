// Package project finds module files in a directory, parses them and writes
// annotations back.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"pipelined.dev/aim"
)

// Pattern matches module files relative to the project directory.
const Pattern = "**/*.txt"

// File is a parsed module file.
type File struct {
	Path   string
	Module *aim.Module
	// Source is the text read from the file.
	Source string
	// Text is the text with ids allocated and errors annotated.
	Text string
}

// Changed reports if parsing changed the text.
func (f *File) Changed() bool {
	return f.Source != f.Text
}

// Write saves the annotated text if it differs from the source.
func (f *File) Write() error {
	if !f.Changed() {
		return nil
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.Path, []byte(f.Text), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write module %s: %w", f.Path, err)
	}
	f.Source = f.Text
	return nil
}

// Scan returns paths of all module files under dir, sorted.
func Scan(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(m)))
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads and parses a module file. The module id is the file name
// without extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, text, err := aim.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Base(path)
	m.ID = base[:len(base)-len(filepath.Ext(base))]
	return &File{
		Path:   path,
		Module: m,
		Source: string(data),
		Text:   text,
	}, nil
}

// LoadAll loads every module file under dir.
func LoadAll(dir string) ([]*File, error) {
	paths, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		f, err := Load(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Match reports if path under dir is a module file.
func Match(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(Pattern, filepath.ToSlash(rel))
	return err == nil && ok
}
