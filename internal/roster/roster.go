// Package roster manages the directory of labeled reference photos. One file
// per image; the filename encodes the student's display name.
package roster

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SupportedExtensions lists the accepted reference photo extensions,
// lowercase with leading dot.
var SupportedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".webp": {},
}

// Student describes one registered reference photo.
type Student struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Path     string `json:"-"`
}

// Roster owns the reference photo directory.
type Roster struct {
	dir string
}

// New creates a roster over the given directory, creating it if needed.
func New(dir string) (*Roster, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating student directory: %w", err)
	}
	return &Roster{dir: dir}, nil
}

// Dir returns the reference photo directory.
func (r *Roster) Dir() string {
	return r.dir
}

// IsSupported reports whether the filename has an accepted image extension.
func IsSupported(filename string) bool {
	_, ok := SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// List returns every registered reference photo, sorted by filename.
func (r *Roster) List() ([]Student, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("reading student directory: %w", err)
	}

	var students []Student
	for _, entry := range entries {
		if entry.IsDir() || !IsSupported(entry.Name()) {
			continue
		}
		students = append(students, Student{
			Name:     NameFromFilename(entry.Name()),
			Filename: entry.Name(),
			Path:     filepath.Join(r.dir, entry.Name()),
		})
	}

	sort.Slice(students, func(i, j int) bool {
		return students[i].Filename < students[j].Filename
	})
	return students, nil
}

// Names returns the distinct derived student names, sorted.
func (r *Roster) Names() ([]string, error) {
	students, err := r.List()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(students))
	var names []string
	for _, s := range students {
		if _, ok := seen[s.Name]; ok {
			continue
		}
		seen[s.Name] = struct{}{}
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Save stores an uploaded reference photo under its original filename.
// Existing files are never overwritten; the caller is told to delete first.
// Returns true when the file was skipped because it already exists.
func (r *Roster) Save(filename string, src io.Reader) (bool, error) {
	safeName := filepath.Base(filename)
	if !IsSupported(safeName) {
		return false, fmt.Errorf("unsupported image extension: %s", filepath.Ext(safeName))
	}

	dest := filepath.Join(r.dir, safeName)
	if _, err := os.Stat(dest); err == nil {
		return true, nil
	}

	out, err := os.Create(dest)
	if err != nil {
		return false, fmt.Errorf("creating reference photo: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dest)
		return false, fmt.Errorf("saving reference photo: %w", err)
	}
	return false, nil
}

// Delete removes a reference photo by filename.
func (r *Roster) Delete(filename string) error {
	safeName := filepath.Base(filename)
	if err := os.Remove(filepath.Join(r.dir, safeName)); err != nil {
		return fmt.Errorf("deleting reference photo: %w", err)
	}
	return nil
}
