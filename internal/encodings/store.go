// Package encodings builds and persists the face encoding database: a mapping
// from student name to the reference descriptors computed from that student's
// photos. The database is rebuilt wholesale, never incrementally.
package encodings

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/embedding"
	"github.com/kozaktomas/smart-attendance/internal/roster"
)

// Database maps a student name to one or more reference descriptors, one per
// reference photo. Every key holds at least one descriptor.
type Database map[string][][]float32

// Count returns the total number of descriptors across all names.
func (db Database) Count() int {
	n := 0
	for _, descs := range db {
		n += len(descs)
	}
	return n
}

// ProgressFunc reports rebuild progress after each reference photo.
type ProgressFunc func(processed, total int)

// Store owns the persisted encoding database and knows how to rebuild it from
// the roster's reference photos.
type Store struct {
	roster   *roster.Roster
	path     string
	provider embedding.Provider
}

// NewStore creates an encoding store persisting to path.
func NewStore(r *roster.Roster, path string, provider embedding.Provider) *Store {
	return &Store{
		roster:   r,
		path:     path,
		provider: provider,
	}
}

// Rebuild scans every reference photo, computes the first face descriptor per
// image, groups descriptors by derived name, and persists the result,
// overwriting any prior database. Images that cannot be read or contain no
// detectable face are skipped. When the embedding service is unavailable an
// empty database is returned without error and nothing is persisted.
func (s *Store) Rebuild(ctx context.Context, progress ProgressFunc) (Database, error) {
	if !s.provider.Available(ctx) {
		return Database{}, nil
	}

	students, err := s.roster.List()
	if err != nil {
		return nil, err
	}

	db := make(Database)
	for i, student := range students {
		if progress != nil {
			progress(i, len(students))
		}

		imageData, err := os.ReadFile(student.Path)
		if err != nil {
			continue
		}

		desc, err := s.provider.EncodeSingle(ctx, imageData)
		if err != nil || desc == nil {
			continue
		}

		db[student.Name] = append(db[student.Name], desc)
	}
	if progress != nil {
		progress(len(students), len(students))
	}

	if err := s.save(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Load returns the persisted database, rebuilding it when the persisted form
// is absent or unreadable. Callers never see a missing database as an error.
func (s *Store) Load(ctx context.Context) (Database, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return s.Rebuild(ctx, nil)
	}
	defer f.Close()

	var db Database
	if err := gob.NewDecoder(f).Decode(&db); err != nil {
		return s.Rebuild(ctx, nil)
	}
	return db, nil
}

// Invalidate removes the persisted database so the next Load rebuilds it.
// Called when a reference photo is deleted.
func (s *Store) Invalidate() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing encoding database: %w", err)
	}
	return nil
}

// BuiltAt returns the persisted database's build time, or false when no
// database has been persisted yet.
func (s *Store) BuiltAt() (time.Time, bool) {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func (s *Store) save(db Database) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating encodings directory: %w", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating encoding database: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(db); err != nil {
		f.Close()
		return fmt.Errorf("encoding database: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing encoding database: %w", err)
	}
	return nil
}
