package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	ioutils "github.com/handiism/topoart/internal/io"
	"github.com/handiism/topoart/internal/metadata/dto"
	"github.com/handiism/topoart/internal/model"
)

// LookupError reports a key that matched no record or more than one.
type LookupError struct {
	Key     string
	Matches []model.Artwork
}

func (e *LookupError) Error() string {
	switch {
	case len(e.Matches) == 0 && e.Key == "":
		return "no records"
	case len(e.Matches) == 0:
		return fmt.Sprintf("no record matches %q", e.Key)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d records match %q:", len(e.Matches), e.Key)
	for _, m := range e.Matches {
		b.WriteString("\n  ")
		b.WriteString(m.String())
	}
	return b.String()
}

// Store holds the records of one metadata file.
type Store struct {
	path string

	mu      sync.RWMutex
	records []dto.JSONRecord

	// raw holds each record as read from the file, so Save writes back keys
	// the record type does not know. Appended records have none.
	raw []json.RawMessage
}

// Open reads the metadata file at path. A missing file gives an empty store
// that Save will create.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &s.raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	s.records = make([]dto.JSONRecord, len(s.raw))
	for i, r := range s.raw {
		if err := json.Unmarshal(r, &s.records[i]); err != nil {
			return nil, fmt.Errorf("parse %s: record %d: %w", path, i, err)
		}
	}
	return s, nil
}

// Path returns the file the store reads from and saves to.
func (s *Store) Path() string { return s.path }

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns every record in file order.
func (s *Store) All() []model.Artwork {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Artwork, len(s.records))
	for i := range s.records {
		out[i] = s.records[i].ToModel()
	}
	return out
}

// Locate returns the single record whose Name or uid equals key.
func (s *Store) Locate(key string) (model.Artwork, error) {
	var matches []model.Artwork
	for _, a := range s.All() {
		if a.Name == key || a.UID == key {
			matches = append(matches, a)
		}
	}
	if len(matches) != 1 {
		return model.Artwork{}, &LookupError{Key: key, Matches: matches}
	}
	return matches[0], nil
}

// Last returns the newest record.
func (s *Store) Last() (model.Artwork, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return model.Artwork{}, &LookupError{}
	}
	return s.records[len(s.records)-1].ToModel(), nil
}

// NextUID returns the uid for a new record: the record count plus one,
// zero-padded to five digits.
func (s *Store) NextUID() string {
	return dto.FormatUID(s.Len() + 1)
}

// Append adds a record, assigning the next uid when a.UID is empty, and
// returns the stored artwork. Call Save to persist it.
func (s *Store) Append(a model.Artwork) model.Artwork {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.UID == "" {
		a.UID = dto.FormatUID(len(s.records) + 1)
	}
	s.records = append(s.records, dto.FromModel(a))
	s.raw = append(s.raw, nil)
	return a
}

// Save writes all records back to the store's file, indented by four spaces.
// Records read from the file are written back unchanged.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	out := make([]json.RawMessage, len(s.records))
	var err error
	for i := range s.records {
		if out[i] = s.raw[i]; out[i] == nil {
			if out[i], err = json.Marshal(s.records[i]); err != nil {
				break
			}
		}
	}
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return err
	}
	return ioutils.WriteFile(ctx, s.path, append(data, '\n'))
}
