// internal/draft/store.go
package draft

// Per-session editable state for one wizard. The store exclusively owns the
// draft while the session is open; once submitted the upstream API is the
// owner of record. Handlers reach the store from the HTTP goroutine pool,
// so every mutation is mutex-guarded.

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/opencustoms/trade-portal/internal/models"
	"github.com/opencustoms/trade-portal/internal/normalize"
)

var ErrRowNotFound = errors.New("row not found")

// ListSpec configures one named list section: the default row template and
// whether the section may render empty on first view. Array-of-records
// sections always show at least one editable row, except attachments and
// declarations which start empty.
type ListSpec struct {
	Name       string
	Template   models.Record
	AllowEmpty bool
}

type Store struct {
	mu         sync.Mutex
	details    models.Record
	singletons map[string]models.Record
	lists      map[string][]models.Record
	specs      map[string]ListSpec
	order      []string
}

func NewStore(specs []ListSpec) *Store {
	s := &Store{
		details:    models.Record{},
		singletons: make(map[string]models.Record),
		lists:      make(map[string][]models.Record),
		specs:      make(map[string]ListSpec, len(specs)),
	}
	for _, spec := range specs {
		s.specs[spec.Name] = spec
		s.order = append(s.order, spec.Name)
		if spec.AllowEmpty {
			s.lists[spec.Name] = []models.Record{}
		} else {
			s.lists[spec.Name] = []models.Record{newRow(spec.Template)}
		}
	}
	return s
}

func newRow(template models.Record) models.Record {
	// Fresh copy per row; two rows must never share one object reference.
	row := template.Clone()
	if row == nil {
		row = models.Record{}
	}
	row[models.LocalIDField] = uuid.New().String()
	return row
}

// AddRecord appends a fresh copy of the template with a new local id and
// returns the row. The template itself is never mutated.
func (s *Store) AddRecord(list string, template models.Record) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.specs[list]; !ok {
		return nil, fmt.Errorf("unknown list %q", list)
	}
	if template == nil {
		template = s.specs[list].Template
	}
	row := newRow(template)
	s.lists[list] = append(s.lists[list], row)
	return row.Clone(), nil
}

// RemoveRecord removes one row by local id. Sibling rows and their local
// ids are left untouched.
func (s *Store) RemoveRecord(list, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.lists[list]
	if !ok {
		return fmt.Errorf("unknown list %q", list)
	}
	for i, row := range rows {
		if row[models.LocalIDField] == localID {
			s.lists[list] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return ErrRowNotFound
}

// UpdateField replaces one field on one row. The row is replaced with a
// fresh object so downstream change detection triggers; order and sibling
// rows are preserved.
func (s *Store) UpdateField(list, localID, field string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.lists[list]
	if !ok {
		return fmt.Errorf("unknown list %q", list)
	}
	for i, row := range rows {
		if row[models.LocalIDField] == localID {
			fresh := row.Clone()
			fresh[field] = value
			rows[i] = fresh
			return nil
		}
	}
	return ErrRowNotFound
}

// SetDetail writes one scalar detail field.
func (s *Store) SetDetail(field string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[field] = value
}

// MergeDetails applies a batch of detail-field edits.
func (s *Store) MergeDetails(fields models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range fields {
		s.details[k] = v
	}
}

// SetSingleton replaces a one-per-application sub-record (company activity,
// record keeping, flag groups).
func (s *Store) SetSingleton(name string, rec models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.singletons[name] = rec.Clone()
}

// Hydrate replaces the entire store contents from a normalized snapshot.
// Used once when a wizard opens against an existing record. Lists that are
// empty after normalization fall back to a single default row unless the
// spec allows an empty section.
func (s *Store) Hydrate(doc normalize.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.details = doc.Details.Clone()
	if s.details == nil {
		s.details = models.Record{}
	}

	s.singletons = make(map[string]models.Record, len(doc.Singletons))
	for name, rec := range doc.Singletons {
		s.singletons[name] = rec.Clone()
	}

	for _, name := range s.order {
		spec := s.specs[name]
		incoming := doc.Lists[name]
		rows := make([]models.Record, 0, len(incoming))
		for _, rec := range incoming {
			row := rec.Clone()
			if _, ok := row[models.LocalIDField]; !ok {
				row[models.LocalIDField] = uuid.New().String()
			}
			rows = append(rows, row)
		}
		if len(rows) == 0 && !spec.AllowEmpty {
			rows = []models.Record{newRow(spec.Template)}
		}
		s.lists[name] = rows
	}
}

// Details returns a copy of the detail fields.
func (s *Store) Details() models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.details.Clone()
}

// Singleton returns a copy of one singleton sub-record.
func (s *Store) Singleton(name string) models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.singletons[name].Clone()
}

// Records returns copies of one list's rows in order.
func (s *Store) Records(list string) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.lists[list]
	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Clone())
	}
	return out
}

// Count returns the number of rows in one list.
func (s *Store) Count(list string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists[list])
}

// Lists returns the configured list names in order.
func (s *Store) Lists() []string {
	return append([]string(nil), s.order...)
}

// Snapshot assembles the full editable state for serialization (session
// views and outbound payload assembly).
func (s *Store) Snapshot() models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.details.Clone()
	if out == nil {
		out = models.Record{}
	}
	for name, rec := range s.singletons {
		out[name] = map[string]interface{}(rec.Clone())
	}
	for _, name := range s.order {
		rows := make([]interface{}, 0, len(s.lists[name]))
		for _, row := range s.lists[name] {
			rows = append(rows, map[string]interface{}(row.Clone()))
		}
		out[name] = rows
	}
	return out
}
