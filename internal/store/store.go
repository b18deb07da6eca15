// Package store owns the canonical in-memory state and its durable JSON
// round-trips. The whole state is one flat document; every mutation rewrites
// it before the call returns, so an acknowledged mutation is always on disk.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"billkeep/internal/core"
)

// document is the persisted layout: bill list in insertion order, payment
// marks keyed by YYYY-MM month then bill id, and push token registrations.
type document struct {
	Bills    []core.Bill                `json:"bills"`
	Payments map[string]map[string]bool `json:"payments"`
	Tokens   []core.PushToken           `json:"tokens"`
}

// Store is the aggregate root. A single mutex serializes mutations together
// with their durable write, so overlapping requests apply one after another
// instead of interleaving around the file I/O.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Load reads durable state from path. A missing file initializes an empty
// store and persists it immediately. A file that exists but does not parse is
// an error; corruption must surface rather than silently start empty.
func Load(path string) (*Store, error) {
	s := &Store{
		path: path,
		doc:  document{Payments: map[string]map[string]bool{}},
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.persistLocked(); err != nil {
			return nil, fmt.Errorf("initialize state file: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.doc); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	if s.doc.Payments == nil {
		s.doc.Payments = map[string]map[string]bool{}
	}
	return s, nil
}

// persistLocked writes the full document, overwriting prior contents. The
// caller must hold s.mu (or be the only reference, during Load). The write
// goes through a temp file and rename so a crash never truncates the state.
func (s *Store) persistLocked() error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Bills returns a copy of the bill list in insertion order.
func (s *Store) Bills() []core.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Bill(nil), s.doc.Bills...)
}

// PaidSet returns a copy of the payment-mark set for one month.
func (s *Store) PaidSet(monthKey string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	marks := s.doc.Payments[monthKey]
	out := make(map[string]bool, len(marks))
	for id, v := range marks {
		if v {
			out[id] = true
		}
	}
	return out
}

// ProjectMonth derives the projected bill list for a month.
func (s *Store) ProjectMonth(monthKey string) []core.ProjectedBill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Project(s.doc.Bills, s.doc.Payments[monthKey])
}

// AddBill appends a bill. An empty ID gets a generated one; a supplied ID
// that already exists is a conflict and the store stays unmutated.
func (s *Store) AddBill(b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	} else if s.indexLocked(b.ID) >= 0 {
		return core.Bill{}, core.ErrDuplicateID
	}
	s.doc.Bills = append(s.doc.Bills, b)
	if err := s.persistLocked(); err != nil {
		return core.Bill{}, err
	}
	return b, nil
}

// BillPatch carries the fields of a partial update; nil means unchanged.
type BillPatch struct {
	Name   *string
	DueDay *int
	Amount *core.Money
	Notes  *string
}

// UpdateBill applies a partial update in place, keeping list order.
func (s *Store) UpdateBill(id string, patch BillPatch) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return core.Bill{}, core.ErrNotFound
	}
	updated := s.doc.Bills[i]
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.DueDay != nil {
		updated.DueDay = *patch.DueDay
	}
	if patch.Amount != nil {
		updated.Amount = *patch.Amount
	}
	if patch.Notes != nil {
		updated.Notes = *patch.Notes
	}
	if err := updated.Validate(); err != nil {
		return core.Bill{}, err
	}
	s.doc.Bills[i] = updated
	if err := s.persistLocked(); err != nil {
		return core.Bill{}, err
	}
	return updated, nil
}

// RemoveBill deletes a bill and cascades its payment marks across all months.
func (s *Store) RemoveBill(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return core.ErrNotFound
	}
	s.doc.Bills = append(s.doc.Bills[:i], s.doc.Bills[i+1:]...)
	for monthKey, marks := range s.doc.Payments {
		delete(marks, id)
		if len(marks) == 0 {
			delete(s.doc.Payments, monthKey)
		}
	}
	return s.persistLocked()
}

// SetPaid records or clears the payment mark for (monthKey, id).
func (s *Store) SetPaid(id, monthKey string, paid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return core.ErrNotFound
	}
	marks := s.doc.Payments[monthKey]
	if paid {
		if marks == nil {
			marks = map[string]bool{}
			s.doc.Payments[monthKey] = marks
		}
		marks[id] = true
	} else {
		delete(marks, id)
		if len(marks) == 0 {
			delete(s.doc.Payments, monthKey)
		}
	}
	return s.persistLocked()
}

// AddToken registers a push token. Registration is idempotent on the literal
// token value; platform defaults to "unknown".
func (s *Store) AddToken(tok core.PushToken) (core.PushToken, error) {
	if tok.Token == "" {
		return core.PushToken{}, core.ErrEmptyToken
	}
	if tok.Platform == "" {
		tok.Platform = "unknown"
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.doc.Tokens {
		if existing.Token == tok.Token {
			return existing, nil
		}
	}
	s.doc.Tokens = append(s.doc.Tokens, tok)
	if err := s.persistLocked(); err != nil {
		return core.PushToken{}, err
	}
	return tok, nil
}

// RemoveToken drops a registration. Removing an unknown token is a no-op.
func (s *Store) RemoveToken(token string) error {
	if token == "" {
		return core.ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.doc.Tokens[:0]
	removed := false
	for _, existing := range s.doc.Tokens {
		if existing.Token == token {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	s.doc.Tokens = kept
	if !removed {
		return nil
	}
	return s.persistLocked()
}

// Tokens returns a copy of the registered push tokens.
func (s *Store) Tokens() []core.PushToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.PushToken(nil), s.doc.Tokens...)
}

func (s *Store) indexLocked(id string) int {
	for i, b := range s.doc.Bills {
		if b.ID == id {
			return i
		}
	}
	return -1
}
