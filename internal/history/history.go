// Package history remembers when each server was last connected to.
package history

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alpemreelmas/hop-cli/internal/model"
)

type state struct {
	LastUsed map[string]int64 `json:"last_used"`
}

// Store is a small JSON file mapping entry names to unix timestamps.
type Store struct {
	path string
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Touch records a connection to name.
func (s *Store) Touch(name string) error {
	st, err := s.load()
	if err != nil {
		return err
	}
	st.LastUsed[name] = s.now().Unix()
	return s.save(st)
}

// Rename moves the timestamp recorded for from over to to.
func (s *Store) Rename(from, to string) error {
	if from == to {
		return nil
	}
	st, err := s.load()
	if err != nil {
		return err
	}
	ts, ok := st.LastUsed[from]
	if !ok {
		return nil
	}
	delete(st.LastUsed, from)
	st.LastUsed[to] = ts
	return s.save(st)
}

// Forget drops name from the history.
func (s *Store) Forget(name string) error {
	st, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := st.LastUsed[name]; !ok {
		return nil
	}
	delete(st.LastUsed, name)
	return s.save(st)
}

// LastUsed returns last connection timestamps by entry name.
func (s *Store) LastUsed() (map[string]int64, error) {
	st, err := s.load()
	if err != nil {
		return nil, err
	}
	return st.LastUsed, nil
}

// SortRecent returns a new slice ordered by most recent use. Entries never
// used keep their registry order after the used ones.
func SortRecent(entries []model.ServerEntry, lastUsed map[string]int64) []model.ServerEntry {
	out := append([]model.ServerEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return lastUsed[out[i].Name] > lastUsed[out[j].Name]
	})
	return out
}

func (s *Store) load() (state, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state{LastUsed: map[string]int64{}}, nil
		}
		return state{}, err
	}
	var st state
	if err := json.Unmarshal(b, &st); err != nil {
		slog.Warn("ignoring unreadable history file", "path", s.path, "err", err)
		return state{LastUsed: map[string]int64{}}, nil
	}
	if st.LastUsed == nil {
		st.LastUsed = map[string]int64{}
	}
	return st, nil
}

func (s *Store) save(st state) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}
