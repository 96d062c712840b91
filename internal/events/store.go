// Package events is the append-only activity journal behind `hop activity`.
package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Event types.
const (
	TypeAdd     = "add"
	TypeEdit    = "edit"
	TypeRemove  = "remove"
	TypeImport  = "import"
	TypeConnect = "connect"
	TypeCopy    = "copy"
)

// Event is one record persisted to activity.jsonl.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Server    string    `json:"server,omitempty"`
	Type      string    `json:"type"`
	Command   string    `json:"command,omitempty"`
	ExitCode  *int      `json:"exit_code,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Query controls event filtering and bounded reads.
type Query struct {
	Server string
	Type   string
	Since  time.Time
	Limit  int
}

// Store provides append/read access to the journal file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Append writes a single event as one JSON line.
func (s *Store) Append(evt Event) error {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = f.Write(append(b, '\n'))
	return err
}

// Read returns events in append order, filtered by q. With a Limit only the
// newest Limit matches are kept. Lines that do not decode are skipped.
func (s *Store) Read(q Query) ([]Event, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var evt Event
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			continue
		}
		if !q.matches(evt) {
			continue
		}
		out = append(out, evt)
		if q.Limit > 0 && len(out) > q.Limit {
			out = out[1:]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan activity: %w", err)
	}
	return out, nil
}

func (q Query) matches(evt Event) bool {
	if q.Server != "" && evt.Server != q.Server {
		return false
	}
	if q.Type != "" && evt.Type != q.Type {
		return false
	}
	return q.Since.IsZero() || !evt.Timestamp.Before(q.Since)
}
