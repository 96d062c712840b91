package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/alpemreelmas/hop-cli/internal/model"
)

// CurrentVersion is the servers file format written by Encode.
const CurrentVersion = 1

type document struct {
	Version int                 `json:"version"`
	Servers []model.ServerEntry `json:"servers"`
}

// storedEntry is the read-side shape. Older files wrote the host as "ip".
type storedEntry struct {
	Name  string `json:"name"`
	Alias string `json:"alias"`
	User  string `json:"user"`
	Host  string `json:"host"`
	IP    string `json:"ip"`
	Port  int    `json:"port"`
}

type storedDocument struct {
	Version *int          `json:"version"`
	Servers []storedEntry `json:"servers"`
}

// Encode renders entries in the current format: two-space indent and a
// trailing newline. Unset ports are written as 22.
func Encode(entries []model.ServerEntry) ([]byte, error) {
	doc := document{Version: CurrentVersion, Servers: make([]model.ServerEntry, 0, len(entries))}
	for _, e := range entries {
		doc.Servers = append(doc.Servers, e.WithDefaults())
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode servers: %w", err)
	}
	return append(b, '\n'), nil
}

// Decode accepts the versioned document, the unversioned {"servers": [...]}
// layout and a bare array of entries. Blank input decodes to no entries.
// Field validation is left to the registry.
func Decode(data []byte) ([]model.ServerEntry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var stored []storedEntry
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil, fmt.Errorf("decode server list: %w", err)
		}
	case '{':
		var doc storedDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode servers document: %w", err)
		}
		if doc.Version != nil && (*doc.Version < 1 || *doc.Version > CurrentVersion) {
			return nil, fmt.Errorf("unsupported format version %d (this build reads up to %d)", *doc.Version, CurrentVersion)
		}
		stored = doc.Servers
	default:
		return nil, fmt.Errorf("expected a JSON object or array")
	}

	out := make([]model.ServerEntry, 0, len(stored))
	for _, s := range stored {
		host := s.Host
		if host == "" {
			host = s.IP
		}
		out = append(out, model.ServerEntry{Name: s.Name, Alias: s.Alias, User: s.User, Host: host, Port: s.Port})
	}
	return out, nil
}
