// Package model holds the plain data types shared by the registry, the
// config store and the dispatcher.
package model

import (
	"fmt"
	"strconv"

	"github.com/alpemreelmas/hop-cli/internal/util"
)

// ServerEntry is one remembered server.
type ServerEntry struct {
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
	User  string `json:"user"`
	Host  string `json:"host"`
	Port  int    `json:"port"`
}

// Target returns the user@host destination passed to ssh.
func (e ServerEntry) Target() string {
	return e.User + "@" + e.Host
}

// PortString returns the effective port as a decimal string.
func (e ServerEntry) PortString() string {
	return strconv.Itoa(e.EffectivePort())
}

// EffectivePort returns the port, falling back to 22 when unset.
func (e ServerEntry) EffectivePort() int {
	if e.Port == 0 {
		return util.DefaultSSHPort
	}
	return e.Port
}

// WithDefaults returns a copy with the unset port filled in.
func (e ServerEntry) WithDefaults() ServerEntry {
	e.Port = e.EffectivePort()
	return e
}

// Matches reports whether identifier equals the entry's name or alias.
func (e ServerEntry) Matches(identifier string) bool {
	return e.Name == identifier || (e.Alias != "" && e.Alias == identifier)
}

func (e ServerEntry) String() string {
	label := e.Name
	if e.Alias != "" {
		label = fmt.Sprintf("%s (%s)", e.Name, e.Alias)
	}
	return fmt.Sprintf("%s -> %s:%d", label, e.Target(), e.EffectivePort())
}

// EntryPatch is a partial update for an entry. Nil fields are left alone;
// an Alias pointing at "" clears the alias.
type EntryPatch struct {
	Name  *string
	Alias *string
	User  *string
	Host  *string
	Port  *int
}

// Empty reports whether the patch changes nothing.
func (p EntryPatch) Empty() bool {
	return p.Name == nil && p.Alias == nil && p.User == nil && p.Host == nil && p.Port == nil
}

// Apply returns a copy of e with the patch applied.
func (p EntryPatch) Apply(e ServerEntry) ServerEntry {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Alias != nil {
		e.Alias = *p.Alias
	}
	if p.User != nil {
		e.User = *p.User
	}
	if p.Host != nil {
		e.Host = *p.Host
	}
	if p.Port != nil {
		e.Port = *p.Port
	}
	return e
}
