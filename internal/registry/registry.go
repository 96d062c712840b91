// Package registry is the in-memory collection of server entries. It owns
// the uniqueness rules for names and aliases and the resolution order used
// by every command that takes an identifier.
//
// A Registry does no I/O. Commands load one through the config store,
// mutate it, and hand it back to the store to persist.
package registry

import (
	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/util"
)

// Registry is an ordered list of entries. Insertion order is list order.
type Registry struct {
	entries []model.ServerEntry
}

// New builds a registry from entries in order, enforcing the same rules
// as Add. It is how stored files are turned back into a registry.
func New(entries ...model.ServerEntry) (*Registry, error) {
	r := &Registry{entries: make([]model.ServerEntry, 0, len(entries))}
	for _, e := range entries {
		if err := r.Add(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// List returns a copy of the entries in insertion order.
func (r *Registry) List() []model.ServerEntry {
	return append([]model.ServerEntry(nil), r.entries...)
}

// Add validates entry and appends it.
//
// The name must not equal any existing name or alias (ErrDuplicateName).
// A set alias must not equal any existing name or alias (ErrDuplicateAlias).
func (r *Registry) Add(entry model.ServerEntry) error {
	entry = entry.WithDefaults()
	if err := model.Validate(entry); err != nil {
		return err
	}
	if err := r.checkUnique(entry, -1); err != nil {
		return err
	}
	r.entries = append(r.entries, entry)
	return nil
}

// Resolve finds an entry by exact name, then by exact alias.
//
// Names are checked across the whole registry before any alias so an
// alias can never shadow a name.
func (r *Registry) Resolve(identifier string) (model.ServerEntry, error) {
	idx := r.indexOf(identifier)
	if idx < 0 {
		return model.ServerEntry{}, r.notFound(identifier)
	}
	return r.entries[idx], nil
}

// Remove deletes the entry identifier resolves to and returns it.
func (r *Registry) Remove(identifier string) (model.ServerEntry, error) {
	idx := r.indexOf(identifier)
	if idx < 0 {
		return model.ServerEntry{}, r.notFound(identifier)
	}
	removed := r.entries[idx]
	r.entries = append(r.entries[:idx], r.entries[idx+1:]...)
	return removed, nil
}

// Edit applies patch to the entry identifier resolves to. Uniqueness is
// rechecked against the other entries only; the entry keeps its position.
func (r *Registry) Edit(identifier string, patch model.EntryPatch) (model.ServerEntry, error) {
	idx := r.indexOf(identifier)
	if idx < 0 {
		return model.ServerEntry{}, r.notFound(identifier)
	}
	updated := patch.Apply(r.entries[idx]).WithDefaults()
	if err := model.Validate(updated); err != nil {
		return model.ServerEntry{}, err
	}
	if err := r.checkUnique(updated, idx); err != nil {
		return model.ServerEntry{}, err
	}
	r.entries[idx] = updated
	return updated, nil
}

func (r *Registry) indexOf(identifier string) int {
	if identifier == "" {
		return -1
	}
	for i, e := range r.entries {
		if e.Name == identifier {
			return i
		}
	}
	for i, e := range r.entries {
		if e.Alias != "" && e.Alias == identifier {
			return i
		}
	}
	return -1
}

// checkUnique compares entry against every entry except the one at skip.
func (r *Registry) checkUnique(entry model.ServerEntry, skip int) error {
	for i, other := range r.entries {
		if i == skip {
			continue
		}
		if other.Matches(entry.Name) {
			return duplicateName(entry.Name)
		}
	}
	if entry.Alias == "" {
		return nil
	}
	for i, other := range r.entries {
		if i == skip {
			continue
		}
		if other.Matches(entry.Alias) {
			return duplicateAlias(entry.Alias)
		}
	}
	return nil
}

func (r *Registry) notFound(identifier string) error {
	var names []string
	for _, c := range r.Suggest(identifier, util.MaxSuggestions) {
		names = append(names, c.Entry.Name)
	}
	return &RegistryError{Kind: ErrNotFound, Identifier: identifier, Suggestions: names}
}
