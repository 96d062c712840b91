package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Kind sentinels; match them with errors.Is.
var (
	ErrDuplicateName  = errors.New("duplicate name")
	ErrDuplicateAlias = errors.New("duplicate alias")
	ErrNotFound       = errors.New("not found")
)

// RegistryError identifies which identifier an operation tripped over.
type RegistryError struct {
	Kind        error
	Identifier  string
	Suggestions []string
}

func (e *RegistryError) Error() string {
	switch e.Kind {
	case ErrDuplicateName:
		return fmt.Sprintf("a server named or aliased %q already exists", e.Identifier)
	case ErrDuplicateAlias:
		return fmt.Sprintf("alias %q collides with an existing name or alias", e.Identifier)
	case ErrNotFound:
		msg := fmt.Sprintf("server %q not found", e.Identifier)
		if len(e.Suggestions) > 0 {
			msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
		}
		return msg
	}
	return fmt.Sprintf("registry: %v: %s", e.Kind, e.Identifier)
}

func (e *RegistryError) Unwrap() error { return e.Kind }

func duplicateName(id string) error  { return &RegistryError{Kind: ErrDuplicateName, Identifier: id} }
func duplicateAlias(id string) error { return &RegistryError{Kind: ErrDuplicateAlias, Identifier: id} }
