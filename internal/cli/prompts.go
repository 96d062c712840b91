package cli

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/registry"
	"github.com/alpemreelmas/hop-cli/internal/util"
)

// confirm asks a yes/no question. Aborting the prompt counts as no.
func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// pickCandidate lets the user choose among fuzzy matches for an identifier
// that did not resolve. ok is false when the user backs out.
func pickCandidate(query string, candidates []registry.Candidate) (model.ServerEntry, bool, error) {
	options := make([]huh.Option[string], 0, len(candidates))
	byName := make(map[string]model.ServerEntry, len(candidates))
	for _, c := range candidates {
		options = append(options, huh.NewOption(c.Entry.String(), c.Entry.Name))
		byName[c.Entry.Name] = c.Entry
	}

	var selected string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(headerStyle.Render("No server named " + query)).
				Description("Pick one of the closest matches, Esc to cancel").
				Options(options...).
				Value(&selected),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return model.ServerEntry{}, false, nil
	}
	if err != nil {
		return model.ServerEntry{}, false, err
	}
	e, ok := byName[selected]
	return e, ok, nil
}

// resolveInteractive resolves identifier and, when it is unknown and the
// session is interactive, offers the closest matches instead of failing.
// The user always picks explicitly; nothing is chosen on their behalf.
func resolveInteractive(reg *registry.Registry, identifier string, tty bool) (model.ServerEntry, error) {
	entry, err := reg.Resolve(identifier)
	if err == nil || !tty || !errors.Is(err, registry.ErrNotFound) {
		return entry, err
	}
	candidates := reg.Suggest(identifier, util.MaxSuggestions)
	if len(candidates) == 0 {
		return model.ServerEntry{}, err
	}
	picked, ok, perr := pickCandidate(identifier, candidates)
	if perr != nil {
		return model.ServerEntry{}, perr
	}
	if !ok {
		return model.ServerEntry{}, err
	}
	return picked, nil
}
