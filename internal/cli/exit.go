package cli

import (
	"errors"

	"github.com/alpemreelmas/hop-cli/internal/config"
	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/registry"
	"github.com/alpemreelmas/hop-cli/internal/sshclient"
)

// Process exit codes. connect and copy exit with the child's own status
// instead when the child fails.
const (
	ExitOK            = 0
	ExitGeneric       = 1
	ExitConfigIO      = 2
	ExitMalformed     = 3
	ExitDuplicateName = 4
	ExitDupAlias      = 5
	ExitNotFound      = 6
	ExitSpawn         = 7
	ExitValidation    = 8
)

// ExitCode maps an error returned by a command to the process exit status.
//
// Config errors are checked first: a malformed servers file wraps the
// registry or validation error that made it malformed.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *sshclient.ExitError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return exitErr.Code
	}
	switch {
	case errors.Is(err, config.ErrIO):
		return ExitConfigIO
	case errors.Is(err, config.ErrMalformed):
		return ExitMalformed
	case errors.Is(err, registry.ErrDuplicateName):
		return ExitDuplicateName
	case errors.Is(err, registry.ErrDuplicateAlias):
		return ExitDupAlias
	case errors.Is(err, registry.ErrNotFound):
		return ExitNotFound
	}
	var spawnErr *sshclient.SpawnError
	if errors.As(err, &spawnErr) {
		return ExitSpawn
	}
	var valErr *model.ValidationError
	if errors.As(err, &valErr) {
		return ExitValidation
	}
	return ExitGeneric
}
