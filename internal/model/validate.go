package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/alpemreelmas/hop-cli/internal/util"
)

// ValidationError reports a field that cannot be stored.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Validate checks every field of e. The port must already be defaulted.
func Validate(e ServerEntry) error {
	if err := ValidateIdentifier("name", e.Name); err != nil {
		return err
	}
	if e.Alias != "" {
		if err := ValidateIdentifier("alias", e.Alias); err != nil {
			return err
		}
	}
	if err := validateDestinationPart("user", e.User); err != nil {
		return err
	}
	if err := validateDestinationPart("host", e.Host); err != nil {
		return err
	}
	if err := util.ValidatePort(e.Port); err != nil {
		return &ValidationError{Field: "port", Value: strconv.Itoa(e.Port), Reason: err.Error()}
	}
	return nil
}

// ValidateIdentifier checks a name or alias: letters, digits, '-' and '_'.
func ValidateIdentifier(field, v string) error {
	if v == "" {
		return &ValidationError{Field: field, Reason: "cannot be empty"}
	}
	for _, r := range v {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			continue
		}
		return &ValidationError{Field: field, Value: v, Reason: "use only letters, digits, '-' and '_'"}
	}
	return nil
}

// user and host end up in ssh's argv, so a leading '-' would be read as a flag.
func validateDestinationPart(field, v string) error {
	switch {
	case v == "":
		return &ValidationError{Field: field, Reason: "cannot be empty"}
	case strings.HasPrefix(v, "-"):
		return &ValidationError{Field: field, Value: v, Reason: "cannot start with '-'"}
	case strings.ContainsAny(v, "@ \t\r\n"):
		return &ValidationError{Field: field, Value: v, Reason: "cannot contain '@' or whitespace"}
	}
	return nil
}

// ParseTarget parses "host", "user@host", "host:port" or "user@host:port".
// Unset parts are left zero so callers can merge them with flags.
func ParseTarget(input string) (user, host string, port int, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", 0, fmt.Errorf("destination cannot be empty")
	}

	if atIdx := strings.LastIndex(input, "@"); atIdx >= 0 {
		user = input[:atIdx]
		input = input[atIdx+1:]
		if user == "" {
			return "", "", 0, fmt.Errorf("user cannot be empty in %q", input)
		}
	}

	// Bracketed IPv6 literal, optionally with a port.
	if strings.HasPrefix(input, "[") {
		end := strings.Index(input, "]")
		if end < 0 {
			return "", "", 0, fmt.Errorf("unterminated '[' in %q", input)
		}
		host = input[1:end]
		rest := input[end+1:]
		if rest != "" {
			if !strings.HasPrefix(rest, ":") {
				return "", "", 0, fmt.Errorf("unexpected %q after host", rest)
			}
			p, perr := parsePort(rest[1:])
			if perr != nil {
				return "", "", 0, perr
			}
			port = p
		}
	} else if strings.Count(input, ":") == 1 {
		idx := strings.LastIndex(input, ":")
		p, perr := parsePort(input[idx+1:])
		if perr != nil {
			return "", "", 0, perr
		}
		port = p
		host = input[:idx]
	} else {
		host = input
	}

	if host == "" {
		return "", "", 0, fmt.Errorf("hostname cannot be empty")
	}
	return user, host, port, nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if err := util.ValidatePort(p); err != nil {
		return 0, err
	}
	return p, nil
}
