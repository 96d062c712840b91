package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/util"
)

// Format names an import/export encoding.
type Format string

const (
	FormatJSON      Format = "json"
	FormatSSHConfig Format = "ssh-config"
)

// ParseFormat accepts the names shown in --help plus a couple of spellings
// people tend to type.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "ssh-config", "ssh_config", "sshconfig", "ssh":
		return FormatSSHConfig, nil
	}
	return "", fmt.Errorf("unknown format %q (want json or ssh-config)", s)
}

// ImportFile reads entries from path. Entries are not checked against each
// other; the caller merges them into a registry and decides on conflicts.
func ImportFile(path string, format Format, defaultUser string) (ImportResult, error) {
	if format == FormatSSHConfig {
		return ParseSSHConfig(path, defaultUser)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	entries, err := Decode(data)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse %s: %w", path, err)
	}
	var res ImportResult
	for _, e := range entries {
		e = e.WithDefaults()
		if err := model.Validate(e); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("entry %q: %v, skipped", e.Name, err))
			continue
		}
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

// Export writes entries to w in the given format.
func Export(w io.Writer, format Format, entries []model.ServerEntry) error {
	if format == FormatSSHConfig {
		return WriteSSHConfig(w, entries)
	}
	data, err := Encode(entries)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteSSHConfig writes one Host block per entry, separated by blank lines.
func WriteSSHConfig(w io.Writer, entries []model.ServerEntry) error {
	var b strings.Builder
	b.WriteString("# Exported by hop\n")
	for _, e := range entries {
		b.WriteString("\n")
		b.WriteString(FormatHostBlock(e))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatHostBlock renders e as an OpenSSH Host block. The alias becomes a
// second Host pattern. HostName is omitted when it equals the name and
// Port when it is the default.
func FormatHostBlock(e model.ServerEntry) string {
	var b strings.Builder
	b.WriteString("Host " + e.Name)
	if e.Alias != "" && e.Alias != e.Name {
		b.WriteString(" " + e.Alias)
	}
	b.WriteString("\n")
	if e.Host != "" && e.Host != e.Name {
		fmt.Fprintf(&b, "  HostName %s\n", e.Host)
	}
	if e.User != "" {
		fmt.Fprintf(&b, "  User %s\n", e.User)
	}
	if p := e.EffectivePort(); p != util.DefaultSSHPort {
		fmt.Fprintf(&b, "  Port %d\n", p)
	}
	return b.String()
}
