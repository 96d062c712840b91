package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/util"
)

const maxIncludeDepth = 16

// ImportResult is what an import produced. Entries that could not be
// turned into valid server entries are reported in Warnings instead.
type ImportResult struct {
	Entries  []model.ServerEntry
	Warnings []string
}

type hostBlock struct {
	patterns []string
	options  map[string]string
}

// ParseSSHConfig reads an OpenSSH client config, following Include lines,
// and returns one entry per Host block that names a concrete host. The
// first concrete pattern becomes the entry name and the second, if any,
// its alias. Options come from every matching block with the first value
// winning, as ssh itself does. defaultUser fills entries without a User.
func ParseSSHConfig(path, defaultUser string) (ImportResult, error) {
	var res ImportResult
	blocks, err := readSSHConfig(path, map[string]bool{}, 0, &res.Warnings)
	if err != nil {
		return ImportResult{}, err
	}

	for _, b := range blocks {
		concrete := concretePatterns(b.patterns)
		if len(concrete) == 0 {
			continue
		}
		if len(concrete) > 2 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Host %s: only the first two names are kept", strings.Join(concrete, " ")))
		}
		name := concrete[0]
		entry := model.ServerEntry{Name: name, Host: name, User: defaultUser, Port: util.DefaultSSHPort}
		if len(concrete) > 1 {
			entry.Alias = concrete[1]
		}

		opts := effectiveOptions(name, blocks)
		if v := opts["hostname"]; v != "" {
			entry.Host = v
		}
		if v := opts["user"]; v != "" {
			entry.User = v
		}
		if v := opts["port"]; v != "" {
			p, err := strconv.Atoi(v)
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("Host %s: bad port %q, skipped", name, v))
				continue
			}
			entry.Port = p
		}

		if err := model.Validate(entry); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Host %s: %v, skipped", name, err))
			continue
		}
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}

func readSSHConfig(path string, visited map[string]bool, depth int, warnings *[]string) ([]hostBlock, error) {
	if depth > maxIncludeDepth {
		return nil, fmt.Errorf("include depth exceeded at %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if visited[abs] {
		*warnings = append(*warnings, fmt.Sprintf("include cycle skipped: %s", abs))
		return nil, nil
	}
	visited[abs] = true

	f, err := os.Open(abs)
	if err != nil {
		if depth > 0 && errors.Is(err, fs.ErrNotExist) {
			*warnings = append(*warnings, fmt.Sprintf("included file not found: %s", abs))
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", abs, err)
	}
	defer f.Close()

	var blocks []hostBlock
	// Options before the first Host line apply to every host.
	cur := hostBlock{patterns: []string{"*"}, options: map[string]string{}}
	declared := false
	flush := func() {
		if declared || len(cur.options) > 0 {
			blocks = append(blocks, cur)
		}
	}

	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := stripComment(strings.TrimSpace(sc.Text()))
		if line == "" {
			continue
		}
		key, value, ok := splitOption(line)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("%s:%d unreadable line", abs, n))
			continue
		}

		switch key = strings.ToLower(key); key {
		case "host":
			flush()
			cur = hostBlock{patterns: strings.Fields(value), options: map[string]string{}}
			declared = true
		case "match":
			// Match conditions cannot be evaluated offline; ignore the block.
			flush()
			cur = hostBlock{patterns: []string{"!*"}, options: map[string]string{}}
			declared = true
		case "include":
			for _, pattern := range strings.Fields(value) {
				included, err := expandInclude(abs, pattern)
				if err != nil {
					*warnings = append(*warnings, fmt.Sprintf("%s:%d %v", abs, n, err))
					continue
				}
				for _, inc := range included {
					child, err := readSSHConfig(inc, visited, depth+1, warnings)
					if err != nil {
						*warnings = append(*warnings, fmt.Sprintf("include %s: %v", inc, err))
						continue
					}
					blocks = append(blocks, child...)
				}
			}
		default:
			if _, set := cur.options[key]; !set {
				cur.options[key] = unquote(value)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	flush()
	return blocks, nil
}

func expandInclude(from, pattern string) ([]string, error) {
	pattern = expandHome(pattern)
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(filepath.Dir(from), pattern)
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad include pattern %q", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

func effectiveOptions(name string, blocks []hostBlock) map[string]string {
	out := map[string]string{}
	for _, b := range blocks {
		if !hostMatches(name, b.patterns) {
			continue
		}
		for k, v := range b.options {
			if _, set := out[k]; !set {
				out[k] = v
			}
		}
	}
	return out
}

// hostMatches applies ssh's pattern-list rules: any negated match wins.
func hostMatches(name string, patterns []string) bool {
	matched := false
	for _, p := range patterns {
		negated := strings.HasPrefix(p, "!")
		ok, err := filepath.Match(strings.TrimPrefix(p, "!"), name)
		if err != nil || !ok {
			continue
		}
		if negated {
			return false
		}
		matched = true
	}
	return matched
}

func concretePatterns(patterns []string) []string {
	var out []string
	for _, p := range patterns {
		if p == "" || strings.HasPrefix(p, "!") || strings.ContainsAny(p, "*?") {
			continue
		}
		out = append(out, p)
	}
	return out
}

// splitOption accepts both "Key value" and "Key=value".
func splitOption(line string) (key, value string, ok bool) {
	i := strings.IndexAny(line, " \t=")
	if i <= 0 {
		return "", "", false
	}
	key = line[:i]
	value = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line[i:]), "="))
	return key, value, value != ""
}

func stripComment(line string) string {
	quoted := false
	for i, r := range line {
		switch r {
		case '"':
			quoted = !quoted
		case '#':
			if !quoted {
				return strings.TrimSpace(line[:i])
			}
		}
	}
	return line
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
