// Package security inspects the local file and ssh option posture hop
// relies on.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Finding struct {
	Severity       Severity `json:"severity"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type AuditReport struct {
	Findings []Finding `json:"findings"`
}

func (r AuditReport) HasHigh() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// Inputs names what to audit. Empty paths are skipped.
type Inputs struct {
	ConfigDir    string
	ServersFile  string
	SettingsFile string
	SSHDir       string
	// SSHExtraArgs is the parsed ssh.extra_args setting.
	SSHExtraArgs []string
}

// DefaultSSHDir returns ~/.ssh, or "" when the home dir is unknown.
func DefaultSSHDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh")
}

// Run checks file permissions and risky ssh options.
func Run(in Inputs) AuditReport {
	var findings []Finding

	if in.SSHDir != "" {
		checkPathPerm(&findings, in.SSHDir, 0o700, false)
		checkPathPerm(&findings, filepath.Join(in.SSHDir, "config"), 0o600, true)
	}
	if in.ConfigDir != "" {
		checkPathPerm(&findings, in.ConfigDir, 0o700, false)
	}
	if in.ServersFile != "" {
		checkPathPerm(&findings, in.ServersFile, 0o600, true)
	}
	if in.SettingsFile != "" {
		checkPathPerm(&findings, in.SettingsFile, 0o600, true)
	}
	checkSSHOptions(&findings, in.SSHExtraArgs)

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return severityRank(findings[i].Severity) > severityRank(findings[j].Severity)
		}
		if findings[i].Target != findings[j].Target {
			return findings[i].Target < findings[j].Target
		}
		return findings[i].Message < findings[j].Message
	})
	return AuditReport{Findings: findings}
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

func checkPathPerm(findings *[]Finding, path string, max os.FileMode, isFile bool) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		*findings = append(*findings, Finding{
			Severity:       SeverityLow,
			Target:         path,
			Message:        fmt.Sprintf("unable to inspect permissions: %v", err),
			Recommendation: "verify path and permissions manually",
		})
		return
	}
	// Any bit outside max is too broad, e.g. 0o640 against 0o600.
	if mode := st.Mode().Perm(); mode&^max != 0 {
		kind := "directory"
		if isFile {
			kind = "file"
		}
		*findings = append(*findings, Finding{
			Severity:       SeverityMedium,
			Target:         path,
			Message:        fmt.Sprintf("%s permissions are too broad (%#o)", kind, mode),
			Recommendation: fmt.Sprintf("chmod %o %s", max, path),
		})
	}
}

type riskyOption struct {
	value    string
	severity Severity
	message  string
}

var riskyOptions = map[string]riskyOption{
	"stricthostkeychecking": {"no", SeverityHigh, "host key checking is disabled"},
	"userknownhostsfile":    {"/dev/null", SeverityMedium, "known hosts are discarded"},
	"forwardagent":          {"yes", SeverityLow, "agent forwarding is enabled for every server"},
}

func checkSSHOptions(findings *[]Finding, args []string) {
	for _, opt := range sshOptions(args) {
		key, value, ok := splitOption(opt)
		if !ok {
			continue
		}
		risk, known := riskyOptions[strings.ToLower(key)]
		if !known || !strings.EqualFold(value, risk.value) {
			continue
		}
		*findings = append(*findings, Finding{
			Severity:       risk.severity,
			Target:         "ssh.extra_args",
			Message:        fmt.Sprintf("%s (%s)", risk.message, opt),
			Recommendation: fmt.Sprintf("remove -o %s from ssh.extra_args", key),
		})
	}
	for _, a := range args {
		if a == "-A" {
			risk := riskyOptions["forwardagent"]
			*findings = append(*findings, Finding{
				Severity:       risk.severity,
				Target:         "ssh.extra_args",
				Message:        risk.message + " (-A)",
				Recommendation: "remove -A from ssh.extra_args",
			})
		}
	}
}

// sshOptions collects the values of "-o X" and "-oX" arguments.
func sshOptions(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		switch a := args[i]; {
		case a == "-o" && i+1 < len(args):
			out = append(out, args[i+1])
			i++
		case strings.HasPrefix(a, "-o") && len(a) > 2:
			out = append(out, a[2:])
		}
	}
	return out
}

func splitOption(opt string) (key, value string, ok bool) {
	opt = strings.TrimSpace(opt)
	i := strings.IndexAny(opt, "= \t")
	if i <= 0 {
		return "", "", false
	}
	return opt[:i], strings.TrimSpace(strings.TrimLeft(opt[i:], "= \t")), true
}
