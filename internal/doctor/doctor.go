package doctor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alpemreelmas/hop-cli/internal/config"
	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/security"
	"github.com/alpemreelmas/hop-cli/internal/sshclient"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Issue struct {
	Severity       Severity `json:"severity"`
	Check          string   `json:"check"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type Report struct {
	ServersFile string  `json:"servers_file"`
	Servers     int     `json:"servers"`
	Issues      []Issue `json:"issues"`
}

// Inputs is everything doctor looks at.
type Inputs struct {
	SSHProgram string
	SCPProgram string
	Store      *config.Store
	Audit      security.Inputs
}

// Run executes local diagnostics for hop.
func Run(in Inputs) Report {
	issues := []Issue{}
	report := Report{}

	if err := sshclient.EnsureBinary(in.SSHProgram); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "ssh-binary",
			Target:         in.SSHProgram,
			Message:        err.Error(),
			Recommendation: "install the OpenSSH client or set ssh.program in config.yaml",
		})
	}
	if err := sshclient.EnsureBinary(in.SCPProgram); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityMedium,
			Check:          "scp-binary",
			Target:         in.SCPProgram,
			Message:        err.Error(),
			Recommendation: "install scp or set scp.program in config.yaml; `hop copy` needs it",
		})
	}

	if in.Store != nil {
		report.ServersFile = in.Store.Path()
		reg, err := in.Store.Load()
		if err != nil {
			issues = append(issues, Issue{
				Severity:       SeverityHigh,
				Check:          "servers-file",
				Target:         in.Store.Path(),
				Message:        err.Error(),
				Recommendation: "fix or move the servers file; hop will not modify it until it parses",
			})
		} else {
			report.Servers = reg.Len()
			issues = append(issues, duplicateTargetIssues(reg.List())...)
		}
	}

	for _, f := range security.Run(in.Audit).Findings {
		issues = append(issues, Issue{
			Severity:       Severity(f.Severity),
			Check:          "security-audit",
			Target:         f.Target,
			Message:        f.Message,
			Recommendation: f.Recommendation,
		})
	}

	sort.Slice(issues, func(i, j int) bool {
		ri := severityRank(issues[i].Severity)
		rj := severityRank(issues[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if issues[i].Check != issues[j].Check {
			return issues[i].Check < issues[j].Check
		}
		if issues[i].Target != issues[j].Target {
			return issues[i].Target < issues[j].Target
		}
		return issues[i].Message < issues[j].Message
	})
	report.Issues = issues
	return report
}

// HasHigh reports whether any issue is high severity.
func (r Report) HasHigh() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

func duplicateTargetIssues(entries []model.ServerEntry) []Issue {
	seen := map[string][]string{}
	var order []string
	for _, e := range entries {
		key := fmt.Sprintf("%s:%d", e.Target(), e.EffectivePort())
		if _, ok := seen[key]; !ok {
			order = append(order, key)
		}
		seen[key] = append(seen[key], e.Name)
	}
	var issues []Issue
	for _, target := range order {
		names := seen[target]
		if len(names) < 2 {
			continue
		}
		issues = append(issues, Issue{
			Severity:       SeverityLow,
			Check:          "duplicate-target",
			Target:         target,
			Message:        fmt.Sprintf("bookmarked %d times: %s", len(names), strings.Join(names, ", ")),
			Recommendation: "remove the extra entries or give one of them an alias instead",
		})
	}
	return issues
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
