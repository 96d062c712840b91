// Package ui is the interactive picker shown when hop runs without a verb.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alpemreelmas/hop-cli/internal/config"
	"github.com/alpemreelmas/hop-cli/internal/events"
	"github.com/alpemreelmas/hop-cli/internal/history"
	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/registry"
	"github.com/alpemreelmas/hop-cli/internal/sshclient"
	"github.com/alpemreelmas/hop-cli/internal/util"
)

// Deps wires the dashboard to hop's stores and dispatcher.
type Deps struct {
	Store       *config.Store
	Dispatcher  *sshclient.Dispatcher
	History     *history.Store
	Journal     *events.Store
	DefaultUser string
	ShowHelp    bool
}

type statusMsg string

type sessionDoneMsg struct {
	entry  model.ServerEntry
	spec   sshclient.CommandSpec
	status int
	err    error
}

type dashboard struct {
	deps        Deps
	reg         *registry.Registry
	lastUsed    map[string]int64
	entries     []model.ServerEntry
	filtered    []model.ServerEntry
	sel         int
	filter      string
	filterMode  bool
	recentFirst bool
	showHelp    bool
	form        *addForm
	status      string
	width       int
}

func newDashboard(deps Deps, reg *registry.Registry) dashboard {
	m := dashboard{deps: deps, reg: reg, showHelp: deps.ShowHelp}
	m.refresh()
	m.status = "Ready. Enter connects, a adds a server, / filters."
	return m
}

// refresh rebuilds the visible list from the registry and history.
func (m *dashboard) refresh() {
	m.lastUsed = map[string]int64{}
	if m.deps.History != nil {
		if lu, err := m.deps.History.LastUsed(); err == nil {
			m.lastUsed = lu
		}
	}
	m.entries = m.reg.List()
	if m.recentFirst {
		m.entries = history.SortRecent(m.entries, m.lastUsed)
	}
	m.applyFilter()
}

func (m *dashboard) applyFilter() {
	f := strings.ToLower(strings.TrimSpace(m.filter))
	if f == "" {
		m.filtered = append([]model.ServerEntry(nil), m.entries...)
	} else {
		m.filtered = nil
		for _, e := range m.entries {
			hay := strings.ToLower(e.Name + " " + e.Alias + " " + e.Target())
			if strings.Contains(hay, f) {
				m.filtered = append(m.filtered, e)
			}
		}
	}
	if m.sel >= len(m.filtered) {
		m.sel = len(m.filtered) - 1
	}
	if m.sel < 0 {
		m.sel = 0
	}
}

func (m dashboard) selected() (model.ServerEntry, bool) {
	if len(m.filtered) == 0 {
		return model.ServerEntry{}, false
	}
	return m.filtered[m.sel], true
}

func (m dashboard) Init() tea.Cmd { return nil }

func (m dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case sessionDoneMsg:
		m.status = m.recordSession(msg)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.filterMode {
			return m.updateFilter(msg), nil
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m dashboard) updateFilter(msg tea.KeyMsg) dashboard {
	switch msg.String() {
	case "enter", "esc":
		m.filterMode = false
	case "backspace":
		if r := []rune(m.filter); len(r) > 0 {
			m.filter = string(r[:len(r)-1])
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.filter += string(msg.Runes)
		}
	}
	m.applyFilter()
	return m
}

func (m dashboard) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		if m.sel < len(m.filtered)-1 {
			m.sel++
		}
	case "k", "up":
		if m.sel > 0 {
			m.sel--
		}
	case "/":
		m.filterMode = true
		m.status = "Filter mode: type and press Enter"
	case "esc":
		m.filter = ""
		m.applyFilter()
	case "s":
		m.recentFirst = !m.recentFirst
		m.refresh()
		if m.recentFirst {
			m.status = "Sorted by last use"
		} else {
			m.status = "Sorted by insertion order"
		}
	case "?":
		m.showHelp = !m.showHelp
	case "r":
		if err := m.reload(); err != nil {
			m.status = "reload failed: " + err.Error()
		} else {
			m.status = "Reloaded servers"
		}
	case "a":
		m.form = newAddForm(m.deps.DefaultUser)
		m.status = "Adding a server"
	case "enter":
		e, ok := m.selected()
		if !ok {
			break
		}
		return m, m.connect(e)
	}
	return m, nil
}

func (m dashboard) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.form = nil
		m.status = "Add cancelled"
		return m, nil
	}
	entry, cmd := m.form.update(msg)
	if entry == nil {
		return m, cmd
	}
	if err := m.reg.Add(*entry); err != nil {
		m.form.errMsg = err.Error()
		return m, nil
	}
	if err := m.deps.Store.Save(m.reg); err != nil {
		// keep memory and disk in step
		_, _ = m.reg.Remove(entry.Name)
		m.form.errMsg = err.Error()
		return m, nil
	}
	m.appendEvent(events.Event{Server: entry.Name, Type: events.TypeAdd, Message: "added from picker"})
	m.form = nil
	m.status = "Added " + entry.String()
	m.refresh()
	return m, nil
}

func (m *dashboard) reload() error {
	reg, err := m.deps.Store.Load()
	if err != nil {
		return err
	}
	m.reg = reg
	m.refresh()
	return nil
}

func (m dashboard) connect(e model.ServerEntry) tea.Cmd {
	spec := m.deps.Dispatcher.Command(e)
	if err := sshclient.EnsureBinary(spec.Program); err != nil {
		return func() tea.Msg { return statusMsg(err.Error()) }
	}
	cmd := m.deps.Dispatcher.Cmd(context.Background(), spec)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		status, ok := sshclient.StatusFromWait(err)
		if !ok {
			return sessionDoneMsg{entry: e, spec: spec, status: -1, err: err}
		}
		return sessionDoneMsg{entry: e, spec: spec, status: status}
	})
}

// recordSession updates history and the journal after a session and
// returns the status line to show.
func (m dashboard) recordSession(msg sessionDoneMsg) string {
	if msg.err != nil {
		return fmt.Sprintf("ssh to %s failed: %v", msg.entry.Name, msg.err)
	}
	if m.deps.History != nil {
		if err := m.deps.History.Touch(msg.entry.Name); err != nil {
			slog.Warn("history update failed", "err", err)
		}
	}
	status := msg.status
	m.appendEvent(events.Event{Server: msg.entry.Name, Type: events.TypeConnect, Command: msg.spec.String(), ExitCode: &status})
	if msg.status != 0 {
		return fmt.Sprintf("ssh to %s exited with status %d", msg.entry.Name, msg.status)
	}
	return "Session with " + msg.entry.Name + " closed"
}

func (m dashboard) appendEvent(evt events.Event) {
	if m.deps.Journal == nil {
		return
	}
	if err := m.deps.Journal.Append(evt); err != nil {
		slog.Warn("activity journal write failed", "err", err)
	}
}

func (m dashboard) View() string {
	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render("hop")
	order := "insertion"
	if m.recentFirst {
		order = "recent"
	}
	subhead := fmt.Sprintf("servers=%d shown=%d order=%s", len(m.entries), len(m.filtered), order)

	left := strings.Builder{}
	for i, e := range m.filtered {
		cursor := " "
		if i == m.sel {
			cursor = ">"
		}
		left.WriteString(fmt.Sprintf("%s %-20s %-10s %s\n", cursor, e.Name, util.EmptyDash(e.Alias), e.Target()))
	}
	if len(m.filtered) == 0 {
		if len(m.entries) == 0 {
			left.WriteString("  (no servers yet, press a to add one)\n")
		} else {
			left.WriteString("  (no servers matched)\n")
		}
	}

	detail := strings.Builder{}
	if e, ok := m.selected(); ok {
		detail.WriteString(fmt.Sprintf("Name: %s\nAlias: %s\nUser: %s\nHost: %s\nPort: %d\n", e.Name, util.EmptyDash(e.Alias), e.User, e.Host, e.EffectivePort()))
		detail.WriteString(fmt.Sprintf("Last used: %s\n", lastUsedLabel(m.lastUsed[e.Name])))
		detail.WriteString("\nCommand:\n  " + m.deps.Dispatcher.Command(e).String() + "\n")
	} else {
		detail.WriteString("Pick a server to see its details.\n")
	}

	filterLine := fmt.Sprintf("Filter: %s", m.filter)
	if m.filterMode {
		filterLine += " (typing...)"
	}

	var body string
	if m.form != nil {
		body = m.renderPanel("Add Server", m.form.view(), m.effectiveWidth(), lipgloss.Color("214"))
	} else {
		body = m.renderMainPanels(left.String(), detail.String())
	}
	help := ""
	if m.showHelp {
		help = m.renderPanel("Help", helpBlock(), m.effectiveWidth(), lipgloss.Color("244"))
	}
	status := m.renderPanel("Status", m.status, m.effectiveWidth(), lipgloss.Color("205"))
	return lipgloss.JoinVertical(
		lipgloss.Left,
		head,
		subhead,
		filterLine,
		"Keys: Enter connect | a add | / filter | s sort | r reload | ? help | q quit",
		body,
		help,
		status,
	)
}

// Run loads the registry and shows the picker until the user quits.
func Run(deps Deps) error {
	reg, err := deps.Store.Load()
	if err != nil {
		return err
	}
	p := tea.NewProgram(newDashboard(deps, reg), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func lastUsedLabel(unix int64) string {
	if unix <= 0 {
		return "never"
	}
	return time.Unix(unix, 0).Local().Format("2006-01-02 15:04")
}

func helpBlock() string {
	return strings.Join([]string{
		"  Navigation: j/k or arrow keys move selection.",
		"  Filtering: press /, type name/alias/host text, then Enter. Esc clears.",
		"  Connect: press Enter; the picker returns when the session ends.",
		"  Add: press a, fill the form, Enter saves.",
		"  Sort: press s to toggle last-used order.",
		"  Quit: press q (or Ctrl+C).",
	}, "\n")
}

func (m dashboard) renderMainPanels(listPanel, detailsPanel string) string {
	width := m.effectiveWidth()
	if width < 96 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderPanel("Servers", listPanel, width, lipgloss.Color("39")),
			m.renderPanel("Details", detailsPanel, width, lipgloss.Color("69")),
		)
	}
	leftWidth := width / 2
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderPanel("Servers", listPanel, leftWidth, lipgloss.Color("39")),
		m.renderPanel("Details", detailsPanel, width-leftWidth, lipgloss.Color("69")),
	)
}

func (m dashboard) effectiveWidth() int {
	if m.width <= 0 {
		return 100
	}
	return m.width
}

func (m dashboard) renderPanel(title, body string, width int, accent lipgloss.Color) string {
	if width < 24 {
		width = 24
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title)
	panel := strings.TrimSpace(header + "\n" + strings.TrimSuffix(body, "\n"))
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(panel)
}
