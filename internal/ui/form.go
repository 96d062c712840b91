package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/util"
)

// Field indices for the add form.
const (
	fieldName = iota
	fieldAlias
	fieldUser
	fieldHost
	fieldPort
	fieldCount
)

// addForm collects a new server entry.
type addForm struct {
	fields   []textinput.Model
	focusIdx int
	errMsg   string
}

func newAddForm(defaultUser string) *addForm {
	placeholders := []string{
		"prod-db (required)",
		"db1 (optional)",
		"deploy (required)",
		"192.168.1.20 or user@host:port (required)",
		"22 (default)",
	}
	limits := []int{64, 64, 64, 256, 5}

	f := &addForm{fields: make([]textinput.Model, fieldCount)}
	for i := range f.fields {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 40
		f.fields[i] = ti
	}
	f.fields[fieldUser].SetValue(defaultUser)
	f.fields[fieldName].Focus()
	return f
}

// update returns a non-nil entry once the user submits a form that parses.
// Registry rules (uniqueness) are checked by the caller.
func (f *addForm) update(msg tea.KeyMsg) (*model.ServerEntry, tea.Cmd) {
	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		f.fields[f.focusIdx].Blur()
		if s := msg.String(); s == "tab" || s == "down" {
			f.focusIdx = (f.focusIdx + 1) % fieldCount
		} else {
			f.focusIdx = (f.focusIdx - 1 + fieldCount) % fieldCount
		}
		f.fields[f.focusIdx].Focus()
		return nil, f.fields[f.focusIdx].Cursor.BlinkCmd()
	case "enter":
		entry, err := f.entry()
		if err != nil {
			f.errMsg = err.Error()
			return nil, nil
		}
		return &entry, nil
	default:
		var cmd tea.Cmd
		f.fields[f.focusIdx], cmd = f.fields[f.focusIdx].Update(msg)
		f.errMsg = ""
		return nil, cmd
	}
}

func (f *addForm) value(i int) string {
	return strings.TrimSpace(f.fields[i].Value())
}

// entry builds a ServerEntry from the inputs. The host field also accepts
// user@host:port; explicit user and port fields take precedence.
func (f *addForm) entry() (model.ServerEntry, error) {
	e := model.ServerEntry{
		Name:  f.value(fieldName),
		Alias: f.value(fieldAlias),
		User:  f.value(fieldUser),
	}
	if e.Name == "" {
		return model.ServerEntry{}, fmt.Errorf("name is required")
	}
	if f.value(fieldHost) == "" {
		return model.ServerEntry{}, fmt.Errorf("host is required")
	}
	user, host, port, err := model.ParseTarget(f.value(fieldHost))
	if err != nil {
		return model.ServerEntry{}, err
	}
	e.Host = host
	if e.User == "" {
		e.User = user
	}
	e.Port = port
	if p := f.value(fieldPort); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return model.ServerEntry{}, fmt.Errorf("port must be a number")
		}
		if err := util.ValidatePort(n); err != nil {
			return model.ServerEntry{}, err
		}
		e.Port = n
	}
	e = e.WithDefaults()
	if err := model.Validate(e); err != nil {
		return model.ServerEntry{}, err
	}
	return e, nil
}

func (f *addForm) view() string {
	labels := []string{"Name:", "Alias:", "User:", "Host:", "Port:"}

	var b strings.Builder
	for i, label := range labels {
		cursor := "  "
		if i == f.focusIdx {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-7s %s\n", cursor, label, f.fields[i].View()))
	}
	if f.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render("Error: "+f.errMsg) + "\n")
	}
	b.WriteString("\nTab/Shift-Tab navigate | Enter save | Esc cancel")
	return b.String()
}

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
