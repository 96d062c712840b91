package ui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpemreelmas/hop-cli/internal/config"
	"github.com/alpemreelmas/hop-cli/internal/events"
	"github.com/alpemreelmas/hop-cli/internal/history"
	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/registry"
	"github.com/alpemreelmas/hop-cli/internal/sshclient"
)

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func testDashboard(t *testing.T, entries ...model.ServerEntry) (dashboard, Deps) {
	t.Helper()
	dir := t.TempDir()
	deps := Deps{
		Store:      config.NewStore(filepath.Join(dir, "servers.json")),
		Dispatcher: sshclient.New(sshclient.Options{}),
		History:    history.NewStore(filepath.Join(dir, "history.json")),
		Journal:    events.NewStore(filepath.Join(dir, "activity.jsonl")),
	}
	reg, err := registry.New(entries...)
	require.NoError(t, err)
	return newDashboard(deps, reg), deps
}

func send(m dashboard, msgs ...tea.Msg) dashboard {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(dashboard)
	}
	return m
}

var (
	dbEntry  = model.ServerEntry{Name: "db", Alias: "pg", User: "u", Host: "10.0.0.1", Port: 22}
	apiEntry = model.ServerEntry{Name: "api", User: "u", Host: "api.internal", Port: 22}
	webEntry = model.ServerEntry{Name: "web", User: "u", Host: "web.internal", Port: 2222}
)

func TestDashboardNavigationAndFilter(t *testing.T) {
	m, _ := testDashboard(t, dbEntry, apiEntry, webEntry)
	assert.Len(t, m.filtered, 3)

	m = send(m, keys("j"), keys("j"), keys("j"))
	assert.Equal(t, 2, m.sel, "selection stops at the last entry")

	m = send(m, keys("/"), keys("p"), keys("g"), tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, m.filtered, 1, "alias text is searchable")
	assert.Equal(t, "db", m.filtered[0].Name)
	assert.Equal(t, 0, m.sel)

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, m.filtered, 3)

	m = send(m, keys("/"), keys("x"), keys("q"), tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "x", m.filter, "typing q in filter mode must not quit")
	assert.Contains(t, m.View(), "no servers matched")
}

func TestDashboardRecentSort(t *testing.T) {
	m, deps := testDashboard(t, dbEntry, apiEntry, webEntry)
	require.NoError(t, deps.History.Touch("web"))

	m = send(m, keys("s"))
	require.True(t, m.recentFirst)
	assert.Equal(t, "web", m.filtered[0].Name)

	m = send(m, keys("s"))
	assert.Equal(t, "db", m.filtered[0].Name)
}

func TestDashboardAddFlowPersists(t *testing.T) {
	m, deps := testDashboard(t, dbEntry)

	m = send(m, keys("a"))
	require.NotNil(t, m.form)
	fillForm(m.form, "cache", "", "redis", "10.0.0.9:6022")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Nil(t, m.form, "form closes after a successful add")
	assert.Len(t, m.filtered, 2)

	reg, err := deps.Store.Load()
	require.NoError(t, err)
	got, err := reg.Resolve("cache")
	require.NoError(t, err)
	assert.Equal(t, 6022, got.Port)

	evts, err := deps.Journal.Read(events.Query{Type: events.TypeAdd})
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, "cache", evts[0].Server)
}

func TestDashboardAddRejectsDuplicate(t *testing.T) {
	m, deps := testDashboard(t, dbEntry)

	m = send(m, keys("a"))
	fillForm(m.form, "other", "db", "u", "h")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, m.form)
	assert.Contains(t, m.form.errMsg, "alias")
	assert.False(t, deps.Store.Exists(), "nothing is written on a rejected add")

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.form)
}

func TestDashboardRecordsSession(t *testing.T) {
	m, deps := testDashboard(t, dbEntry)
	spec := deps.Dispatcher.Command(dbEntry)

	m = send(m, sessionDoneMsg{entry: dbEntry, spec: spec, status: 3})
	assert.Contains(t, m.status, "status 3")

	lu, err := deps.History.LastUsed()
	require.NoError(t, err)
	assert.NotZero(t, lu["db"])

	evts, err := deps.Journal.Read(events.Query{Server: "db"})
	require.NoError(t, err)
	require.Len(t, evts, 1)
	require.NotNil(t, evts[0].ExitCode)
	assert.Equal(t, 3, *evts[0].ExitCode)
	assert.Equal(t, "ssh -p 22 u@10.0.0.1", evts[0].Command)
}

func TestDashboardViewShowsCommand(t *testing.T) {
	m, _ := testDashboard(t, webEntry)
	view := m.View()
	assert.Contains(t, view, "ssh -p 2222 u@web.internal")
	assert.True(t, strings.Contains(view, "Last used: never"))

	empty, _ := testDashboard(t)
	assert.Contains(t, empty.View(), "press a to add one")
}

func TestDashboardQuit(t *testing.T) {
	m, _ := testDashboard(t, dbEntry)
	_, cmd := m.Update(keys("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
