package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpemreelmas/hop-cli/internal/appconfig"
	"github.com/alpemreelmas/hop-cli/internal/events"
	"github.com/alpemreelmas/hop-cli/internal/model"
	"github.com/alpemreelmas/hop-cli/internal/sshclient"
)

// setupHome points every hop path at a fresh temp dir and returns the
// servers file path.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv(appconfig.ServersFileEnv, "")
	return filepath.Join(home, ".config", "hop", "servers.json")
}

// fakeSSH puts ssh and scp scripts on PATH that record their argv in the
// returned file and exit with $HOP_TEST_STATUS.
func fakeSSH(t *testing.T) string {
	t.Helper()
	bin := t.TempDir()
	argsFile := filepath.Join(t.TempDir(), "args")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > \"$HOP_TEST_ARGS\"\nexit ${HOP_TEST_STATUS:-0}\n"
	for _, name := range []string{"ssh", "scp"} {
		require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte(script), 0o755))
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("HOP_TEST_ARGS", argsFile)
	t.Setenv("HOP_TEST_STATUS", "0")
	return argsFile
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := run(t, args...)
	require.NoError(t, err, "hop %s\nstderr: %s", strings.Join(args, " "), stderr)
	return out
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Fields(string(b))
}

func TestAddThenList(t *testing.T) {
	setupHome(t)
	mustRun(t, "add", "prod-db", "forge@192.168.1.20", "--alias", "db1")
	mustRun(t, "add", "web", "--host", "10.0.0.5", "--user", "deploy", "--port", "2222")

	out := mustRun(t, "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "prod-db")
	assert.Contains(t, lines[1], "db1")
	assert.Contains(t, lines[2], "2222")

	out = mustRun(t, "ls", "--json")
	var entries []model.ServerEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Equal(t, []model.ServerEntry{
		{Name: "prod-db", Alias: "db1", User: "forge", Host: "192.168.1.20", Port: 22},
		{Name: "web", User: "deploy", Host: "10.0.0.5", Port: 2222},
	}, entries)

	out = mustRun(t, "list", "--verbose")
	assert.Contains(t, out, "ssh -p 22 forge@192.168.1.20")
}

func TestListEmpty(t *testing.T) {
	setupHome(t)
	assert.Contains(t, mustRun(t, "list"), "No servers configured")
	assert.Equal(t, "[]\n", mustRun(t, "list", "--json"))
}

func TestAddErrorsMapToExitCodes(t *testing.T) {
	setupHome(t)
	mustRun(t, "add", "prod-db", "forge@192.168.1.20", "--alias", "db1")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"duplicate name", []string{"add", "prod-db", "root@10.0.0.1"}, ExitDuplicateName},
		{"name equals alias", []string{"add", "db1", "root@10.0.0.1"}, ExitDuplicateName},
		{"duplicate alias", []string{"add", "other", "root@10.0.0.1", "--alias", "db1"}, ExitDupAlias},
		{"missing host", []string{"add", "nohost"}, ExitValidation},
		{"port zero", []string{"add", "p0", "root@10.0.0.1", "--port", "0"}, ExitValidation},
		{"bad name", []string{"add", "bad name", "root@10.0.0.1"}, ExitValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, ExitCode(err))
		})
	}

	var entries []model.ServerEntry
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "list", "--json")), &entries))
	assert.Len(t, entries, 1, "failed adds must not write")
}

func TestConnectDispatchesSSH(t *testing.T) {
	setupHome(t)
	argsFile := fakeSSH(t)
	mustRun(t, "add", "prod-db", "forge@192.168.1.20", "--alias", "db1")

	mustRun(t, "connect", "db1")
	assert.Equal(t, []string{"-p", "22", "forge@192.168.1.20"}, readArgs(t, argsFile))

	out := mustRun(t, "activity", "--json", "--server", "prod-db")
	var evts []events.Event
	require.NoError(t, json.Unmarshal([]byte(out), &evts))
	require.NotEmpty(t, evts)
	last := evts[len(evts)-1]
	assert.Equal(t, events.TypeConnect, last.Type)
	require.NotNil(t, last.ExitCode)
	assert.Equal(t, 0, *last.ExitCode)
}

func TestConnectPassesChildStatusThrough(t *testing.T) {
	setupHome(t)
	fakeSSH(t)
	t.Setenv("HOP_TEST_STATUS", "3")
	mustRun(t, "add", "web", "u@h")

	_, _, err := run(t, "connect", "web")
	var exitErr *sshclient.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, ExitCode(err))
}

func TestConnectDryRun(t *testing.T) {
	setupHome(t)
	mustRun(t, "add", "web", "deploy@10.0.0.5:2222")
	assert.Equal(t, "ssh -p 2222 deploy@10.0.0.5\n", mustRun(t, "connect", "web", "--dry-run"))
}

func TestConnectNotFoundSuggests(t *testing.T) {
	setupHome(t)
	mustRun(t, "add", "prod-db", "forge@192.168.1.20")

	_, _, err := run(t, "connect", "prod")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
	assert.Contains(t, err.Error(), "prod-db")
}

func TestConnectMissingSSH(t *testing.T) {
	setupHome(t)
	mustRun(t, "add", "web", "u@h")
	t.Setenv("PATH", t.TempDir())

	_, _, err := run(t, "connect", "web")
	require.Error(t, err)
	assert.Equal(t, ExitSpawn, ExitCode(err))
}

func TestCopyFromServer(t *testing.T) {
	setupHome(t)
	argsFile := fakeSSH(t)
	mustRun(t, "add", "web", "deploy@10.0.0.5:2222")

	mustRun(t, "copy", "web", "/var/log/syslog", "./syslog", "--from")
	assert.Equal(t, []string{"-P", "2222", "deploy@10.0.0.5:/var/log/syslog", "./syslog"}, readArgs(t, argsFile))
}

func TestEditRenameAndRemove(t *testing.T) {
	servers := setupHome(t)
	mustRun(t, "add", "prod-db", "forge@192.168.1.20", "--alias", "db1")

	before, err := os.ReadFile(servers)
	require.NoError(t, err)
	_, stderr, err := run(t, "edit", "db1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No changes specified")
	after, err := os.ReadFile(servers)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	mustRun(t, "edit", "db1", "--name", "primary", "--port", "2200")
	out := mustRun(t, "connect", "primary", "--dry-run")
	assert.Equal(t, "ssh -p 2200 forge@192.168.1.20\n", out)

	mustRun(t, "edit", "primary", "--clear-alias")
	_, _, err = run(t, "connect", "db1", "--dry-run")
	assert.Equal(t, ExitNotFound, ExitCode(err))

	mustRun(t, "rm", "primary")
	assert.Contains(t, mustRun(t, "list"), "No servers configured")

	_, _, err = run(t, "remove", "primary")
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestListRecentOrdering(t *testing.T) {
	setupHome(t)
	fakeSSH(t)
	mustRun(t, "add", "api", "u@10.0.0.1")
	mustRun(t, "add", "db", "u@10.0.0.2")
	mustRun(t, "connect", "db")

	lines := strings.Split(strings.TrimSpace(mustRun(t, "list", "--recent")), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "db"), "expected db first after header, got: %s", lines[1])
}

func TestMalformedServersFile(t *testing.T) {
	servers := setupHome(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(servers), 0o700))
	require.NoError(t, os.WriteFile(servers, []byte("{not json"), 0o600))

	_, _, err := run(t, "list")
	assert.Equal(t, ExitMalformed, ExitCode(err))

	dup := `{"version":1,"servers":[{"name":"a","user":"u","host":"h","port":22},{"name":"a","user":"u","host":"h","port":22}]}`
	require.NoError(t, os.WriteFile(servers, []byte(dup), 0o600))
	_, _, err = run(t, "list")
	assert.Equal(t, ExitMalformed, ExitCode(err))
}

func TestFileFlagAndEnv(t *testing.T) {
	setupHome(t)
	custom := filepath.Join(t.TempDir(), "mine.json")
	mustRun(t, "--file", custom, "add", "web", "u@h")
	_, err := os.Stat(custom)
	require.NoError(t, err)

	t.Setenv(appconfig.ServersFileEnv, custom)
	assert.Equal(t, custom+"\n", mustRun(t, "config", "--path"))
	assert.Contains(t, mustRun(t, "list"), "web")
}

func TestExportImport(t *testing.T) {
	setupHome(t)
	mustRun(t, "add", "prod-db", "forge@192.168.1.20", "--alias", "db1")
	mustRun(t, "add", "web", "deploy@10.0.0.5:2222")

	out := mustRun(t, "export", "-", "--format", "ssh-config")
	assert.Contains(t, out, "Host prod-db db1\n")
	assert.Contains(t, out, "  Port 2222\n")

	backup := filepath.Join(t.TempDir(), "backup.json")
	mustRun(t, "export", backup)

	incoming := filepath.Join(t.TempDir(), "incoming.json")
	require.NoError(t, os.WriteFile(incoming, []byte(`[
  {"name":"web","user":"x","host":"1.2.3.4"},
  {"name":"cache","user":"x","host":"10.0.0.9"}
]`), 0o600))
	out, stderr, err := run(t, "import", incoming, "--merge")
	require.NoError(t, err)
	assert.Contains(t, out, "Added: 1, Skipped: 1")
	assert.Contains(t, stderr, "Skipped")

	var entries []model.ServerEntry
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "list", "--json")), &entries))
	assert.Len(t, entries, 3)

	mustRun(t, "import", backup)
	entries = nil
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "list", "--json")), &entries))
	assert.Len(t, entries, 2, "import without --merge replaces")
}

func TestConfigInit(t *testing.T) {
	servers := setupHome(t)
	assert.Contains(t, mustRun(t, "config"), "does not exist")

	mustRun(t, "config", "--init")
	_, err := os.Stat(servers)
	require.NoError(t, err)
	settings, err := appconfig.SettingsPath()
	require.NoError(t, err)
	_, err = os.Stat(settings)
	require.NoError(t, err)

	assert.Contains(t, mustRun(t, "config"), "Servers configured: 0")
}

func TestDoctorJSONOutput(t *testing.T) {
	setupHome(t)
	fakeSSH(t)
	mustRun(t, "add", "web", "u@h")

	out, _, err := run(t, "doctor", "--json")
	if err != nil {
		require.ErrorIs(t, err, errDoctorFailed)
	}
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload), out)
	assert.Contains(t, payload, "issues")
	assert.EqualValues(t, 1, payload["servers"])
}

func TestActivityText(t *testing.T) {
	setupHome(t)
	assert.Contains(t, mustRun(t, "activity"), "No activity recorded yet")

	mustRun(t, "add", "web", "u@h")
	out := mustRun(t, "activity")
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, events.TypeAdd)
}

func TestNoVerbWithoutTerminalPrintsHelp(t *testing.T) {
	setupHome(t)
	out := mustRun(t)
	assert.Contains(t, out, "Usage:")
}
