// Package util provides small helpers and constants shared across hop. It
// imports nothing from other internal packages so any package may use it.
package util

const (
	// AppName names the per-user config directory.
	AppName = "hop"

	// DefaultSSHPort is applied to entries stored without a port.
	DefaultSSHPort = 22

	// ServersFileName is the registry file inside the config directory.
	// The name matches what earlier releases wrote so old files keep loading.
	ServersFileName = "servers.json"

	// SettingsFileName holds user preferences (yaml).
	SettingsFileName = "config.yaml"

	// HistoryFileName records when each entry was last connected to.
	HistoryFileName = "history.json"

	// ActivityFileName is the append-only journal of registry changes and
	// dispatched sessions.
	ActivityFileName = "activity.jsonl"

	// DefaultActivityLimit bounds `hop activity` output when --limit is unset.
	DefaultActivityLimit = 20

	// MaxSuggestions bounds the "did you mean" list attached to NotFound errors.
	MaxSuggestions = 3
)
