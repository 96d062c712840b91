package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpemreelmas/hop-cli/internal/model"
)

func entry(name, alias string) model.ServerEntry {
	return model.ServerEntry{Name: name, Alias: alias, User: "forge", Host: "192.168.1.20", Port: 22}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestAddThenResolveByNameAndAlias(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	e := entry("prod-db", "db1")
	require.NoError(t, r.Add(e))

	got, err := r.Resolve("prod-db")
	require.NoError(t, err)
	assert.Equal(t, e, got)

	got, err = r.Resolve("db1")
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestAddDefaultsPort(t *testing.T) {
	r, _ := New()
	require.NoError(t, r.Add(model.ServerEntry{Name: "web", User: "u", Host: "h"}))

	got, err := r.Resolve("web")
	require.NoError(t, err)
	assert.Equal(t, 22, got.Port)
}

func TestAddRejectsInvalidEntry(t *testing.T) {
	r, _ := New()
	err := r.Add(model.ServerEntry{Name: "web", User: "u", Host: "h", Port: 70000})

	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "port", ve.Field)
	assert.Equal(t, 0, r.Len())
}

func TestAddDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		existing model.ServerEntry
		incoming model.ServerEntry
		wantKind error
	}{
		{"same name different fields", entry("web", ""), model.ServerEntry{Name: "web", User: "root", Host: "10.0.0.9", Port: 2200}, ErrDuplicateName},
		{"name equals existing alias", entry("prod-db", "db1"), entry("db1", ""), ErrDuplicateName},
		{"alias equals existing name", entry("db1", ""), entry("other", "db1"), ErrDuplicateAlias},
		{"alias equals existing alias", entry("a", "x"), entry("b", "x"), ErrDuplicateAlias},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.existing)
			require.NoError(t, err)

			err = r.Add(tt.incoming)
			require.ErrorIs(t, err, tt.wantKind)

			var re *RegistryError
			require.ErrorAs(t, err, &re)
			assert.NotEmpty(t, re.Identifier)
			assert.Equal(t, 1, r.Len())
		})
	}
}

func TestAddAllowsAliasEqualToOwnName(t *testing.T) {
	r, _ := New()
	require.NoError(t, r.Add(entry("web", "web")))
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(entry("a", ""), entry("a", ""))
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestResolvePrefersNameOverAlias(t *testing.T) {
	// Add refuses this layout, so build it directly to pin the lookup order.
	r := &Registry{entries: []model.ServerEntry{entry("web", "api"), entry("api", "")}}

	got, err := r.Resolve("api")
	require.NoError(t, err)
	assert.Equal(t, "api", got.Name)

	r = &Registry{entries: []model.ServerEntry{entry("web", "front")}}
	got, err = r.Resolve("front")
	require.NoError(t, err)
	assert.Equal(t, "web", got.Name)
}

func TestResolveNotFoundCarriesSuggestions(t *testing.T) {
	r, err := New(entry("prod-db", "db1"), entry("staging", ""))
	require.NoError(t, err)

	_, err = r.Resolve("prod")
	require.ErrorIs(t, err, ErrNotFound)

	var re *RegistryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "prod", re.Identifier)
	assert.Equal(t, []string{"prod-db"}, re.Suggestions)
	assert.Contains(t, err.Error(), "did you mean")
}

func TestResolveNeverGuesses(t *testing.T) {
	r, err := New(entry("prod-db", ""))
	require.NoError(t, err)

	for _, id := range []string{"", "prod", "PROD-DB", "prod-db "} {
		_, err := r.Resolve(id)
		assert.ErrorIs(t, err, ErrNotFound, "identifier %q", id)
	}
}

func TestRemove(t *testing.T) {
	r, err := New(entry("a", "x"), entry("b", ""), entry("c", ""))
	require.NoError(t, err)

	removed, err := r.Remove("x")
	require.NoError(t, err)
	assert.Equal(t, "a", removed.Name)

	_, err = r.Resolve("x")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.Resolve("a")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"b", "c"}, names(r.List()))

	_, err = r.Remove("a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEditKeepsOrderAndIdentity(t *testing.T) {
	r, err := New(entry("a", "x"), entry("b", "y"), entry("c", ""))
	require.NoError(t, err)

	updated, err := r.Edit("y", model.EntryPatch{
		User: strPtr("root"),
		Host: strPtr("10.0.0.2"),
		Port: intPtr(2222),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ServerEntry{Name: "b", Alias: "y", User: "root", Host: "10.0.0.2", Port: 2222}, updated)
	assert.Equal(t, []string{"a", "b", "c"}, names(r.List()))

	got, err := r.Resolve("b")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestEditRename(t *testing.T) {
	r, err := New(entry("a", "x"), entry("b", ""))
	require.NoError(t, err)

	_, err = r.Edit("a", model.EntryPatch{Name: strPtr("a")})
	require.NoError(t, err, "renaming to own name must succeed")

	_, err = r.Edit("a", model.EntryPatch{Alias: strPtr("a")})
	require.NoError(t, err, "alias may equal own name")

	_, err = r.Edit("a", model.EntryPatch{Name: strPtr("b")})
	require.ErrorIs(t, err, ErrDuplicateName)

	_, err = r.Edit("b", model.EntryPatch{Alias: strPtr("a")})
	require.ErrorIs(t, err, ErrDuplicateAlias)

	_, err = r.Edit("a", model.EntryPatch{Name: strPtr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, []string{"renamed", "b"}, names(r.List()))
}

func TestEditClearAlias(t *testing.T) {
	r, err := New(entry("a", "x"))
	require.NoError(t, err)

	updated, err := r.Edit("x", model.EntryPatch{Alias: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, updated.Alias)

	_, err = r.Resolve("x")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEditFailureLeavesEntryUntouched(t *testing.T) {
	r, err := New(entry("a", ""))
	require.NoError(t, err)

	_, err = r.Edit("a", model.EntryPatch{Host: strPtr("bad host")})
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)

	got, _ := r.Resolve("a")
	assert.Equal(t, "192.168.1.20", got.Host)

	_, err = r.Edit("missing", model.EntryPatch{Host: strPtr("h")})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListReturnsCopy(t *testing.T) {
	r, err := New(entry("a", ""))
	require.NoError(t, err)

	list := r.List()
	list[0].Name = "mutated"

	_, err = r.Resolve("a")
	require.NoError(t, err)
}

func names(entries []model.ServerEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}
