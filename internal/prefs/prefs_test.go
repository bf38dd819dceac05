package prefs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	d, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("closing prefs db: %v", err)
		}
	})
	return d
}

func TestSetGetRoundTrip(t *testing.T) {
	d := openTestDB(t)

	type sample struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, d.Set("sample", sample{Name: "inbox", Count: 3}))

	var got sample
	require.NoError(t, d.Get("sample", &got))
	assert.Equal(t, sample{Name: "inbox", Count: 3}, got)
}

func TestSetOverwrites(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.Set("k", 1))
	require.NoError(t, d.Set("k", 2))

	var got int
	require.NoError(t, d.Get("k", &got))
	assert.Equal(t, 2, got)
}

func TestGetMissingKey(t *testing.T) {
	d := openTestDB(t)

	var got int
	err := d.Get("never-set", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.Set("k", "v"))
	require.NoError(t, d.Delete("k"))

	var got string
	assert.ErrorIs(t, d.Get("k", &got), ErrNotFound)

	// Deleting a missing key is a no-op.
	require.NoError(t, d.Delete("k"))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")

	d, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, d.Set("k", "v"))
	require.NoError(t, d.Close())

	// Reopening applies no migration twice and keeps the data.
	d, err = Open(path)
	require.NoError(t, err)
	defer d.Close()

	var got string
	require.NoError(t, d.Get("k", &got))
	assert.Equal(t, "v", got)
}

func TestLoadLayoutDefaults(t *testing.T) {
	d := openTestDB(t)

	assert.Equal(t, DefaultLayout(), d.LoadLayout())
}

func TestLayoutRoundTrip(t *testing.T) {
	d := openTestDB(t)

	want := PaneLayout{
		SidebarWidth: 30,
		ListWidth:    60,
		ShowPreview:  false,
		SortBy:       "sender",
		SortDesc:     false,
	}
	require.NoError(t, d.SaveLayout(want))
	assert.Equal(t, want, d.LoadLayout())
}

func TestLoadLayoutRejectsBadWidths(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.SaveLayout(PaneLayout{SidebarWidth: -5, ListWidth: 0}))
	assert.Equal(t, DefaultLayout(), d.LoadLayout())
}

func TestLoadLayoutRecoversFromCorruptValue(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.Set(layoutKey, "not json at all"))
	assert.Equal(t, DefaultLayout(), d.LoadLayout())
}
