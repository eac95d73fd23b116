package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qbic/datamanager/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add raw data checksum", "add_raw_data_checksum"},
		{"Add-Raw-Data", "add_raw_data"},
		{"ADD__RAW__DATA", "add_raw_data"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add raw data checksum", "")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, "000001_add_raw_data_checksum", first.Name)
	assert.FileExists(t, first.UpPath)
	assert.FileExists(t, first.DownPath)

	content, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- add raw data checksum")

	second, err := CreateMigration(dir, "index samples by label", "Speed up sample search")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := CreateMigration(dir, "!!!", "")
		assert.Error(t, err)
	})

	t.Run("creates the directory", func(t *testing.T) {
		nested := filepath.Join(dir, "nested", "migrations")
		_, err := CreateMigration(nested, "init", "")
		require.NoError(t, err)
		assert.DirExists(t, nested)
	})
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000010_late.up.sql", "000010_late.down.sql",
		"000002_early.up.sql", "000002_early.down.sql",
		"README.md", "notes.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	names, err := ListMigrations(os.DirFS(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"000002_early", "000010_late"}, names)

	t.Run("embedded schema is ordered and paired", func(t *testing.T) {
		names, err := ListMigrations(migrations.FS)
		require.NoError(t, err)
		require.NotEmpty(t, names)
		assert.Equal(t, "000001_create_users_and_projects", names[0])
		for _, name := range names {
			_, err := migrations.FS.Open(name + ".down.sql")
			assert.NoError(t, err, name)
		}
	})
}
