package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invoicesxpert/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add export jobs", "add_export_jobs"},
		{"Add-Export-Jobs", "add_export_jobs"},
		{"ADD__INVOICE__TERMS", "add_invoice_terms"},
		{"   spaces   ", "spaces"},
		{"index on owner_id!", "index_on_owner_id"},
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
	writeFiles(t, dir,
		"000001_create_clients.up.sql", "000001_create_clients.down.sql",
		"000007_create_invoices.up.sql", "000007_create_invoices.down.sql",
	)

	mf, err := CreateMigration(dir, "Add invoice terms", "Terms text column")
	require.NoError(t, err)

	assert.Equal(t, "000008", mf.Version)
	assert.Equal(t, filepath.Join(dir, "000008_add_invoice_terms.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "000008_add_invoice_terms.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(up), "-- 000008 add_invoice_terms"))
	assert.Contains(t, string(up), "-- Terms text column")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(down), "-- 000008 add_invoice_terms (rollback)"))
	assert.NotContains(t, string(down), "Terms text column")
}

func TestCreateMigration_EmptyDirectoryStartsAtOne(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(dir, "init", "")
	require.NoError(t, err)
	assert.Equal(t, "000001", mf.Version)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"000002_create_invoices.up.sql", "000002_create_invoices.down.sql",
		"000001_create_clients.up.sql", "000001_create_clients.down.sql",
		"README.md", ".gitkeep",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

	names, err := ListMigrations(os.DirFS(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_clients", "000002_create_invoices"}, names)

	names, err = ListMigrations(os.DirFS(filepath.Join(dir, "missing")))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListMigrations_Embedded(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_create_clients",
		"000002_create_invoices",
		"000003_create_export_jobs",
	}, names)

	next, err := NextVersion(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, uint(4), next)
}

func TestNextVersion_IgnoresUnparsableNames(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "000010_late.down.sql", "draft.up.sql", "000002_early.up.sql")

	next, err := NextVersion(os.DirFS(dir))
	require.NoError(t, err)
	assert.Equal(t, uint(3), next)
}

func TestEmbeddedSchema(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrations.FS, "*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups), "every up migration has a down migration")

	schema := ""
	for _, name := range ups {
		data, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		schema += string(data)
	}
	for _, table := range []string{"clients", "invoices", "invoice_items", "invoice_sequences", "export_jobs"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
}
