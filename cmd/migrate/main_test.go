package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/invoicesxpert/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCommands_Offline(t *testing.T) {
	dir := t.TempDir()
	s := &session{log: zap.NewNop(), dir: dir, schema: os.DirFS(dir)}

	require.NoError(t, commands["create"].run(s, []string{"add invoice discount", "Discount column"}))
	require.NoError(t, commands["create"].run(s, []string{"add_export_format"}))

	matches, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.NoError(t, commands["list"].run(s, nil))
}

func TestCommands_ListEmbedded(t *testing.T) {
	s := &session{log: zap.NewNop(), schema: migrations.FS}
	assert.NoError(t, commands["list"].run(s, nil))
	assert.True(t, commands["list"].offline)
}

func TestCommands_Table(t *testing.T) {
	for name, cmd := range commands {
		assert.NotNil(t, cmd.run, name)
		assert.Contains(t, cmd.usage, name)
	}
	assert.True(t, commands["create"].offline)
	assert.False(t, commands["up"].offline)
	assert.Equal(t, 1, commands["step"].minArgs)
}

func TestCommands_ArgumentErrors(t *testing.T) {
	s := &session{log: zap.NewNop()}

	assert.ErrorContains(t, commands["drop"].run(s, nil), "-confirm")
	assert.ErrorContains(t, commands["step"].run(s, []string{"two"}), "invalid step count")
	assert.ErrorContains(t, commands["goto"].run(s, []string{"-3"}), "invalid version")
	assert.ErrorContains(t, commands["force"].run(s, []string{"x"}), "invalid version")
}
