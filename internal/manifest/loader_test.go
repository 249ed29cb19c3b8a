package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "custom.yml")
		writeFile(t, path, "version: \"0.5\"\n")

		got, err := Find(path, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "nope.yml"), t.TempDir())
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrManifest))
	})

	t.Run("Supfile.yml preferred", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, DefaultFile), "")
		writeFile(t, filepath.Join(dir, FallbackFile), "")

		got, err := Find("", dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, DefaultFile), got)
	})

	t.Run("falls back to Supfile", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FallbackFile), "")

		got, err := Find("", dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, FallbackFile), got)
	})

	t.Run("nothing found", func(t *testing.T) {
		_, err := Find("", t.TempDir())
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrManifest))
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scripts", "migrate.sh"), "#!/bin/sh\necho migrate\n")
	path := filepath.Join(dir, DefaultFile)
	writeFile(t, path, `
version: "0.5"
commands:
  migrate:
    desc: Run migrations
    script: ./scripts/migrate.sh
`)

	sf, err := Load(path, logger.Noop())
	require.NoError(t, err)

	assert.Equal(t, path, sf.Path)
	migrate, ok := sf.Commands.Get("migrate")
	require.True(t, ok)
	assert.Equal(t, "#!/bin/sh\necho migrate\n", migrate.Run)
	assert.Equal(t, "./scripts/migrate.sh", migrate.Script)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "version: [\n",
			wantErr: "Invalid Supfile format",
		},
		{
			name:    "missing script",
			content: "version: \"0.5\"\ncommands:\n  a:\n    script: ./missing.sh\n",
			wantErr: "can't read script",
		},
		{
			name:    "run and script",
			content: "version: \"0.5\"\ncommands:\n  a:\n    run: x\n    script: ./a.sh\n",
			wantErr: "sets both run and script",
		},
		{
			name:    "fails validation",
			content: "commands:\n  a:\n    run: x\n",
			wantErr: "no version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			writeFile(t, path, tt.content)

			_, err := Load(path, logger.Noop())
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrManifest))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestChdir(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(orig) })

	dir := t.TempDir()
	require.NoError(t, Chdir(&Supfile{Path: filepath.Join(dir, DefaultFile)}))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.NoError(t, Chdir(&Supfile{}), "no path is a no-op")
}
