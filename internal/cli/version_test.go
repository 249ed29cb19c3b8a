package cli

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "dev", want: "dev"},
		{in: "1.2.3", want: "v1.2.3"},
		{in: "v1.2.3", want: "v1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.in))
		})
	}
}

func TestSetVersionInfo(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	t.Cleanup(func() { SetVersionInfo(origVersion, origCommit, origDate) })

	SetVersionInfo("0.5.0", "abc123", "2026-01-02")

	assert.Equal(t, "0.5.0", GetVersion())
	text := versionText()
	assert.Contains(t, text, "ssup v0.5.0")
	assert.Contains(t, text, "commit: abc123")
	assert.Contains(t, text, "built: 2026-01-02")
	assert.Contains(t, text, runtime.Version())
}

func TestVersionFlag(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	t.Cleanup(func() { SetVersionInfo(origVersion, origCommit, origDate) })
	SetVersionInfo("1.0.0", "deadbeef", "today")

	for _, flag := range []string{"-v", "--version"} {
		t.Run(flag, func(t *testing.T) {
			var out bytes.Buffer
			cmd := NewRootCmd(&out, &out)
			cmd.SetArgs([]string{flag})

			require.NoError(t, cmd.Execute())
			assert.Contains(t, out.String(), "ssup v1.0.0")
		})
	}
}
