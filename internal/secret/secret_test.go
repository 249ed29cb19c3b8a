package secret

import (
	"testing"

	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSubstitution(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"$(echo hi)", true},
		{"$()", true},
		{"$(echo (nested)", true},
		{"echo hi", false},
		{"$(echo hi", false},
		{"echo hi)", false},
		{"($(echo hi))", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSubstitution(tt.value))
		})
	}
}

func TestShellResolver_Resolve(t *testing.T) {
	r := NewShellResolver(logger.Noop())

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "echo", value: "$(echo hi)", want: "hi"},
		{name: "surrounding whitespace trimmed", value: "$(printf '  spaced  \n\n')", want: "spaced"},
		{name: "non printable bytes dropped", value: `$(printf 'se\001cr\033et')`, want: "secret"},
		{name: "inner whitespace kept", value: "$(printf 'a b\tc')", want: "a b\tc"},
		{name: "pipeline", value: "$(echo abc | tr a-z A-Z)", want: "ABC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShellResolver_ResolveErrors(t *testing.T) {
	r := NewShellResolver(logger.Noop())

	tests := []struct {
		name  string
		value string
	}{
		{name: "missing prefix", value: "echo hi)"},
		{name: "missing suffix", value: "$(echo hi"},
		{name: "non-zero exit", value: "$(exit 7)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.value)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrSubprocess))
		})
	}
}

func TestShellResolver_MissingProgram(t *testing.T) {
	r := NewShellResolver(logger.Noop())

	_, err := r.Resolve("$(ssup-no-such-secret-tool get db)")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSubprocess))
	assert.Contains(t, err.Error(), "'ssup-no-such-secret-tool' not found in PATH")
}

func TestPrintable(t *testing.T) {
	in := []byte{'o', 'k', 0x00, 0x7f, 0xc3, 0xa9, '\n', ' ', '~'}
	assert.Equal(t, "ok\n ~", Printable(in))
}

func TestStatic(t *testing.T) {
	s := Static{"$(pass show db)": "hunter2"}

	got, err := s.Resolve("$(pass show db)")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	_, err = s.Resolve("$(other)")
	assert.Error(t, err)
}
