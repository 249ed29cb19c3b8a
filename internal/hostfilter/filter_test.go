package hostfilter

import (
	"testing"

	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/hostspec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostsOf(names ...string) []hostspec.Host {
	out := make([]hostspec.Host, 0, len(names))
	for _, n := range names {
		out = append(out, hostspec.Host{Host: n})
	}
	return out
}

func names(hosts []hostspec.Host) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, h.Host)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		opts Options
		want []string
	}{
		{
			name: "no flags is a no-op",
			in:   []string{"10.0.0.1", "192.168.0.1"},
			want: []string{"10.0.0.1", "192.168.0.1"},
		},
		{
			name: "only keeps matches",
			in:   []string{"10.0.0.1", "192.168.0.1"},
			opts: Options{Only: `^10\.`},
			want: []string{"10.0.0.1"},
		},
		{
			name: "except drops matches",
			in:   []string{"web1", "web2", "db1"},
			opts: Options{Except: `^db`},
			want: []string{"web1", "web2"},
		},
		{
			name: "only then except",
			in:   []string{"web1", "web2", "db1"},
			opts: Options{Only: `^web`, Except: `2$`},
			want: []string{"web1"},
		},
		{
			name: "duplicate hosts are kept",
			in:   []string{"web1", "web1", "db1"},
			opts: Options{Only: `web`},
			want: []string{"web1", "web1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(hostsOf(tt.in...), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestApply_Failures(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		kind     errors.FilterKind
		exitCode int
	}{
		{"only invalid", Options{Only: `(`}, errors.FilterOnlyPattern, errors.ExitOnlyPattern},
		{"only empty", Options{Only: `^9\.`}, errors.FilterOnlyEmpty, errors.ExitOnlyEmpty},
		{"except invalid", Options{Except: `[`}, errors.FilterExceptPattern, errors.ExitExceptPattern},
		{"except empty", Options{Except: `.`}, errors.FilterExceptEmpty, errors.ExitExceptEmpty},
		{"only invalid wins over except", Options{Only: `(`, Except: `[`}, errors.FilterOnlyPattern, errors.ExitOnlyPattern},
		{"except invalid reported when only empties", Options{Only: `^9\.`, Except: `[`}, errors.FilterExceptPattern, errors.ExitExceptPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(hostsOf("10.0.0.1", "192.168.0.1"), tt.opts)
			require.Error(t, err)

			var fe *errors.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, errors.ErrFilter, fe.Code)
			assert.Equal(t, tt.kind, fe.Filter)
			assert.Equal(t, tt.exitCode, errors.ExitCode(err))
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	in := hostsOf("a1", "b1")

	out, err := Apply(in, Options{})
	require.NoError(t, err)
	out[0].Host = "changed"

	assert.Equal(t, "a1", in[0].Host)
}

func TestOptions_Active(t *testing.T) {
	assert.False(t, Options{}.Active())
	assert.True(t, Options{Only: "x"}.Active())
	assert.True(t, Options{Except: "x"}.Active())
}
