package manifest

import (
	"testing"

	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/hostspec"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	valid := func() *Supfile {
		return &Supfile{
			Version:  "0.5",
			Networks: Networks{{Name: "web", Hosts: []HostEntry{{Spec: "web1"}}}},
			Commands: Commands{{Name: "ping", Run: "echo ok"}},
			Targets:  Targets{{Name: "all", Bindings: []Binding{{Command: "ping"}}}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(sf *Supfile)
		wantErr string
	}{
		{name: "valid", mutate: func(sf *Supfile) {}},
		{name: "missing version", mutate: func(sf *Supfile) { sf.Version = "" }, wantErr: "no version"},
		{name: "future version", mutate: func(sf *Supfile) { sf.Version = "9.9" }, wantErr: "Unsupported Supfile version"},
		{
			name:    "empty command",
			mutate:  func(sf *Supfile) { sf.Commands = append(sf.Commands, Command{Name: "noop"}) },
			wantErr: "Command 'noop' has nothing to do",
		},
		{
			name: "upload only is enough",
			mutate: func(sf *Supfile) {
				sf.Commands = append(sf.Commands, Command{Name: "up", Upload: Transfers{{Src: "a", Dst: "b"}}})
			},
		},
		{
			name: "transfer without dst",
			mutate: func(sf *Supfile) {
				sf.Commands = append(sf.Commands, Command{Name: "up", Fetch: Transfers{{Src: "a"}}})
			},
			wantErr: "without src or dst",
		},
		{
			name:    "negative serial",
			mutate:  func(sf *Supfile) { sf.Commands[0].Serial = -1 },
			wantErr: "negative serial",
		},
		{
			name:    "empty target",
			mutate:  func(sf *Supfile) { sf.Targets = append(sf.Targets, Target{Name: "none"}) },
			wantErr: "Target 'none' has no commands",
		},
		{
			name:    "blank host line",
			mutate:  func(sf *Supfile) { sf.Networks[0].Hosts = append(sf.Networks[0].Hosts, HostEntry{Spec: "  "}) },
			wantErr: "host #2 is empty",
		},
		{
			name: "record without host",
			mutate: func(sf *Supfile) {
				sf.Networks[0].Hosts = []HostEntry{{Record: &hostspec.Host{User: "root"}}}
			},
			wantErr: "host #1 has no host field",
		},
		{
			name:   "no networks is fine",
			mutate: func(sf *Supfile) { sf.Networks = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf := valid()
			tt.mutate(sf)

			err := Validate(sf)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrManifest))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
