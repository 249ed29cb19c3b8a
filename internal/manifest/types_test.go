package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleSupfile = `
version: "0.5"
desc: sample deployment

env:
  NAME: api
  IMAGE: example/api

networks:
  staging:
    hosts:
      - deploy@stg1.example.com
      - host: stg2.example.com
        user: root
        tube: logs
        sudo: true
    env:
      TIER: staging
  production:
    inventory: ./hosts.sh
    bastion: bastion.example.com
    user: deploy
    id_file: ~/.ssh/prod
    hosts:
      - prod1.example.com | $(pass show prod)

commands:
  pull:
    desc: Pull the image
    run: docker pull $IMAGE
  upload:
    upload:
      - src: ./dist
        dst: /tmp/
  logs:
    fetch:
      src: /var/log/app.log
      dst: ./logs/
  build:
    local: make build
    once: true
    serial: 2

targets:
  deploy:
    - build
    - upload staging
    - pull "production"
`

func TestDecode(t *testing.T) {
	sf, err := Decode([]byte(sampleSupfile))
	require.NoError(t, err)

	assert.Equal(t, "0.5", sf.Version)
	assert.Equal(t, "sample deployment", sf.Desc)
	assert.Equal(t, []string{"NAME", "IMAGE"}, sf.Env.Keys())

	assert.Equal(t, []string{"staging", "production"}, sf.Networks.Names())
	assert.Equal(t, []string{"pull", "upload", "logs", "build"}, sf.Commands.Names())
	assert.Equal(t, []string{"deploy"}, sf.Targets.Names())
}

func TestDecode_Networks(t *testing.T) {
	sf, err := Decode([]byte(sampleSupfile))
	require.NoError(t, err)

	stg, ok := sf.Networks.Get("staging")
	require.True(t, ok)
	require.Len(t, stg.Hosts, 2)
	assert.Equal(t, "deploy@stg1.example.com", stg.Hosts[0].Spec)
	assert.Nil(t, stg.Hosts[0].Record)

	rec := stg.Hosts[1].Record
	require.NotNil(t, rec)
	assert.Equal(t, "stg2.example.com", rec.Host)
	assert.Equal(t, "root", rec.User)
	assert.Equal(t, "logs", rec.Tube)
	assert.True(t, rec.Sudo)

	tier, _ := stg.Env.Get("TIER")
	assert.Equal(t, "staging", tier)

	prod, ok := sf.Networks.Get("production")
	require.True(t, ok)
	assert.Equal(t, "./hosts.sh", prod.Inventory)
	assert.Equal(t, "bastion.example.com", prod.Bastion)
	assert.Equal(t, "deploy", prod.User)
	assert.Equal(t, "~/.ssh/prod", prod.IdentityFile)

	_, ok = sf.Networks.Get("missing")
	assert.False(t, ok)
}

func TestDecode_Commands(t *testing.T) {
	sf, err := Decode([]byte(sampleSupfile))
	require.NoError(t, err)

	pull, ok := sf.Commands.Get("pull")
	require.True(t, ok)
	assert.Equal(t, "Pull the image", pull.Desc)
	assert.Equal(t, "docker pull $IMAGE", pull.Run)

	upload, _ := sf.Commands.Get("upload")
	assert.Equal(t, Transfers{{Src: "./dist", Dst: "/tmp/"}}, upload.Upload)

	logs, _ := sf.Commands.Get("logs")
	assert.Equal(t, Transfers{{Src: "/var/log/app.log", Dst: "./logs/"}}, logs.Fetch, "single mapping is accepted")

	build, _ := sf.Commands.Get("build")
	assert.Equal(t, "make build", build.Local)
	assert.True(t, build.Once)
	assert.Equal(t, 2, build.Serial)
}

func TestDecode_TargetsKeepBindingOrder(t *testing.T) {
	sf, err := Decode([]byte(sampleSupfile))
	require.NoError(t, err)

	deploy, ok := sf.Targets.Get("deploy")
	require.True(t, ok)
	assert.Equal(t, []Binding{
		{Command: "build"},
		{Command: "upload", Network: "staging"},
		{Command: "pull", Network: "production"},
	}, deploy.Bindings)

	assert.True(t, sf.Targets.Has("deploy"))
	assert.False(t, sf.Targets.Has("pull"))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "target line with three words",
			content: "version: \"0.5\"\ncommands:\n  a:\n    run: x\ntargets:\n  t:\n    - a b c\n",
		},
		{
			name:    "unterminated quote in target line",
			content: "version: \"0.5\"\ncommands:\n  a:\n    run: x\ntargets:\n  t:\n    - \"a\n",
		},
		{
			name:    "duplicate command",
			content: "version: \"0.5\"\ncommands:\n  a:\n    run: x\n  a:\n    run: y\n",
		},
		{
			name:    "host entry is a list",
			content: "version: \"0.5\"\nnetworks:\n  n:\n    hosts:\n      - [a, b]\ncommands:\n  a:\n    run: x\n",
		},
		{
			name:    "unknown top-level field",
			content: "version: \"0.5\"\nhostz: []\ncommands:\n  a:\n    run: x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestSupfile_MarshalKeepsOrder(t *testing.T) {
	sf, err := Decode([]byte(sampleSupfile))
	require.NoError(t, err)

	out, err := yaml.Marshal(sf)
	require.NoError(t, err)

	again, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, sf.Networks.Names(), again.Networks.Names())
	assert.Equal(t, sf.Commands.Names(), again.Commands.Names())
	deploy, _ := again.Targets.Get("deploy")
	assert.Len(t, deploy.Bindings, 3)
}
