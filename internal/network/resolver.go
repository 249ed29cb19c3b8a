// Package network resolves a named Supfile network into the concrete host
// list and environment a play runs against.
package network

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ssup/ssup/internal/env"
	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/exec"
	"github.com/ssup/ssup/internal/hostfilter"
	"github.com/ssup/ssup/internal/hostspec"
	"github.com/ssup/ssup/internal/logger"
	"github.com/ssup/ssup/internal/manifest"
	"github.com/ssup/ssup/internal/secret"
	"github.com/ssup/ssup/internal/util"
	"github.com/ssup/ssup/pkg/sshutil"
)

// Localhost is the name of the implicit network used when a Supfile declares none.
const Localhost = "localhost"

// Names of the synthesized environment entries.
const (
	EnvNetwork = "SUP_NETWORK"
	EnvTime    = "SUP_TIME"
	EnvUser    = "SUP_USER"
)

// Resolved is a network ready to be captured by a play.
type Resolved struct {
	Name    string          `yaml:"name"`
	Hosts   []hostspec.Host `yaml:"hosts"`
	Env     env.List        `yaml:"env,omitempty"`
	Bastion string          `yaml:"bastion,omitempty"`
}

// Stages selects which optional pipeline steps run. Host parsing and bulk
// env resolution always run.
type Stages struct {
	Override  bool // merge --env values over the network env
	Inventory bool // append hosts printed by the inventory script
	Defaults  bool // add SUP_NETWORK, SUP_TIME and SUP_USER
	Overlay   bool // apply matching ~/.ssh/config entries
	Filter    bool // apply --only / --except
}

// AllStages enables every step.
var AllStages = Stages{Override: true, Inventory: true, Defaults: true, Overlay: true, Filter: true}

// Options configure a Resolver.
type Options struct {
	// Global is the Supfile's top-level env; network env wins over it.
	Global env.List

	// Overrides are the --env assignments.
	Overrides env.List

	Filter    hostfilter.Options
	SSHConfig sshutil.Config
	Secrets   secret.Resolver
	Logger    logger.Logger

	// Now and Getenv default to time.Now and os.Getenv.
	Now    func() time.Time
	Getenv func(string) string
}

// Resolver runs the resolution pipeline against a manifest's networks.
type Resolver struct {
	networks manifest.Networks
	opts     Options
	log      logger.Logger
}

// NewResolver creates a resolver for networks.
func NewResolver(networks manifest.Networks, opts Options) *Resolver {
	if opts.Logger == nil {
		opts.Logger = logger.NewEnvLogger("[network]")
	}
	if opts.Secrets == nil {
		opts.Secrets = secret.NewShellResolver(opts.Logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	return &Resolver{networks: networks, opts: opts, log: opts.Logger}
}

// Has reports whether name is a declared network.
func (r *Resolver) Has(name string) bool {
	_, ok := r.networks.Get(name)
	return ok
}

// ResolveEnv returns a copy of vars with "$(...)" values evaluated. Values
// that fail to resolve are logged and kept as written.
func (r *Resolver) ResolveEnv(vars env.List) env.List {
	out := vars.Clone()
	out.ResolveAll(r.opts.Secrets, r.log)
	return out
}

// Resolve looks up name and runs the pipeline over it.
func (r *Resolver) Resolve(name string, stages Stages) (Resolved, error) {
	def, ok := r.networks.Get(name)
	if !ok {
		err := errors.NewUnknown("Network", name)
		err.Suggestion = "Available networks: " + util.JoinOrNone(r.networks.Names())
		return Resolved{}, err
	}
	return r.resolve(def, stages)
}

// ResolveLocalhost resolves the declared localhost network, or synthesizes
// one holding a single "localhost" host when the Supfile has none.
func (r *Resolver) ResolveLocalhost(stages Stages) (Resolved, error) {
	if def, ok := r.networks.Get(Localhost); ok {
		return r.resolve(def, stages)
	}
	r.log.Debug("no %s network declared, using the implicit one", Localhost)
	return r.resolve(manifest.Network{
		Name:  Localhost,
		Hosts: []manifest.HostEntry{{Spec: Localhost}},
	}, stages)
}

func (r *Resolver) resolve(def manifest.Network, stages Stages) (Resolved, error) {
	r.log.Debug("resolving network %s", def.Name)

	out := Resolved{Name: def.Name, Bastion: def.Bastion}

	vars := r.opts.Global.Clone()
	vars.Merge(def.Env)
	if stages.Override && !r.opts.Overrides.IsEmpty() {
		r.log.Debug("overriding %s with --env %v", def.Name, r.opts.Overrides.Keys())
		vars.Merge(r.opts.Overrides)
	}
	vars.ResolveAll(r.opts.Secrets, r.log)

	hosts, err := r.staticHosts(def)
	if err != nil {
		return Resolved{}, err
	}

	if stages.Inventory && def.Inventory != "" {
		found, err := r.inventory(def, vars)
		if err != nil {
			return Resolved{}, err
		}
		hosts = append(hosts, found...)
	}

	if stages.Defaults {
		r.addDefaults(&vars, def.Name)
	}

	if stages.Overlay && len(r.opts.SSHConfig) > 0 {
		if hosts, err = r.opts.SSHConfig.Overlay(hosts); err != nil {
			return Resolved{}, err
		}
	}

	if stages.Filter && r.opts.Filter.Active() {
		if hosts, err = hostfilter.Apply(hosts, r.opts.Filter); err != nil {
			return Resolved{}, err
		}
	}

	out.Hosts = hosts
	out.Env = vars
	r.log.Debug("network %s: %d hosts, %d env vars", def.Name, len(hosts), vars.Len())
	return out, nil
}

// staticHosts parses the network's declared host list and fills unset
// fields from the network defaults.
func (r *Resolver) staticHosts(def manifest.Network) ([]hostspec.Host, error) {
	hosts := make([]hostspec.Host, 0, len(def.Hosts))
	for _, entry := range def.Hosts {
		var (
			h   hostspec.Host
			err error
		)
		if entry.Record != nil {
			h = *entry.Record
			h.Env = entry.Record.Env.Clone()
		} else if h, err = hostspec.Parse(entry.Spec); err != nil {
			return nil, err
		}

		h = applyDefaults(h, def)
		if h, err = hostspec.ResolvePassword(h, r.opts.Secrets); err != nil {
			return nil, err
		}
		hosts = append(hosts, h)
	}
	return hosts, nil
}

func applyDefaults(h hostspec.Host, def manifest.Network) hostspec.Host {
	if h.User == "" {
		h.User = def.User
	}
	if h.Password == "" {
		h.Password = def.Pass
	}
	if h.IdentityFile == "" {
		h.IdentityFile = def.IdentityFile
	}
	return h
}

// inventory runs the network's inventory script with vars added to the
// process environment and parses every non-empty output line as a host.
// Results are appended as-is; duplicates of static hosts are kept.
func (r *Resolver) inventory(def manifest.Network, vars env.List) ([]hostspec.Host, error) {
	r.log.Debug("running inventory for %s: %s", def.Name, def.Inventory)

	res, err := exec.Capture(def.Inventory, exec.Options{Env: vars.Slice()})
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, exec.Failure(fmt.Sprintf("Inventory for network '%s'", def.Name), def.Inventory, res,
			"Run the inventory command by hand; it must exit 0 and print one host per line.")
	}

	var hosts []hostspec.Host
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		h, err := hostspec.Parse(line)
		if err != nil {
			return nil, err
		}
		if h, err = hostspec.ResolvePassword(applyDefaults(h, def), r.opts.Secrets); err != nil {
			return nil, err
		}
		hosts = append(hosts, h)
	}
	r.log.Debug("inventory for %s added %d hosts", def.Name, len(hosts))
	return hosts, nil
}

// addDefaults sets the SUP_* entries, replacing any value already present.
func (r *Resolver) addDefaults(vars *env.List, name string) {
	vars.Set(EnvNetwork, name)
	vars.Set(EnvTime, r.opts.Now().UTC().Format(time.RFC3339))

	user := r.opts.Getenv(EnvUser)
	if user == "" {
		user = r.opts.Getenv("USER")
	}
	vars.Set(EnvUser, user)
}
