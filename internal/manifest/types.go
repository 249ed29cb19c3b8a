// Package manifest loads and validates the Supfile: networks of hosts, named
// commands and targets that expand to (command, network) bindings.
package manifest

import (
	"fmt"

	"github.com/ssup/ssup/internal/env"
	"github.com/ssup/ssup/internal/hostspec"
	"gopkg.in/yaml.v3"
)

// SupportedVersions lists the Supfile schema versions this build understands.
var SupportedVersions = []string{"0.1", "0.2", "0.3", "0.4", "0.5"}

// Supfile is the decoded manifest. Networks, commands and targets keep the
// order they were declared in.
type Supfile struct {
	Version  string   `yaml:"version"`
	Desc     string   `yaml:"desc,omitempty"`
	Env      env.List `yaml:"env,omitempty"`
	Networks Networks `yaml:"networks,omitempty"`
	Commands Commands `yaml:"commands"`
	Targets  Targets  `yaml:"targets,omitempty"`

	// Path is the absolute path the manifest was loaded from, if any.
	Path string `yaml:"-"`
}

// Network is a named group of hosts sharing connection defaults and env.
type Network struct {
	Name      string      `yaml:"-"`
	Hosts     []HostEntry `yaml:"hosts"`
	Env       env.List    `yaml:"env,omitempty"`
	Inventory string      `yaml:"inventory,omitempty"`
	Bastion   string      `yaml:"bastion,omitempty"`

	// Defaults applied to hosts that leave the field unset.
	User         string `yaml:"user,omitempty"`
	Pass         string `yaml:"pass,omitempty"`
	IdentityFile string `yaml:"id_file,omitempty"`
}

// HostEntry is one item of a network's host list: either a host-spec line
// or a literal record.
type HostEntry struct {
	Spec   string
	Record *hostspec.Host
}

// UnmarshalYAML accepts a scalar host-spec line or a mapping.
func (h *HostEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		h.Spec = node.Value
		return nil
	case yaml.MappingNode:
		var rec hostspec.Host
		if err := node.Decode(&rec); err != nil {
			return err
		}
		h.Record = &rec
		return nil
	}
	return fmt.Errorf("line %d: host entry must be a string or a mapping", node.Line)
}

// MarshalYAML writes the entry back in the form it was read.
func (h HostEntry) MarshalYAML() (interface{}, error) {
	if h.Record != nil {
		return h.Record, nil
	}
	return h.Spec, nil
}

// Transfer is a file copy between the local machine and a host.
type Transfer struct {
	Src string `yaml:"src"`
	Dst string `yaml:"dst"`
}

// Transfers accepts either a list of transfers or a single mapping.
type Transfers []Transfer

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Transfers) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var one Transfer
		if err := node.Decode(&one); err != nil {
			return err
		}
		*t = Transfers{one}
		return nil
	}
	var many []Transfer
	if err := node.Decode(&many); err != nil {
		return err
	}
	*t = many
	return nil
}

// Command is a named unit of work.
type Command struct {
	Name   string    `yaml:"-"`
	Desc   string    `yaml:"desc,omitempty"`
	Run    string    `yaml:"run,omitempty"`
	Local  string    `yaml:"local,omitempty"`
	Script string    `yaml:"script,omitempty"`
	Upload Transfers `yaml:"upload,omitempty"`
	Fetch  Transfers `yaml:"fetch,omitempty"`
	Env    env.List  `yaml:"env,omitempty"`
	Stdin  bool      `yaml:"stdin,omitempty"`
	Once   bool      `yaml:"once,omitempty"`
	Serial int       `yaml:"serial,omitempty"`
}

// Empty reports whether the command has nothing to do.
func (c Command) Empty() bool {
	return c.Run == "" && c.Local == "" && c.Script == "" && len(c.Upload) == 0 && len(c.Fetch) == 0
}

// Binding is one line of a target: a command, optionally pinned to a network.
type Binding struct {
	Command string
	Network string
}

// Target is a named macro over command bindings.
type Target struct {
	Name     string
	Bindings []Binding
}

// Networks is the declaration-ordered set of networks.
type Networks []Network

// Get returns the network called name.
func (n Networks) Get(name string) (Network, bool) {
	for _, net := range n {
		if net.Name == name {
			return net, true
		}
	}
	return Network{}, false
}

// Names returns network names in declaration order.
func (n Networks) Names() []string {
	out := make([]string, 0, len(n))
	for _, net := range n {
		out = append(out, net.Name)
	}
	return out
}

// UnmarshalYAML decodes a mapping of name to network.
func (n *Networks) UnmarshalYAML(node *yaml.Node) error {
	return decodeOrdered(node, "networks", func(name string, value *yaml.Node) error {
		var net Network
		if err := value.Decode(&net); err != nil {
			return err
		}
		net.Name = name
		*n = append(*n, net)
		return nil
	})
}

// MarshalYAML encodes the networks as an ordered mapping.
func (n Networks) MarshalYAML() (interface{}, error) {
	return encodeOrdered(len(n), func(i int) (string, interface{}) { return n[i].Name, n[i] })
}

// Commands is the declaration-ordered set of commands.
type Commands []Command

// Get returns the command called name.
func (c Commands) Get(name string) (Command, bool) {
	for _, cmd := range c {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return Command{}, false
}

// Names returns command names in declaration order.
func (c Commands) Names() []string {
	out := make([]string, 0, len(c))
	for _, cmd := range c {
		out = append(out, cmd.Name)
	}
	return out
}

// UnmarshalYAML decodes a mapping of name to command.
func (c *Commands) UnmarshalYAML(node *yaml.Node) error {
	return decodeOrdered(node, "commands", func(name string, value *yaml.Node) error {
		var cmd Command
		if err := value.Decode(&cmd); err != nil {
			return err
		}
		cmd.Name = name
		*c = append(*c, cmd)
		return nil
	})
}

// MarshalYAML encodes the commands as an ordered mapping.
func (c Commands) MarshalYAML() (interface{}, error) {
	return encodeOrdered(len(c), func(i int) (string, interface{}) { return c[i].Name, c[i] })
}

// Targets is the declaration-ordered set of targets.
type Targets []Target

// Get returns the target called name.
func (t Targets) Get(name string) (Target, bool) {
	for _, tgt := range t {
		if tgt.Name == name {
			return tgt, true
		}
	}
	return Target{}, false
}

// Has reports whether a target called name exists.
func (t Targets) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Names returns target names in declaration order.
func (t Targets) Names() []string {
	out := make([]string, 0, len(t))
	for _, tgt := range t {
		out = append(out, tgt.Name)
	}
	return out
}

// UnmarshalYAML decodes a mapping of name to a list of "command [network]" lines.
func (t *Targets) UnmarshalYAML(node *yaml.Node) error {
	return decodeOrdered(node, "targets", func(name string, value *yaml.Node) error {
		var lines []string
		if err := value.Decode(&lines); err != nil {
			return err
		}
		tgt := Target{Name: name}
		for _, line := range lines {
			b, err := ParseBinding(line)
			if err != nil {
				return fmt.Errorf("target %s: %w", name, err)
			}
			tgt.Bindings = append(tgt.Bindings, b)
		}
		*t = append(*t, tgt)
		return nil
	})
}

// MarshalYAML encodes the targets back into their line form.
func (t Targets) MarshalYAML() (interface{}, error) {
	return encodeOrdered(len(t), func(i int) (string, interface{}) {
		lines := make([]string, 0, len(t[i].Bindings))
		for _, b := range t[i].Bindings {
			lines = append(lines, b.String())
		}
		return t[i].Name, lines
	})
}

func decodeOrdered(node *yaml.Node, section string, add func(name string, value *yaml.Node) error) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: %s must be a mapping of name to definition", node.Line, section)
	}

	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if seen[key.Value] {
			return fmt.Errorf("line %d: %s entry %q declared twice", key.Line, section, key.Value)
		}
		seen[key.Value] = true
		if err := add(key.Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func encodeOrdered(n int, item func(i int) (string, interface{})) (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i < n; i++ {
		name, value := item(i)
		var v yaml.Node
		if err := v.Encode(value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, &v)
	}
	return node, nil
}
