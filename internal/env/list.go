// Package env holds the ordered environment lists attached to networks,
// hosts and commands.
package env

import (
	"fmt"
	"strings"

	"github.com/ssup/ssup/internal/logger"
	"github.com/ssup/ssup/internal/secret"
	"gopkg.in/yaml.v3"
)

// List is an ordered KEY=VALUE mapping. Keys keep the position of their first
// insertion; setting an existing key replaces the value in place.
// The zero value is an empty list ready to use.
type List struct {
	keys   []string
	values map[string]string
}

// FromPairs builds a list from alternating key, value arguments.
func FromPairs(kv ...string) List {
	var l List
	for i := 0; i+1 < len(kv); i += 2 {
		l.Set(kv[i], kv[i+1])
	}
	return l
}

// ParseAssignments parses KEY=VALUE strings such as repeated --env flags.
// Entries without '=' are skipped and reported through log.
func ParseAssignments(items []string, log logger.Logger) List {
	var l List
	for _, item := range items {
		key, value, ok := strings.Cut(item, "=")
		if !ok || key == "" {
			log.Warn("ignoring env assignment %q: expected KEY=VALUE", item)
			continue
		}
		l.Set(key, value)
	}
	return l
}

// Set adds or replaces key.
func (l *List) Set(key, value string) {
	if l.values == nil {
		l.values = make(map[string]string)
	}
	if _, ok := l.values[key]; !ok {
		l.keys = append(l.keys, key)
	}
	l.values[key] = value
}

// Get returns the value for key.
func (l List) Get(key string) (string, bool) {
	v, ok := l.values[key]
	return v, ok
}

// Has reports whether key is present.
func (l List) Has(key string) bool {
	_, ok := l.values[key]
	return ok
}

// Keys returns keys in insertion order.
func (l List) Keys() []string {
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

// Len returns the number of entries.
func (l List) Len() int {
	return len(l.keys)
}

// IsEmpty reports whether the list has no entries.
func (l List) IsEmpty() bool {
	return len(l.keys) == 0
}

// IsZero lets yaml omitempty drop empty lists.
func (l List) IsZero() bool {
	return l.IsEmpty()
}

// Clone returns an independent copy.
func (l List) Clone() List {
	var out List
	for _, k := range l.keys {
		out.Set(k, l.values[k])
	}
	return out
}

// Merge overlays other onto l. Values from other win; keys already present
// keep their position and new keys are appended in other's order.
func (l *List) Merge(other List) {
	for _, k := range other.keys {
		l.Set(k, other.values[k])
	}
}

// Slice returns the entries as KEY=VALUE strings, in order.
func (l List) Slice() []string {
	out := make([]string, 0, len(l.keys))
	for _, k := range l.keys {
		out = append(out, k+"="+l.values[k])
	}
	return out
}

// AsExport renders the list as shell export statements.
func (l List) AsExport() string {
	parts := make([]string, 0, len(l.keys))
	for _, k := range l.keys {
		parts = append(parts, fmt.Sprintf(`export %s="%s";`, k, l.values[k]))
	}
	return strings.Join(parts, " ")
}

// ResolveAll evaluates every "$(...)" value in place. A value that fails to
// resolve is logged and left as its literal text; the remaining values are
// still processed.
func (l *List) ResolveAll(r secret.Resolver, log logger.Logger) {
	for _, k := range l.keys {
		v := l.values[k]
		if !secret.IsSubstitution(v) {
			continue
		}
		resolved, err := r.Resolve(v)
		if err != nil {
			log.Warn("keeping literal value of $%s: %v", k, err)
			continue
		}
		log.Debug("resolved $%s", k)
		l.values[k] = resolved
	}
}

// UnmarshalYAML decodes a YAML mapping while keeping key order.
func (l *List) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: env must be a mapping of KEY: value", node.Line)
	}

	*l = List{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: env value for %q must be a scalar", value.Line, key.Value)
		}
		if value.Tag == "!!null" {
			l.Set(key.Value, "")
			continue
		}
		l.Set(key.Value, value.Value)
	}
	return nil
}

// MarshalYAML encodes the list as an ordered mapping.
func (l List) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range l.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: l.values[k]},
		)
	}
	return node, nil
}
