package manifest

import (
	"fmt"

	"github.com/mattn/go-shellwords"
)

// ParseBinding parses a target line of the form "command [network]".
// Words are split with shell quoting rules; anything other than one or two
// words is rejected.
func ParseBinding(line string) (Binding, error) {
	words, err := shellwords.Parse(line)
	if err != nil {
		return Binding{}, fmt.Errorf("can't split %q: %w", line, err)
	}

	switch len(words) {
	case 1:
		return Binding{Command: words[0]}, nil
	case 2:
		return Binding{Command: words[0], Network: words[1]}, nil
	}
	return Binding{}, fmt.Errorf("%q: expected \"command [network]\", got %d words", line, len(words))
}

// String renders the binding back into its line form.
func (b Binding) String() string {
	if b.Network == "" {
		return b.Command
	}
	return b.Command + " " + b.Network
}
