// Package secret evaluates values written as shell command substitutions,
// e.g. "$(pass show db/root)", by running the inner command locally.
package secret

import (
	"fmt"
	"strings"

	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/exec"
	"github.com/ssup/ssup/internal/logger"
)

const (
	prefix = "$("
	suffix = ")"
)

// Resolver turns a substitution value into its evaluated text.
type Resolver interface {
	Resolve(value string) (string, error)
}

// ShellResolver runs substitutions through the local shell.
type ShellResolver struct {
	log logger.Logger
}

// NewShellResolver returns a resolver that logs through l.
// A nil logger falls back to the package default.
func NewShellResolver(l logger.Logger) *ShellResolver {
	if l == nil {
		l = logger.NewEnvLogger("[secret]")
	}
	return &ShellResolver{log: l}
}

// IsSubstitution reports whether value starts with "$(" and ends with ")".
// Parentheses inside are not balance-checked.
func IsSubstitution(value string) bool {
	return strings.HasPrefix(value, prefix) && strings.HasSuffix(value, suffix)
}

// Resolve strips the substitution markers, runs the inner command and returns
// its standard output with non-printable bytes dropped and outer whitespace trimmed.
func (r *ShellResolver) Resolve(value string) (string, error) {
	if !strings.HasPrefix(value, prefix) {
		return "", errors.New(errors.ErrSubprocess,
			fmt.Sprintf("%q is missing the $( prefix", value),
			"Write secrets as $(command).")
	}
	if !strings.HasSuffix(value, suffix) || len(value) < len(prefix)+len(suffix) {
		return "", errors.New(errors.ErrSubprocess,
			fmt.Sprintf("%q is missing the closing )", value),
			"Write secrets as $(command).")
	}

	cmd := value[len(prefix) : len(value)-len(suffix)]
	r.log.Debug("running %q", cmd)

	res, err := exec.Capture(cmd, exec.Options{})
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", exec.Failure(fmt.Sprintf("Secret command %q", cmd), cmd, res,
			"Run the command by hand to check it prints the value.")
	}

	return strings.TrimSpace(Printable(res.Stdout)), nil
}

// Printable keeps only ASCII graphic and ASCII whitespace bytes.
func Printable(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if isGraphic(c) || isSpace(c) {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isGraphic(c byte) bool {
	return c >= '!' && c <= '~'
}

// Matches the ASCII whitespace set: space, tab, LF, FF, CR.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

// Static resolves from a fixed table. Values missing from the table fail.
type Static map[string]string

// Resolve implements Resolver.
func (s Static) Resolve(value string) (string, error) {
	if v, ok := s[value]; ok {
		return v, nil
	}
	return "", errors.New(errors.ErrSubprocess, fmt.Sprintf("no static secret for %q", value), "")
}
