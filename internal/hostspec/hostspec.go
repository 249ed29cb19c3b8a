// Package hostspec parses the compact host line format used in Supfile
// networks and inventory script output:
//
//	[user[:password]@]host[ | password][ > tube]
//
// Only the first " | " and the first " > " are treated as separators. A
// password given after " | " always wins over one written inline before '@'.
// Empty segments mean "not set".
package hostspec

import (
	"fmt"
	"strings"

	"github.com/ssup/ssup/internal/env"
	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/secret"
)

// Separators recognised in a host line.
const (
	PassSeparator = " | "
	TubeSeparator = " > "
)

// Host is one resolved connection record. Empty strings mean "not set".
type Host struct {
	Host         string   `yaml:"host"`
	User         string   `yaml:"user,omitempty"`
	Password     string   `yaml:"pass,omitempty"`
	Tube         string   `yaml:"tube,omitempty"`
	IdentityFile string   `yaml:"id_file,omitempty"`
	Sudo         bool     `yaml:"sudo,omitempty"`
	Env          env.List `yaml:"env,omitempty"`
}

// String renders the host without its password.
func (h Host) String() string {
	s := h.Host
	if h.User != "" {
		s = h.User + "@" + s
	}
	if h.Tube != "" {
		s += TubeSeparator + h.Tube
	}
	return s
}

// Segments are the raw pieces of a host line before any field is derived.
type Segments struct {
	HostPart string
	Password string
	Tube     string
}

// Split finds the separator boundaries of line. Each segment runs from the
// end of its separator to the start of the other separator when that one
// comes later, otherwise to the end of the line. Separators are located
// before any trimming so a trailing " | " with nothing after it still counts.
func Split(line string) Segments {
	pass := strings.Index(line, PassSeparator)
	tube := strings.Index(line, TubeSeparator)

	hostEnd := len(line)
	if pass >= 0 {
		hostEnd = pass
	}
	if tube >= 0 && tube < hostEnd {
		hostEnd = tube
	}

	return Segments{
		HostPart: strings.TrimSpace(line[:hostEnd]),
		Password: segment(line, pass, len(PassSeparator), tube),
		Tube:     segment(line, tube, len(TubeSeparator), pass),
	}
}

func segment(line string, start, sepLen, other int) string {
	if start < 0 {
		return ""
	}
	from := start + sepLen
	to := len(line)
	if other > start {
		to = other
		if to < from {
			to = from
		}
	}
	return strings.TrimSpace(line[from:to])
}

// Parse turns one host line into a Host. It does not evaluate secrets and
// does not check that the host is reachable. The only rejected input is a
// host part with more than one '@'.
func Parse(line string) (Host, error) {
	seg := Split(line)

	user, inlinePass, address, err := splitUserHost(seg.HostPart)
	if err != nil {
		return Host{}, err
	}

	password := seg.Password
	if password == "" {
		password = inlinePass
	}

	return Host{
		Host:     address,
		User:     user,
		Password: password,
		Tube:     seg.Tube,
	}, nil
}

// splitUserHost splits "user[:pass]@host". A trailing '@' with nothing after
// it leaves the whole part as the host.
func splitUserHost(part string) (user, pass, host string, err error) {
	switch strings.Count(part, "@") {
	case 0:
		return "", "", part, nil
	case 1:
	default:
		return "", "", "", errors.New(errors.ErrGrammar,
			fmt.Sprintf("Host spec %q has more than one '@'", part),
			"Write hosts as [user[:password]@]host[ | password][ > tube].")
	}

	left, right, _ := strings.Cut(part, "@")
	if right == "" {
		return "", "", part, nil
	}

	user = left
	if u, p, ok := strings.Cut(left, ":"); ok {
		user, pass = u, p
	}
	return user, pass, right, nil
}

// ParseAndResolve parses line and evaluates a "$(...)" password. Failing to
// evaluate the password is an error for the caller to treat as fatal.
func ParseAndResolve(line string, r secret.Resolver) (Host, error) {
	h, err := Parse(line)
	if err != nil {
		return Host{}, err
	}
	return ResolvePassword(h, r)
}

// ResolvePassword returns h with a "$(...)" password replaced by its value.
func ResolvePassword(h Host, r secret.Resolver) (Host, error) {
	if !secret.IsSubstitution(h.Password) {
		return h, nil
	}
	pass, err := r.Resolve(h.Password)
	if err != nil {
		return Host{}, errors.WrapWithCode(err, errors.ErrSubprocess,
			fmt.Sprintf("Couldn't resolve the password for host %s", h),
			"Fix the $(...) command or write the password literally.")
	}
	h.Password = pass
	return h, nil
}
