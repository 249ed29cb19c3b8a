// Package hostfilter narrows a resolved host set with --only / --except patterns.
package hostfilter

import (
	"fmt"
	"regexp"

	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/hostspec"
)

// Options holds the two filter patterns. An empty pattern disables its stage.
type Options struct {
	Only   string
	Except string
}

// Active reports whether any stage will run.
func (o Options) Active() bool {
	return o.Only != "" || o.Except != ""
}

// Apply runs the only stage and then the except stage over hosts, matching
// against each host's Host field. The input slice is not modified.
// Both patterns are compiled before either stage runs, so an invalid pattern
// is reported even when the other stage would leave no hosts.
// A stage that leaves no hosts is an error.
func Apply(hosts []hostspec.Host, opts Options) ([]hostspec.Host, error) {
	only, except, err := compile(opts)
	if err != nil {
		return nil, err
	}

	out := hosts

	if only != nil {
		out = keep(out, only, true)
		if len(out) == 0 {
			return nil, errors.NewFilter(errors.FilterOnlyEmpty, nil,
				fmt.Sprintf("No hosts match --only %q", opts.Only),
				"Loosen the pattern or check the network's host list.")
		}
	}

	if except != nil {
		out = keep(out, except, false)
		if len(out) == 0 {
			return nil, errors.NewFilter(errors.FilterExceptEmpty, nil,
				fmt.Sprintf("--except %q excludes every host", opts.Except),
				"Narrow the pattern so at least one host is left.")
		}
	}

	if len(out) == len(hosts) {
		return append([]hostspec.Host(nil), hosts...), nil
	}
	return out, nil
}

// compile returns the regexps for the non-empty patterns, --only first.
func compile(opts Options) (only, except *regexp.Regexp, err error) {
	if opts.Only != "" {
		if only, err = regexp.Compile(opts.Only); err != nil {
			return nil, nil, errors.NewFilter(errors.FilterOnlyPattern, err,
				fmt.Sprintf("Invalid --only pattern %q", opts.Only),
				"Use a Go regular expression, e.g. --only '^web'.")
		}
	}
	if opts.Except != "" {
		if except, err = regexp.Compile(opts.Except); err != nil {
			return nil, nil, errors.NewFilter(errors.FilterExceptPattern, err,
				fmt.Sprintf("Invalid --except pattern %q", opts.Except),
				"Use a Go regular expression, e.g. --except '^db'.")
		}
	}
	return only, except, nil
}

// keep returns the hosts whose Host field matching re equals match.
func keep(hosts []hostspec.Host, re *regexp.Regexp, match bool) []hostspec.Host {
	var out []hostspec.Host
	for _, h := range hosts {
		if re.MatchString(h.Host) == match {
			out = append(out, h)
		}
	}
	return out
}
