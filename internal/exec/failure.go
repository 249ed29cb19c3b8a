package exec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ssup/ssup/internal/errors"
)

// commandNotFoundPatterns match the "command not found" messages of common
// shells. They only apply to exit status 127.
var commandNotFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)zsh: command not found: (\S+)`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?i)sh: (\S+): not found`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
	regexp.MustCompile(`(?i)(\S+): not found`),
}

// IsCommandNotFound reports whether a command failed because the shell could
// not find the program, and the program's name when stderr names it.
func IsCommandNotFound(stderr string, exitCode int) (string, bool) {
	if exitCode != 127 {
		return "", false
	}
	for _, pattern := range commandNotFoundPatterns {
		if matches := pattern.FindStringSubmatch(stderr); len(matches) > 1 {
			return matches[1], true
		}
	}
	return "", true
}

// Failure builds the error for a command that exited non-zero. what names
// the command in the message, e.g. "Inventory for network 'prod'".
// suggestion is used unless the failure is a missing program.
func Failure(what, cmd string, res Result, suggestion string) *errors.Error {
	name, notFound := IsCommandNotFound(string(res.Stderr), res.ExitCode)
	if !notFound {
		return errors.New(errors.ErrSubprocess,
			fmt.Sprintf("%s exited with status %d", what, res.ExitCode),
			suggestion)
	}

	if name == "" {
		if fields := strings.Fields(cmd); len(fields) > 0 {
			name = fields[0]
		} else {
			name = "command"
		}
	}
	return errors.New(errors.ErrSubprocess,
		fmt.Sprintf("%s failed: '%s' not found in PATH", what, name),
		fmt.Sprintf("Install '%s' or call it by its full path.", name))
}
