package sshutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
	"github.com/mitchellh/go-homedir"
	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/hostspec"
	"github.com/ssup/ssup/internal/logger"
	"golang.org/x/crypto/ssh"
)

// DefaultPort is assumed when a Host block has no Port directive.
const DefaultPort = 22

// HostConfig is the directive set of one Host pattern.
type HostConfig struct {
	Pattern           string
	HostName          string
	User              string
	Port              int
	ProxyCommand      string
	HostKeyAlgorithms string
	IdentityFile      string
}

// Config maps each literal Host pattern to its directives. A block naming
// several patterns registers one entry per pattern.
type Config map[string]HostConfig

// ParseConfigFile reads and parses the SSH client config at path.
// A file that can't be read is an error: the caller asked for it explicitly.
func ParseConfigFile(path string, log logger.Logger) (Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSHConfig,
			fmt.Sprintf("Can't expand SSH config path %s", path),
			"Pass an absolute path to --sshconfig.")
	}

	content, matchLine, err := preprocessSSHConfig(expanded)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSHConfig,
			fmt.Sprintf("Can't read SSH config %s", expanded),
			"Check the --sshconfig path and its permissions.")
	}
	if matchLine > 0 {
		log.Warn("%s: ignoring everything from the Match block at line %d", expanded, matchLine)
	}

	return ParseConfig(content, log)
}

// ParseConfig parses SSH client config content.
func ParseConfig(content []byte, log logger.Logger) (Config, error) {
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSHConfig,
			"Malformed SSH config",
			"Fix the reported line; only Host blocks are supported.")
	}

	out := make(Config)
	for _, host := range cfg.Hosts {
		entry, err := decodeBlock(host)
		if err != nil {
			return nil, err
		}
		if entry.HostKeyAlgorithms != "" {
			for _, algo := range unknownHostKeyAlgorithms(entry.HostKeyAlgorithms) {
				log.Warn("Host %s: unknown HostKeyAlgorithms entry %q", patternList(host), algo)
			}
		}

		for _, pattern := range host.Patterns {
			name := pattern.String()
			// First matching block wins, as in ssh(1).
			if _, seen := out[name]; seen {
				continue
			}
			e := entry
			e.Pattern = name
			out[name] = e
		}
	}

	return out, nil
}

func decodeBlock(host *ssh_config.Host) (HostConfig, error) {
	entry := HostConfig{Port: DefaultPort}

	for _, node := range host.Nodes {
		kv, ok := node.(*ssh_config.KV)
		if !ok {
			continue
		}
		value := strings.TrimSpace(kv.Value)

		switch strings.ToLower(kv.Key) {
		case "hostname":
			entry.HostName = value
		case "user":
			entry.User = value
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil || port <= 0 || port > 65535 {
				return HostConfig{}, errors.New(errors.ErrSSHConfig,
					fmt.Sprintf("Host %s: invalid Port %q", patternList(host), value),
					"Port must be a number between 1 and 65535.")
			}
			entry.Port = port
		case "proxycommand":
			entry.ProxyCommand = value
		case "hostkeyalgorithms":
			entry.HostKeyAlgorithms = value
		case "identityfile":
			entry.IdentityFile = value
		}
	}

	return entry, nil
}

func patternList(host *ssh_config.Host) string {
	names := make([]string, 0, len(host.Patterns))
	for _, p := range host.Patterns {
		names = append(names, p.String())
	}
	return strings.Join(names, " ")
}

var knownHostKeyAlgorithms = map[string]bool{
	ssh.KeyAlgoRSA:            true,
	ssh.KeyAlgoDSA:            true,
	ssh.KeyAlgoECDSA256:       true,
	ssh.KeyAlgoECDSA384:       true,
	ssh.KeyAlgoECDSA521:       true,
	ssh.KeyAlgoSKECDSA256:     true,
	ssh.KeyAlgoED25519:        true,
	ssh.KeyAlgoSKED25519:      true,
	ssh.KeyAlgoRSASHA256:      true,
	ssh.KeyAlgoRSASHA512:      true,
	ssh.CertAlgoRSAv01:        true,
	ssh.CertAlgoDSAv01:        true,
	ssh.CertAlgoECDSA256v01:   true,
	ssh.CertAlgoECDSA384v01:   true,
	ssh.CertAlgoECDSA521v01:   true,
	ssh.CertAlgoSKECDSA256v01: true,
	ssh.CertAlgoED25519v01:    true,
	ssh.CertAlgoSKED25519v01:  true,
	ssh.CertAlgoRSASHA256v01:  true,
	ssh.CertAlgoRSASHA512v01:  true,
}

// unknownHostKeyAlgorithms returns the entries of a HostKeyAlgorithms list
// that golang.org/x/crypto/ssh does not know. Leading +, - and ^ modifiers
// and wildcard entries are accepted as-is.
func unknownHostKeyAlgorithms(list string) []string {
	var unknown []string
	for _, algo := range strings.Split(list, ",") {
		algo = strings.TrimLeft(strings.TrimSpace(algo), "+-^")
		if algo == "" || strings.ContainsAny(algo, "*?") {
			continue
		}
		if !knownHostKeyAlgorithms[algo] {
			unknown = append(unknown, algo)
		}
	}
	return unknown
}

// Overlay applies matching entries to hosts. A host matches when its Host
// field equals a pattern exactly; no glob expansion is done. Matched hosts
// take the configured User and IdentityFile, and get ":port" appended when
// the port is not the default. The input slice is not modified.
func (c Config) Overlay(hosts []hostspec.Host) ([]hostspec.Host, error) {
	out := make([]hostspec.Host, len(hosts))
	for i, h := range hosts {
		entry, ok := c[h.Host]
		if !ok {
			out[i] = h
			continue
		}

		if entry.User != "" {
			h.User = entry.User
		}
		if entry.IdentityFile != "" {
			abs, err := AbsPath(entry.IdentityFile)
			if err != nil {
				return nil, errors.WrapWithCode(err, errors.ErrSSHConfig,
					fmt.Sprintf("Host %s: can't resolve IdentityFile %s", entry.Pattern, entry.IdentityFile),
					"Use an absolute path or one starting with ~/.")
			}
			h.IdentityFile = abs
		}
		if entry.Port != DefaultPort {
			h.Host = fmt.Sprintf("%s:%d", h.Host, entry.Port)
		}
		out[i] = h
	}
	return out, nil
}

// AbsPath expands a leading ~ and makes path absolute against the working directory.
func AbsPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

// preprocessSSHConfig reads the SSH config and returns content up to the first Match directive.
// Also returns the line number where Match was found (0 if not found).
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	matchLine := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "match ") {
			matchLine = i + 1
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), matchLine, nil
}
