package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/ssup/ssup/internal/errors"
	"github.com/ssup/ssup/internal/logger"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is looked up first when no manifest is named.
	DefaultFile = "Supfile.yml"
	// FallbackFile is tried when DefaultFile is missing.
	FallbackFile = "Supfile"
)

// Find locates the manifest using the search order:
// 1. Explicit path (from --file)
// 2. Supfile.yml in dir
// 3. Supfile in dir
func Find(explicit, dir string) (string, error) {
	if explicit != "" {
		path, err := homedir.Expand(explicit)
		if err != nil {
			return "", errors.WrapWithCode(err, errors.ErrManifest,
				"Can't expand manifest path "+explicit,
				"Pass an absolute path to --file.")
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrManifest,
					"Specified Supfile not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrManifest,
				"Cannot access Supfile: "+explicit,
				"Check file permissions")
		}
		return path, nil
	}

	for _, name := range []string{DefaultFile, FallbackFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", errors.New(errors.ErrManifest,
		fmt.Sprintf("No %s or %s in %s", DefaultFile, FallbackFile, dir),
		"Create a Supfile here or point at one with --file.")
}

// Load reads, decodes and validates the manifest at path. Command scripts are
// read relative to the manifest's directory.
func Load(path string, log logger.Logger) (*Supfile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrManifest,
			"Cannot resolve Supfile path "+path,
			"Check the path is correct")
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrManifest,
			"Failed to read Supfile",
			"Check the file exists and is readable: "+abs)
	}

	sf, err := Decode(content)
	if err != nil {
		return nil, err
	}
	sf.Path = abs

	if err := loadScripts(sf, filepath.Dir(abs)); err != nil {
		return nil, err
	}
	if err := Validate(sf); err != nil {
		return nil, err
	}

	log.Debug("loaded %s: %d networks, %d commands, %d targets",
		abs, len(sf.Networks), len(sf.Commands), len(sf.Targets))
	return sf, nil
}

// Decode parses manifest content without touching the filesystem.
func Decode(content []byte) (*Supfile, error) {
	sf := &Supfile{}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(sf); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrManifest,
			"Invalid Supfile format",
			"Check the YAML syntax and field names.")
	}
	return sf, nil
}

// Chdir moves the process into the manifest's directory so relative paths
// in commands and inventory scripts resolve against it.
func Chdir(sf *Supfile) error {
	if sf.Path == "" {
		return nil
	}
	dir := filepath.Dir(sf.Path)
	if err := os.Chdir(dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrManifest,
			"Can't change into "+dir,
			"Check directory permissions")
	}
	return nil
}

// loadScripts reads each command's script file into its Run body.
func loadScripts(sf *Supfile, dir string) error {
	for i, cmd := range sf.Commands {
		if cmd.Script == "" {
			continue
		}
		if cmd.Run != "" {
			return errors.New(errors.ErrManifest,
				fmt.Sprintf("Command '%s' sets both run and script", cmd.Name),
				"Keep one of them; script is read into run.")
		}

		path, err := homedir.Expand(cmd.Script)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrManifest,
				fmt.Sprintf("Command '%s': can't expand script path %s", cmd.Name, cmd.Script), "")
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}

		body, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrManifest,
				fmt.Sprintf("Command '%s': can't read script %s", cmd.Name, cmd.Script),
				"Script paths are relative to the Supfile.")
		}
		sf.Commands[i].Run = string(body)
	}
	return nil
}
