package manifest

import (
	"fmt"
	"strings"

	"github.com/ssup/ssup/internal/errors"
)

// Validate checks the manifest for errors and returns structured error messages.
// Name references between targets, commands and networks are resolved when the
// playbook is assembled, not here.
func Validate(sf *Supfile) error {
	if err := validateVersion(sf.Version); err != nil {
		return err
	}

	for _, net := range sf.Networks {
		if err := validateNetwork(net); err != nil {
			return err
		}
	}

	for _, cmd := range sf.Commands {
		if cmd.Empty() {
			return errors.New(errors.ErrManifest,
				fmt.Sprintf("Command '%s' has nothing to do", cmd.Name),
				"Give it a run, local, script, upload or fetch entry.")
		}
		if cmd.Serial < 0 {
			return errors.New(errors.ErrManifest,
				fmt.Sprintf("Command '%s' has a negative serial value (%d)", cmd.Name, cmd.Serial),
				"Use 0 for no limit or a positive batch size.")
		}
		for _, t := range append(append(Transfers{}, cmd.Upload...), cmd.Fetch...) {
			if t.Src == "" || t.Dst == "" {
				return errors.New(errors.ErrManifest,
					fmt.Sprintf("Command '%s' has a transfer without src or dst", cmd.Name),
					"Every upload and fetch entry needs both src and dst.")
			}
		}
	}

	for _, tgt := range sf.Targets {
		if len(tgt.Bindings) == 0 {
			return errors.New(errors.ErrManifest,
				fmt.Sprintf("Target '%s' has no commands", tgt.Name),
				"List at least one \"command [network]\" line.")
		}
	}

	return nil
}

func validateVersion(version string) error {
	if version == "" {
		return errors.New(errors.ErrManifest,
			"Supfile has no version",
			fmt.Sprintf("Add a version line, e.g. version: %s", SupportedVersions[len(SupportedVersions)-1]))
	}
	for _, v := range SupportedVersions {
		if v == version {
			return nil
		}
	}
	return errors.New(errors.ErrManifest,
		fmt.Sprintf("Unsupported Supfile version %q", version),
		"Supported versions: "+strings.Join(SupportedVersions, ", "))
}

func validateNetwork(net Network) error {
	for i, entry := range net.Hosts {
		switch {
		case entry.Record != nil:
			if strings.TrimSpace(entry.Record.Host) == "" {
				return errors.New(errors.ErrManifest,
					fmt.Sprintf("Network '%s': host #%d has no host field", net.Name, i+1),
					"Set host: on every literal host record.")
			}
		case strings.TrimSpace(entry.Spec) == "":
			return errors.New(errors.ErrManifest,
				fmt.Sprintf("Network '%s': host #%d is empty", net.Name, i+1),
				"Remove the empty entry or fill in a host.")
		}
	}
	return nil
}
