package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssup/ssup/internal/errors"
)

// NewRootCmd builds the ssup command writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ssup [OPTIONS] NETWORK COMMAND [...]",
		Short: "Plan Supfile commands across networks of hosts",
		Long: `ssup reads a Supfile and turns its networks, commands and targets into a
playbook: the ordered list of (network, commands) pairs to run.

Arguments are read in one of three ways:
  NETWORK COMMAND|TARGET...   normal mode
  COMMAND|TARGET...           makefile mode, when the Supfile declares no networks
  TARGET...                   every argument is a target; each binding names its network

Examples:
  ssup production deploy
  ssup -e VERSION=1.4.2 --only '^web' production deploy
  ssup --sshconfig ~/.ssh/config release`,
		Args:          cobra.ArbitraryArgs,
		Version:       formatVersion(version),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ReadOptions(cmd)
			if err != nil {
				return errors.WrapWithCode(err, errors.ErrUsage, "Couldn't read options", "")
			}
			return Run(opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	AddFlags(cmd)
	cmd.SetVersionTemplate(versionText())
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.WrapWithCode(err, errors.ErrUsage,
			"Invalid option",
			"Run 'ssup --help' for the list of options.")
	})

	return cmd
}

// Execute runs the root command and exits with the code matching the error.
func Execute() {
	cmd := NewRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, err.Error())
		os.Exit(errors.ExitCode(err))
	}
}
