package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to flag names to form their environment variables,
// e.g. --sshconfig reads SSUP_SSHCONFIG.
const EnvPrefix = "SSUP"

// Options holds the resolved values of every root flag.
type Options struct {
	File          string
	Env           []string
	Debug         bool
	SSHConfig     string
	NoColor       bool
	DisablePrefix bool
	Only          string
	Except        string
	Output        string
}

// AddFlags registers the root flags on cmd.
func AddFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("file", "f", "", "custom path to Supfile (default ./Supfile.yml, then ./Supfile)")
	f.StringArrayP("env", "e", nil, "set environment variables (KEY=VALUE), repeatable")
	f.BoolP("debug", "D", false, "enable debug output")
	f.String("sshconfig", "", "read host settings from this SSH config file")
	f.BoolP("no-color", "c", false, "disable colored output")
	f.Bool("disable-prefix", false, "don't prefix command lines with the network name")
	f.String("only", "", "run only on hosts matching this regular expression")
	f.String("except", "", "skip hosts matching this regular expression")
	f.StringP("output", "o", "table", "plan output format: table or yaml")

	// Network and command names follow; don't treat their dashes as flags.
	f.SetInterspersed(false)
}

// ReadOptions resolves flag values, falling back to SSUP_* environment
// variables for flags that weren't given. Flags win over the environment.
func ReadOptions(cmd *cobra.Command) (Options, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return Options{}, err
	}

	// Repeated -e values may contain commas; take them verbatim when given.
	vars := v.GetStringSlice("env")
	if cmd.Flags().Changed("env") {
		if vars, err = cmd.Flags().GetStringArray("env"); err != nil {
			return Options{}, err
		}
	}

	return Options{
		File:          v.GetString("file"),
		Env:           vars,
		Debug:         v.GetBool("debug"),
		SSHConfig:     v.GetString("sshconfig"),
		NoColor:       v.GetBool("no-color"),
		DisablePrefix: v.GetBool("disable-prefix"),
		Only:          v.GetString("only"),
		Except:        v.GetString("except"),
		Output:        v.GetString("output"),
	}, nil
}
