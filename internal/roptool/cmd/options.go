package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"roptool/internal/config"
)

// isTerminal reports whether the command writes to a terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// buildConfig layers defaults, the config file and the flags set on the
// command line, in that order.
func buildConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config file: %w", err)
	}

	if len(args) > 0 {
		cfg.File = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("arch") {
		cfg.Arch, _ = flags.GetString("arch")
	}
	if flags.Changed("flavor") {
		cfg.Flavor, _ = flags.GetString("flavor")
	}
	if flags.Changed("demangle") {
		cfg.Demangle, _ = flags.GetBool("demangle")
	}
	if flags.Changed("highlight") {
		cfg.Highlight, _ = flags.GetBool("highlight")
	}
	if flags.Changed("min-len") {
		cfg.MinStringLength, _ = flags.GetInt("min-len")
	}
	if flags.Changed("prot") {
		cfg.Protection, _ = flags.GetString("prot")
	}

	if noColor, _ := flags.GetBool("no-color"); noColor || os.Getenv("ROPTOOL_NO_COLOR") != "" || !isTerminal(cmd) {
		cfg.Color = false
	}

	for _, n := range []struct {
		flag string
		val  *uint64
		set  *bool
	}{
		{"address", &cfg.Address, &cfg.HasAddress},
		{"offset", &cfg.Offset, &cfg.HasOffset},
		{"len", &cfg.Length, nil},
	} {
		if flags.Lookup(n.flag) == nil || !flags.Changed(n.flag) {
			continue
		}
		s, _ := flags.GetString(n.flag)
		v, err := config.ParseNumber(s)
		if err != nil {
			return cfg, fmt.Errorf("--%s %q: not a number", n.flag, s)
		}
		*n.val = v
		if n.set != nil {
			*n.set = true
		}
	}

	if flags.Lookup("string") != nil {
		str, _ := flags.GetString("string")
		hexStr, _ := flags.GetString("hex")
		if cfg.Pattern, err = config.ParsePattern(str, hexStr); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
