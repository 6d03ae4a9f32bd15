package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"roptool/internal/roptool/log"
)

// Version is set at build time.
var Version = "dev"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "roptool",
		Short: "Disassemble and search executable images",
		Long: `roptool walks the loadable segments of ELF, Mach-O, PE and raw images.
It disassembles from an address or a file offset and searches segments
for printable strings or byte patterns.`,
		Example: `
# Disassemble 32 bytes at the entry point
roptool dis -l 32 ./a.out

# Disassemble raw bytes as ARM64 from offset 0x40
roptool dis -A arm64 -o 0x40 firmware.bin

# List printable strings of at least 8 bytes in readable segments
roptool search -a -n 8 ./a.out
  `,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			log.Setup(debug)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Configuration file (default ./.roptool.yaml, then the XDG config dir)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.AddCommand(newDisCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newSchemaCmd())
	return rootCmd
}

// Execute runs the command line and exits with status 1 on error.
func Execute() {
	defer func() { _ = log.Close() }()

	rootCmd := NewRootCmd()

	// fang renders help and errors for humans; plain cobra when piped
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
