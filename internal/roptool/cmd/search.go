package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"roptool/internal/analysis"
	"roptool/internal/binfmt"
	"roptool/internal/config"
	"roptool/internal/scan"
	"roptool/internal/ui/listing"
)

var errNothingToSearch = errors.New("nothing to search: use --all-strings, --string or --hex")

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [flags] [file]",
		Short: "Search segments for strings or byte patterns",
		Long: `Search every segment whose protection matches --prot. With --all-strings,
list runs of printable characters of at least --min-len bytes; with
--string or --hex, list every occurrence of the given bytes. Each segment
ends with the number of hits found in it.`,
		Example: `
# Printable strings in readable segments
roptool search -a ./a.out

# Every "pop rax; ret" in executable segments
roptool search -x "58 c3" -p x ./a.out
  `,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, args)
			if err != nil {
				return err
			}
			allStrings, _ := cmd.Flags().GetBool("all-strings")
			return runSearch(cmd, cfg, allStrings)
		},
	}

	cmd.Flags().BoolP("all-strings", "a", false, "Search all printable strings")
	cmd.Flags().IntP("min-len", "n", config.DefaultMinStringLength, "Minimum string length")
	cmd.Flags().StringP("string", "s", "", "Search a string")
	cmd.Flags().StringP("hex", "x", "", "Search hex bytes (e.g. \"58 c3\")")
	cmd.Flags().StringP("prot", "p", config.DefaultProtection, "Segment protection filter (r, w, x)")
	cmd.Flags().StringP("arch", "A", "", "Select architecture (x86, x86-64, arm, arm64)")
	cmd.Flags().BoolP("no-color", "N", false, "Do not colorize output")
	return cmd
}

func runSearch(cmd *cobra.Command, cfg config.Config, allStrings bool) error {
	var analyzer scan.Analyzer
	noun := "strings"
	switch {
	case cfg.Pattern != nil:
		analyzer = scan.PatternMatches(cfg.Pattern)
		noun = "matches"
	case allStrings:
		analyzer = scan.PrintableRuns(cfg.MinStringLength)
	default:
		return errNothingToSearch
	}

	img, err := binfmt.Open(cfg.File, cfg.ArchValue())
	if err != nil {
		return err
	}
	defer img.Close()

	slog.Debug("Searching image", "file", cfg.File, "segments", len(img.Segments), "prot", cfg.ProtValue())

	printer := listing.New(cmd.OutOrStdout(), listing.Options{Color: cfg.Color, Noun: noun})
	return printer.Print(analysis.Search(img, cfg.ProtValue(), analyzer))
}
