package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"roptool/internal/analysis"
	"roptool/internal/binfmt"
	"roptool/internal/config"
	"roptool/internal/disasm"
	"roptool/internal/symbols"
	"roptool/internal/ui/colorize"
	"roptool/internal/ui/listing"
	"roptool/internal/ui/pager"
)

func newDisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [flags] [file]",
		Short: "Disassemble a binary",
		Long: `Disassemble from a virtual address or a file offset. Without either,
disassembly starts at the entry point, or at the start of the file when the
image has no entry point. Bytes that do not decode are listed as BAD and
skipped one at a time.`,
		Example: `
# Disassemble the whole segment holding the entry point
roptool dis ./a.out

# Disassemble 64 bytes at an address, AT&T syntax
roptool dis -a 0x401000 -l 64 -f att ./a.out
  `,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, args)
			if err != nil {
				return err
			}
			tui, _ := cmd.Flags().GetBool("tui")
			return runDis(cmd, cfg, tui)
		},
	}

	cmd.Flags().StringP("address", "a", "", "Start disassembling at address")
	cmd.Flags().StringP("offset", "o", "", "Start disassembling at file offset")
	cmd.Flags().StringP("len", "l", "", "Disassemble only this many bytes")
	cmd.Flags().StringP("arch", "A", "", "Select architecture (x86, x86-64, arm, arm64)")
	cmd.Flags().StringP("flavor", "f", config.DefaultFlavor, "Change flavor (intel, att)")
	cmd.Flags().BoolP("no-color", "N", false, "Do not colorize output")
	cmd.Flags().Bool("demangle", false, "Demangle C++ and Rust symbol names")
	cmd.Flags().Bool("highlight", false, "Syntax highlight operands")
	cmd.Flags().Bool("tui", false, "Browse the listing interactively")
	return cmd
}

func startSpec(cfg config.Config, img *binfmt.Image) analysis.AddressSpec {
	switch {
	case cfg.HasOffset:
		return analysis.FileOffset(cfg.Offset)
	case cfg.HasAddress:
		return analysis.Virtual(cfg.Address)
	default:
		return analysis.DefaultSpec(img)
	}
}

func runDis(cmd *cobra.Command, cfg config.Config, tui bool) error {
	img, err := binfmt.Open(cfg.File, cfg.ArchValue())
	if err != nil {
		return err
	}
	defer img.Close()

	slog.Debug("Loaded image",
		"file", cfg.File,
		"format", img.Format,
		"arch", img.Arch,
		"entry", fmt.Sprintf("0x%x", img.Entry),
		"segments", len(img.Segments),
		"symbols", len(img.Symbols))

	dec, err := disasm.New(img.Arch, cfg.FlavorValue())
	if err != nil {
		return fmt.Errorf("can't init disassembler: %w", err)
	}

	var opts []symbols.Option
	if cfg.Demangle {
		opts = append(opts, symbols.WithDemangle())
	}
	d := &analysis.Disassembler{
		Image:   img,
		Decoder: dec,
		Symbols: symbols.New(img.Symbols, opts...),
	}

	spec := startSpec(cfg, img)
	ranges, err := d.Plan(spec, cfg.Length)
	if err != nil {
		return err
	}
	for _, r := range ranges {
		slog.Debug("Walking range", "start", spec, "base", fmt.Sprintf("0x%x", r.Base), "length", r.Length)
	}

	color := cfg.Color || tui
	popts := listing.Options{
		Color:     color,
		AddrWidth: listing.AddrWidth(img.Arch, spec.IsOffset()),
	}
	if color && cfg.Highlight {
		popts.Highlighter = colorize.New(img.Arch, cfg.FlavorValue())
	}
	printer := listing.New(cmd.OutOrStdout(), popts)

	if tui {
		return pager.Run(cmd.Context(), pager.New(filepath.Base(cfg.File), d.Events(ranges), printer))
	}
	return printer.Print(d.Events(ranges))
}
