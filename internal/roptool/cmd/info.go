package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/x/term"
	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"roptool/internal/binfmt"
	"roptool/internal/roptool/styles"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [flags] [file]",
		Short: "Describe the segments and symbols of a binary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, args)
			if err != nil {
				return err
			}
			img, err := binfmt.Open(cfg.File, cfg.ArchValue())
			if err != nil {
				return err
			}
			defer img.Close()

			var buf bytes.Buffer
			if err := writeInfo(&buf, img); err != nil {
				return err
			}
			return renderMarkdown(cmd, buf.String())
		},
	}
	cmd.Flags().StringP("arch", "A", "", "Select architecture (x86, x86-64, arm, arm64)")
	return cmd
}

// writeInfo writes a markdown report of img.
func writeInfo(w io.Writer, img *binfmt.Image) error {
	md := markdown.NewMarkdown(w)
	md.H1(filepath.Base(img.Path))
	md.PlainText("")

	entry := "none"
	if img.Entry != 0 {
		entry = fmt.Sprintf("0x%x", img.Entry)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Format", string(img.Format)},
			{"Architecture", img.Arch.String()},
			{"Entry point", entry},
			{"File size", humanize.Bytes(img.MappedSize())},
			{"Segments", strconv.Itoa(len(img.Segments))},
			{"Symbols", strconv.Itoa(len(img.Symbols))},
		},
	})
	md.PlainText("")

	md.H2("Segments")
	md.PlainText("")
	if len(img.Segments) == 0 {
		md.PlainText("No loadable segments.")
		return md.Build()
	}
	rows := make([][]string, 0, len(img.Segments))
	for _, s := range img.Segments {
		rows = append(rows, []string{
			s.Name,
			fmt.Sprintf("0x%x", s.Addr),
			fmt.Sprintf("0x%x", s.End()),
			humanize.Bytes(s.Length),
			fmt.Sprintf("0x%x", s.Offset),
			s.Prot.String(),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Start", "End", "Size", "Offset", "Prot"},
		Rows:   rows,
	})
	md.PlainText("")
	return md.Build()
}

// renderMarkdown styles the report on a terminal and passes it through
// untouched otherwise.
func renderMarkdown(cmd *cobra.Command, text string) error {
	out := cmd.OutOrStdout()
	if !isTerminal(cmd) {
		_, err := io.WriteString(out, text)
		return err
	}

	width := 80
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		width = w
	}
	r, err := styles.MarkdownRenderer(width)
	if err != nil {
		return err
	}
	rendered, err := r.Render(text)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}
