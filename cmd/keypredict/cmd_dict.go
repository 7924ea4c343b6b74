package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/bastiangx/keypredict/internal/utils"
	"github.com/bastiangx/keypredict/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <wordlist> <out.dict>",
		Short: "Compile a \"word frequency\" list into a dictionary file",
		Long: `build reads one "word frequency" pair per line ('-' reads stdin) and
writes the packed dictionary. Frequencies above 255 are clamped and
entries with a zero frequency are skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			legacy, _ := cmd.Flags().GetBool("legacy")
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				log.SetLevel(log.DebugLevel)
			}

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open word list: %w", err)
				}
				defer f.Close()
				in = f
			}

			b := dictionary.NewBuilder()
			added, skipped, err := dictionary.ReadWordList(in, b)
			if err != nil {
				return err
			}

			out, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[1], err)
			}
			w := bufio.NewWriter(out)
			if legacy {
				err = b.EncodeLegacy(w)
			} else {
				err = b.Encode(w)
			}
			if err == nil {
				err = w.Flush()
			}
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				os.Remove(args[1])
				return fmt.Errorf("failed to write %s: %w", args[1], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %s words (%d lines read, %d skipped)\n",
				args[1], utils.FormatWithCommas(b.Len()), added, skipped)
			return nil
		},
	}
	cmd.Flags().Bool("legacy", false, "Write a headerless legacy file")
	return cmd
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.dict>",
		Short: "Validate a dictionary file and print its statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			legacy, _ := cmd.Flags().GetBool("legacy")
			limit, _ := cmd.Flags().GetInt("words")

			open := dictionary.Open
			if legacy {
				open = dictionary.OpenLegacy
			}
			d, err := open(args[0])
			if err != nil {
				return err
			}
			defer d.Close()

			out := cmd.OutOrStdout()
			h, s := d.Header(), d.Stats()
			fmt.Fprintf(out, "file:      %s\n", args[0])
			fmt.Fprintf(out, "version:   %d\n", h.Version)
			fmt.Fprintf(out, "charset:   %s\n", charsetName(h.Flags))
			fmt.Fprintf(out, "legacy:    %t\n", s.Legacy)
			fmt.Fprintf(out, "words:     %s\n", utils.FormatWithCommas(s.Words))
			fmt.Fprintf(out, "nodes:     %s\n", utils.FormatWithCommas(s.Nodes))
			fmt.Fprintf(out, "groups:    %s\n", utils.FormatWithCommas(s.Groups))
			fmt.Fprintf(out, "max depth: %d\n", s.MaxDepth)
			fmt.Fprintf(out, "size:      %s bytes\n", utils.FormatWithCommas(s.Size))

			if limit > 0 {
				n := 0
				d.Words(func(word string, freq uint8) bool {
					fmt.Fprintf(out, "%6d  %s\n", freq, word)
					n++
					return n < limit
				})
			}
			return nil
		},
	}
	cmd.Flags().Bool("legacy", false, "Read a headerless legacy file")
	cmd.Flags().Int("words", 0, "Also list the first N words")
	return cmd
}

func charsetName(flags uint8) string {
	if flags&dictionary.FlagISO88597 != 0 {
		return "ISO-8859-7"
	}
	return "ISO-8859-1"
}
