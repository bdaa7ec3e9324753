package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/script-workspace/internal/adapter/presenter"
	"github.com/johnquangdev/script-workspace/internal/domain/entities"
	"github.com/johnquangdev/script-workspace/internal/usecase/script"
)

func newParseCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Split a markdown script into sections",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			parsed := script.ParseScriptMarkdown(markdown)

			if asJSON {
				return writeJSON(cmd, presenter.ToParseScriptResponse(parsed))
			}

			out := cmd.OutOrStdout()
			if len(parsed) == 0 {
				fmt.Fprintln(out, "No sections found")
				return nil
			}
			fmt.Fprintln(out, sectionsTable(parsed))
			fmt.Fprintf(out, "%d sections, %s characters\n", len(parsed), humanize.Comma(int64(totalChars(parsed))))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Render a markdown script as numbered chapters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			text, err := script.RenderScriptText(script.ParseScriptMarkdown(markdown))
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%s)\n", output, humanize.Bytes(uint64(len(text))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", script.ExportFileName, "Output file, - for stdout")
	return cmd
}

func sectionsTable(parsed []entities.ParsedSection) string {
	rows := make([][]string, len(parsed))
	for i, s := range parsed {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			preview(s.Title, 32),
			preview(s.Body, 48),
			humanize.Comma(int64(len([]rune(s.Body)))),
		}
	}
	return renderTable(
		[]string{"#", "Title", "Body", "Chars"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}

func totalChars(parsed []entities.ParsedSection) int {
	n := 0
	for _, s := range parsed {
		n += len([]rune(s.Body))
	}
	return n
}
