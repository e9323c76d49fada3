package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/stemsi/qbank-backend/internal/extractor"
	"github.com/stemsi/qbank-backend/internal/service"
)

const previewWidth = 48

func newExtractCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Show how a document splits into questions without saving anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			importOpts, err := opts.importOptions()
			if err != nil {
				return err
			}
			data, err := readDocument(args[0])
			if err != nil {
				return err
			}
			doc, err := service.DecodeDocument(data, importOpts.Charset)
			if err != nil {
				return err
			}

			records := extractor.Extract(doc, importOpts.Override)
			renderRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

// renderRecords prints one row per extracted record.
func renderRecords(w io.Writer, records []extractor.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"#", "Type", "Difficulty", "Question", "Answer"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: previewWidth, WidthMaxEnforcer: text.Trim},
		{Number: 5, WidthMax: previewWidth, WidthMaxEnforcer: text.Trim},
	})

	for i, r := range records {
		t.AppendRow(table.Row{i + 1, r.Type, r.Difficulty.Label(), preview(r.Question), preview(r.Answer)})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d questions", len(records)), ""})
	t.Render()
}

// preview flattens multi-line text into a single table cell.
func preview(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
