package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gcexport/internal/export"
)

// renderSummary formats the end-of-run counters as a small two-column table.
func renderSummary(summary export.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	tw.AppendHeader(table.Row{"Result", "Count"})
	rows := []struct {
		label string
		count int
	}{
		{"Activities requested", summary.Total},
		{"Downloaded", summary.Downloaded},
		{"Skipped (already on disk)", summary.Skipped},
		{"Empty (no data retained)", summary.Empty},
		{"Catalog rows appended", summary.CatalogRows},
	}
	for _, row := range rows {
		tw.AppendRow(table.Row{row.label, strconv.Itoa(row.count)})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
