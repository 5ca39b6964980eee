package table

import (
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
)

// MaxCellWidth bounds every cell; longer values are cut with "...".
const MaxCellWidth = 48

type ResourceTable struct {
	table *tablewriter.Table
	rows  int
}

func NewResourceTable(w io.Writer, headers ...string) *ResourceTable {
	if w == nil {
		w = os.Stdout
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	return &ResourceTable{table: table}
}

// Append adds one row. Empty cells render as "-".
func (rt *ResourceTable) Append(cells ...string) {
	row := make([]string, len(cells))
	for i, c := range cells {
		if c == "" {
			c = "-"
		}
		row[i] = truncate(c, MaxCellWidth)
	}
	rt.table.Append(row)
	rt.rows++
}

func (rt *ResourceTable) Len() int {
	return rt.rows
}

func (rt *ResourceTable) Render() {
	rt.table.Render()
}

// Deref returns "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
