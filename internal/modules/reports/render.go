package reports

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderText writes the dashboard as one light-bordered table per group.
func RenderText(w io.Writer, d Dashboard) {
	for _, group := range d.Groups {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.SetTitle(group.Title)

		for _, row := range group.Rows {
			t.AppendRow(table.Row{row.Label, row.Value})
		}
		t.Render()
	}
}

// RenderHTML writes the dashboard as HTML tables, one per group, suitable
// for embedding in a notebook or report page.
func RenderHTML(w io.Writer, d Dashboard) {
	for _, group := range d.Groups {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle(group.Title)

		for _, row := range group.Rows {
			t.AppendRow(table.Row{row.Label, row.Value})
		}
		t.RenderHTML()
	}
}

// Comparison is a side-by-side view of several dashboards, one column per
// job, built from batch results. All dashboards are assumed to share the
// group/row layout BuildDashboard produces.
type Comparison struct {
	Dashboards []Dashboard `json:"dashboards"`
}

// RenderComparisonText writes the comparison as one wide table per group
// with a column per target.
func RenderComparisonText(w io.Writer, c Comparison) {
	renderComparison(w, c, false)
}

// RenderComparisonHTML is the HTML variant of RenderComparisonText.
func RenderComparisonHTML(w io.Writer, c Comparison) {
	renderComparison(w, c, true)
}

func renderComparison(w io.Writer, c Comparison, html bool) {
	if len(c.Dashboards) == 0 {
		return
	}

	layout := c.Dashboards[0]
	for g, group := range layout.Groups {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.SetTitle(group.Title)

		header := table.Row{""}
		for _, d := range c.Dashboards {
			header = append(header, d.Target)
		}
		t.AppendHeader(header)

		for r, row := range group.Rows {
			out := table.Row{row.Label}
			for _, d := range c.Dashboards {
				out = append(out, cellAt(d, g, r))
			}
			t.AppendRow(out)
		}

		if html {
			t.RenderHTML()
		} else {
			t.Render()
		}
	}
}

func cellAt(d Dashboard, group, row int) string {
	if group >= len(d.Groups) || row >= len(d.Groups[group].Rows) {
		return ""
	}
	return d.Groups[group].Rows[row].Value
}
