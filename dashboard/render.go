package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/melkeydev/datadesk/types"
)

const barWidth = 40

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Bold(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// RenderCounts lists each table with its row count and a bar scaled to the
// largest table.
func RenderCounts(counts []types.TableCount) string {
	if len(counts) == 0 {
		return mutedStyle.Render("No tables in the database.")
	}

	var largest int64
	nameWidth := 0
	for _, c := range counts {
		largest = max(largest, c.Rows)
		nameWidth = max(nameWidth, lipgloss.Width(c.Name))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Rows per table"))
	b.WriteString("\n")
	for _, c := range counts {
		n := 0
		if largest > 0 {
			n = int(c.Rows * barWidth / largest)
		}
		if n == 0 && c.Rows > 0 {
			n = 1
		}
		fmt.Fprintf(&b, "%s %s %d\n",
			labelStyle.Render(fmt.Sprintf("%-*s", nameWidth, c.Name)),
			barStyle.Render(strings.Repeat("█", n)),
			c.Rows)
	}
	return b.String()
}

// RenderPreview draws sample rows as a table with sorted column headers.
func RenderPreview(name string, rows []map[string]any) string {
	title := titleStyle.Render(name)
	if len(rows) == 0 {
		return title + "\n" + mutedStyle.Render("(empty)")
	}

	var headers []string
	for k := range rows[0] {
		headers = append(headers, k)
	}
	slices.Sort(headers)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = formatCell(r[h])
		}
		t.Row(cells...)
	}

	return title + "\n" + t.Render()
}

func RenderStats(s types.Stats) string {
	line := func(label string, v *float64) string {
		val := "-"
		if v != nil {
			val = fmt.Sprintf("%g", *v)
		}
		return labelStyle.Render(label) + " " + val
	}
	return strings.Join([]string{
		titleStyle.Render("Record values"),
		line("Max:", s.Max),
		line("Min:", s.Min),
		line("Avg:", s.Avg),
	}, "\n")
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return x.Format(time.DateTime)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
