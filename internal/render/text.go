package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorGreen  = lipgloss.Color("#04B575")
	colorRed    = lipgloss.Color("#FF4672")
	colorYellow = lipgloss.Color("#FDFF90")
	colorSubtle = lipgloss.Color("#626262")

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	emptyStyle  = lipgloss.NewStyle().Foreground(colorSubtle).Italic(true)

	badgeColors = map[string]lipgloss.Color{
		BadgeSuccess: colorGreen,
		BadgeTimeout: colorYellow,
		BadgeError:   colorRed,
	}
)

// Headers are the column titles shared by the HTML page and the text view.
var Headers = []string{"Destination", "Status", "RTT (ms)", "Last success", "Updated"}

// Text renders the table for a terminal.
func (t Table) Text() string {
	if t.Empty() {
		return emptyStyle.Render(EmptyMessage)
	}

	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{r.Dest, r.Status.Text, r.RTT, r.SuccessedAt, r.UpdatedAt})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorSubtle)).
		Headers(Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(t.Rows) {
				return cellStyle.Foreground(badgeColors[t.Rows[row].Status.Category])
			}
			return cellStyle
		})
	return tbl.Render()
}
