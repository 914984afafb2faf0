package render

import (
	"bytes"
	"html/template"
	"time"

	"pingboard/internal/models"
)

// Placeholder stands in for any absent or unusable value.
const Placeholder = "—"

// EmptyMessage is shown in the single placeholder row when there is no data.
const EmptyMessage = "No data."

// Columns is the number of cells per row.
const Columns = 5

// Badge categories.
const (
	BadgeSuccess = "success"
	BadgeTimeout = "timeout"
	BadgeError   = "error"
)

// Badge is the styled status label of one row.
type Badge struct {
	Category string
	Text     string
}

// Class returns the CSS class list of the badge.
func (b Badge) Class() string {
	return "badge " + b.Category
}

// Row holds the display strings of one ping record. Values are unescaped;
// escaping happens when the row is projected into HTML.
type Row struct {
	Dest        string
	Status      Badge
	RTT         string
	SuccessedAt string
	UpdatedAt   string
}

// Table is the result of one draw call.
type Table struct {
	Rows    []Row
	DrawnAt time.Time
}

// Empty reports whether the table renders as the "No data." placeholder.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Renderer projects datasets into tables.
type Renderer struct {
	locale Locale
	now    func() time.Time
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithClock overrides the clock read at each draw.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a renderer formatting timestamps for locale.
func New(locale Locale, opts ...Option) *Renderer {
	r := &Renderer{locale: locale, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Locale returns the renderer's locale.
func (r *Renderer) Locale() Locale {
	return r.locale
}

// Draw builds the table for dataset. The draw time is read when Draw is
// called and is shared by every row.
func (r *Renderer) Draw(dataset models.Dataset) Table {
	drawnAt := r.now()
	records, ok := dataset.Records()
	if !ok || len(records) == 0 {
		return Table{DrawnAt: drawnAt}
	}

	updated := r.locale.Format(drawnAt)
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, r.row(rec, updated))
	}
	return Table{Rows: rows, DrawnAt: drawnAt}
}

func (r *Renderer) row(rec models.PingRecord, updated string) Row {
	row := Row{
		Dest:        Placeholder,
		Status:      badgeFor(rec.Status),
		RTT:         Placeholder,
		SuccessedAt: Placeholder,
		UpdatedAt:   updated,
	}
	if rec.Dest != nil {
		row.Dest = *rec.Dest
	}
	if rec.RTT != nil {
		row.RTT = *rec.RTT
	}
	if rec.SuccessedAt != nil {
		row.SuccessedAt = r.locale.FormatTimestamp(*rec.SuccessedAt)
	}
	return row
}

func badgeFor(status *string) Badge {
	if status == nil || *status == "" {
		return Badge{Category: BadgeError, Text: BadgeError}
	}
	switch *status {
	case BadgeSuccess:
		return Badge{Category: BadgeSuccess, Text: *status}
	case BadgeTimeout:
		return Badge{Category: BadgeTimeout, Text: *status}
	default:
		return Badge{Category: BadgeError, Text: *status}
	}
}

var rowsTemplate = template.Must(template.New("rows").Parse(
	`{{- if not .Rows -}}
<tr><td colspan="{{.Columns}}" class="empty">{{.EmptyMessage}}</td></tr>
{{- else -}}
{{- range .Rows}}
<tr>
  <td class="mono">{{.Dest}}</td>
  <td><span class="{{.Status.Class}}">{{.Status.Text}}</span></td>
  <td class="num">{{.RTT}}</td>
  <td>{{.SuccessedAt}}</td>
  <td>{{.UpdatedAt}}</td>
</tr>
{{- end}}
{{- end}}`))

// HTML renders the table body fragment. Every dataset-derived value is
// escaped by html/template.
func (t Table) HTML() (template.HTML, error) {
	var buf bytes.Buffer
	err := rowsTemplate.Execute(&buf, struct {
		Rows         []Row
		Columns      int
		EmptyMessage string
	}{t.Rows, Columns, EmptyMessage})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
