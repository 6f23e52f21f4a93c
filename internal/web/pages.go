package web

// pages.go renders the two server-side pages: the upload form and the
// run history. The UI is deliberately minimal; the JSON API is the
// primary surface.

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/csvqc/csvqc/internal/store"
)

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>CSV Quality Check</title></head>
<body>
  <h1>CSV Quality Check</h1>
  <form action="/upload" method="post" enctype="multipart/form-data">
    <input type="file" name="file" accept=".csv" required>
    <button type="submit">Upload and profile</button>
  </form>
  <p><a href="/history">Run history</a></p>
</body>
</html>
`))

var historyTmpl = template.Must(template.New("history").Parse(`<!DOCTYPE html>
<html>
<head><title>Run History</title></head>
<body>
  <h1>Run History</h1>
  <table border="1" cellpadding="4">
    <tr>
      <th>Time</th><th>File</th><th>Status</th><th>Rows</th><th>Cols</th>
      <th>Top missing</th><th>Formats</th><th>Logical</th><th>Duplicates</th><th>Outliers</th>
    </tr>
    {{range .Records}}
    <tr>
      <td>{{.CreatedAt.Format "2006-01-02 15:04:05"}}</td>
      <td><a href="/api/report/{{.ID}}">{{.Filename}}</a></td>
      <td>{{.Status}}</td>
      <td>{{.RowCount}}</td>
      <td>{{.ColumnCount}}</td>
      <td>{{.TopMissing}}</td>
      <td>{{.Summary.FormatsTotal}}</td>
      <td>{{.Summary.LogicalTotal}}</td>
      <td>{{.Summary.Duplicates}}</td>
      <td>{{.Summary.Outliers}}</td>
    </tr>
    {{end}}
  </table>
  <p><a href="/">Upload another file</a></p>
</body>
</html>
`))

// historyRow augments a stored record with display-only fields.
type historyRow struct {
	store.Record
	TopMissing string
}

// handleIndex serves the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, nil); err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "failed to render page", err)
	}
}

// handleHistory serves the run history page.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListRecent(r.Context(), historyLimit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeStorage, "failed to load history", err)
		return
	}

	rows := make([]historyRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, historyRow{Record: rec, TopMissing: topMissing(&rec)})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := historyTmpl.Execute(w, map[string]any{"Records": rows}); err != nil {
		respondError(w, r, http.StatusInternalServerError, codeInternal, "failed to render page", err)
	}
}

// topMissing renders the worst null columns for the history table,
// e.g. "email: 12.5%, age: 3.33%". Columns without missing values are
// omitted.
func topMissing(rec *store.Record) string {
	if rec.Status != store.StatusCompleted {
		return ""
	}

	var parts []string
	for _, n := range rec.TopNulls {
		if n.Missing == 0 {
			continue
		}
		parts = append(parts, n.Column+": "+strconv.FormatFloat(n.MissingPct, 'f', -1, 64)+"%")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
