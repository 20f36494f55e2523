package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/trendwatch/internal/trends"
)

const layoutHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- if .RefreshURL}}
<meta http-equiv="refresh" content="{{.RefreshSeconds}};url={{.RefreshURL}}">
{{- end}}
<style>
body { display: flex; flex-direction: column; justify-content: center; align-items: center; font-family: sans-serif; }
.spinner { margin: 50px auto; width: 50px; height: 50px; border: 5px solid #f3f3f3; border-top: 5px solid #3498db; border-radius: 50%; animation: spin 1s linear infinite; }
@keyframes spin { 0% { transform: rotate(0deg); } 100% { transform: rotate(360deg); } }
</style>
</head>
<body>
`

const layoutFoot = `</body>
</html>
`

var views = template.Must(template.New("views").Parse(
	`{{define "loading"}}` + layoutHead + `<h1>Fetching trending topics...</h1>
<div class="spinner"></div>
<p>Please wait while we retrieve the latest trends.</p>
` + layoutFoot + `{{end}}` +

		`{{define "topics"}}` + layoutHead + `<h1>Trending Topics</h1>
<ul>
{{- range .Topics}}
<li>{{.}}</li>
{{- end}}
{{- if .ShowMore}}
<li><a href="/fetch_again">Show more</a></li>
{{- end}}
</ul>
<h4>IP Address: {{.Address}}</h4>
<h2>JSON extract</h2>
<pre>{{.JSON}}</pre>
<h4>Fetched at: {{.FetchedAt}}</h4>
<button><a href="/fetch_again">Fetch again</a></button>
` + layoutFoot + `{{end}}` +

		`{{define "error"}}` + layoutHead + `<h1>Error: {{.Reason}}</h1>
<button><a href="/fetch_again">Fetch again</a></button>
` + layoutFoot + `{{end}}`,
))

type pageData struct {
	Title          string
	RefreshURL     string
	RefreshSeconds int

	Topics    []string
	ShowMore  bool
	Address   string
	JSON      string
	FetchedAt string

	Reason string
}

// visibleTopics returns the topics listed inline. A full list renders its last
// slot as a "Show more" link instead of a topic.
func visibleTopics(topics []string) ([]string, bool) {
	if len(topics) == trends.MaxTopics {
		return topics[:trends.MaxTopics-1], true
	}
	return topics, false
}

// prettyDocument renders the record document with four-space indentation and
// non-ASCII text left as is.
func prettyDocument(doc trends.RecordDocument) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (s *Server) renderSnapshot(w http.ResponseWriter, snap trends.Snapshot) {
	if snap.Status != trends.StatusCompleted || snap.Outcome == nil {
		s.renderLoading(w, "")
		return
	}
	if !snap.Outcome.OK() {
		s.render(w, "error", pageData{Title: "Trending Topics", Reason: snap.Outcome.Reason})
		return
	}

	doc := snap.Outcome.Record.Document()
	dump, err := prettyDocument(doc)
	if err != nil {
		s.logger.Error("render record failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	topics, showMore := visibleTopics(doc.Topics)
	s.render(w, "topics", pageData{
		Title:     "Trending Topics",
		Topics:    topics,
		ShowMore:  showMore,
		Address:   doc.Address,
		JSON:      dump,
		FetchedAt: doc.Timestamp,
	})
}

// renderLoading serves the spinner. The page reloads itself, or moves to
// target when one is given, after the configured delay.
func (s *Server) renderLoading(w http.ResponseWriter, target string) {
	if target == "" {
		target = "/"
	}
	s.render(w, "loading", pageData{
		Title:          "Fetching Trends...",
		RefreshURL:     target,
		RefreshSeconds: s.refreshSeconds,
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := views.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("execute template failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}
