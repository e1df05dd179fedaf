package present

import (
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/dealscan/internal/export"
	"github.com/ppiankov/dealscan/internal/model"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Heading}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: 0.4rem; text-align: left; }
.status { padding: 0.6rem; border-radius: 4px; }
.success { background: #e6f4ea; }
.warning { background: #fef7e0; }
.failed { color: #b00020; }
</style>
</head>
<body>
<h1>{{.Heading}}</h1>
<p class="intro">Acquisition and merger news from the past {{.WindowDays}} days.</p>
{{range .Failed}}<p class="failed">{{.Term}}: {{.Err}}</p>
{{end}}<p class="status {{if .Deals}}success{{else}}warning{{end}}">{{.Status}}</p>
{{if .Deals}}
<table>
<thead><tr><th>date</th><th>buyer</th><th>target</th><th>title</th><th>link</th></tr></thead>
<tbody>
{{range .Deals}}<tr><td>{{.DateString}}</td><td>{{.Buyer}}</td><td>{{.Target}}</td><td><a href="{{.Link}}">{{.Title}}</a></td><td>{{.Link}}</td></tr>
{{end}}</tbody>
</table>
<p class="downloads">
<a class="download" href="/download?format=csv">Download CSV</a>
<a class="download" href="/download?format=xlsx">Download Excel</a>
</p>
{{end}}
</body>
</html>
`))

type pageData struct {
	Heading    string
	Status     string
	WindowDays int
	Deals      []model.Deal
	Failed     []model.TermResult
}

// Server serves one completed report. Downloads re-encode the in-memory
// deals; nothing is fetched again.
type Server struct {
	report     *model.BatchReport
	exporter   *export.Exporter
	windowDays int
	logger     zerolog.Logger
}

// NewServer creates a dashboard for report
func NewServer(report *model.BatchReport, exporter *export.Exporter, windowDays int, logger zerolog.Logger) *Server {
	return &Server{
		report:     report,
		exporter:   exporter,
		windowDays: windowDays,
		logger:     logger,
	}
}

// Handler returns the dashboard routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /download", s.handleDownload)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Heading:    Heading,
		Status:     StatusMessage(len(s.report.Deals)),
		WindowDays: s.windowDays,
		Deals:      s.report.Deals,
		Failed:     s.report.Failed(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("render dashboard")
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.report.Empty() {
		http.Error(w, StatusMessage(0), http.StatusNotFound)
		return
	}

	data, err := s.exporter.Bytes(format, s.report.Deals)
	if err != nil {
		s.logger.Error().Err(err).Str("format", format).Msg("encode download")
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	name := s.exporter.FileName(format, s.report.StartedAt.In(time.Local))
	w.Header().Set("Content-Type", export.MIMEType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(data)

	s.logger.Info().Str("format", format).Int("deals", len(s.report.Deals)).Msg("download served")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
