package server

import (
	"bytes"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"codeberg.org/altpic/altpic/configs"
)

var methodColors = map[string]*color.Color{
	http.MethodGet:    color.New(color.Bold, color.FgHiBlue),
	http.MethodHead:   color.New(color.Bold, color.FgHiBlue),
	http.MethodPost:   color.New(color.Bold, color.FgHiGreen),
	http.MethodPut:    color.New(color.Bold, color.FgYellow),
	http.MethodPatch:  color.New(color.Bold, color.FgYellow),
	http.MethodDelete: color.New(color.Bold, color.FgRed),
}

func statusColor(status int) *color.Color {
	switch {
	case status < 200:
		return color.New(color.FgBlue)
	case status < 300:
		return color.New(color.FgGreen)
	case status < 400:
		return color.New(color.FgCyan)
	case status < 500:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgRed)
}

func elapsedColor(d time.Duration) *color.Color {
	switch {
	case d < 250*time.Millisecond:
		return color.New(color.FgGreen)
	case d < time.Second:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgRed)
}

// httpLogFormatter prints one colored line per request, in dev mode.
type httpLogFormatter struct{}

func (f *httpLogFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b bytes.Buffer

	w := color.New(color.FgWhite)
	w.Fprint(&b, "[HTTP") //nolint:errcheck
	if reqID, ok := entry.Data["@id"]; ok {
		color.New(color.FgBlue).Fprintf(&b, " %s", reqID) //nolint:errcheck
	}
	w.Fprint(&b, "] ") //nolint:errcheck

	met, _ := entry.Data["http_method"].(string)
	c, ok := methodColors[met]
	if !ok {
		c = color.New(color.Bold, color.FgHiWhite)
	}
	c.Fprint(&b, met)                         //nolint:errcheck
	w.Fprintf(&b, " %s ", entry.Data["path"]) //nolint:errcheck

	status, _ := entry.Data["status"].(int)
	statusColor(status).Fprint(&b, status)                           //nolint:errcheck
	color.New(color.FgCyan).Fprintf(&b, " %d", entry.Data["length"]) //nolint:errcheck
	w.Fprint(&b, " in ")                                             //nolint:errcheck

	elapsed, _ := entry.Data["elapsed"].(time.Duration)
	elapsedColor(elapsed).Fprint(&b, elapsed) //nolint:errcheck

	b.WriteString("\n")
	return b.Bytes(), nil
}

// Logger is a middleware that logs requests.
func Logger() func(next http.Handler) http.Handler {
	return middleware.RequestLogger(newLogger())
}

func newLogger() *structuredLogger {
	l := &structuredLogger{logger: log.StandardLogger()}
	if configs.Config.Main.DevMode {
		color.NoColor = false
		l.logger = log.New()
		l.logger.Formatter = &httpLogFormatter{}
		l.logger.Out = log.StandardLogger().Out
		l.logger.Level = log.StandardLogger().Level
	}

	return l
}

type structuredLogger struct {
	logger *log.Logger
}

func (sl *structuredLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &structuredLoggerEntry{
		e: sl.logger.WithFields(log.Fields{
			"@id":         middleware.GetReqID(r.Context()),
			"http_method": r.Method,
			"remote_addr": r.RemoteAddr,
			"path":        r.RequestURI,
		}),
	}
}

type structuredLoggerEntry struct {
	e *log.Entry
}

func (l *structuredLoggerEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	l.e.WithFields(log.Fields{
		"status":  status,
		"length":  bytes,
		"elapsed": elapsed,
	}).Info("http")
}

func (l *structuredLoggerEntry) Panic(v interface{}, stack []byte) {
	l.e.WithField("recover", v).Error(string(stack))
}
