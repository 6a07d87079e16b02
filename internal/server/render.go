package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"codeberg.org/altpic/altpic/configs"
)

// Message is the JSON body of every status or error reply.
type Message struct {
	Status  int     `json:"status"`
	Message string  `json:"message"`
	Errors  []Error `json:"errors,omitempty"`
}

// Error points at one rejected render parameter or upload field.
type Error struct {
	Location string `json:"location"`
	Error    string `json:"error"`
}

// Render writes value as a JSON body with the given status. A status
// below 100 keeps the default 200.
func (s *Server) Render(w http.ResponseWriter, r *http.Request, status int, value interface{}) {
	b := &bytes.Buffer{}
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		s.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if status >= 100 {
		w.WriteHeader(status)
	}
	w.Write(b.Bytes()) //nolint:errcheck
}

// Message replies with message. In dev mode, failure statuses are
// also logged.
func (s *Server) Message(w http.ResponseWriter, r *http.Request, message *Message) {
	s.Render(w, r, message.Status, message)

	if message.Status >= 400 && configs.Config.Main.DevMode {
		s.Log(r).WithField("message", message).Warn(message.Message)
	}
}

// TextMessage replies with a bare status and text.
func (s *Server) TextMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.Message(w, r, &Message{
		Status:  status,
		Message: msg,
	})
}

// Error logs err and replies with a generic 500.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	s.Log(r).WithError(err).Error("server error")
	s.TextMessage(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
