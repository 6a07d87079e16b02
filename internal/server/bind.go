package server

import (
	"errors"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gorilla/schema"
)

var schemaDecoder *schema.Decoder

func init() {
	schemaDecoder = schema.NewDecoder()
	schemaDecoder.IgnoreUnknownKeys(true)
}

// BindQueryString binds the request's query string with the
// given pointer to a struct of data.
// If the destination implements Validate(), it runs the validation
// as well.
func (s *Server) BindQueryString(r *http.Request, dst interface{}) *Message {
	if err := schemaDecoder.Decode(dst, r.URL.Query()); err != nil {
		return decodeMessage(err)
	}

	v, ok := dst.(validation.Validatable)
	if !ok {
		return nil
	}

	return s.Validate(v)
}

// Validate runs the validation on a given destination data and returns
// a formatted message with the encountered errors, if any.
func (s *Server) Validate(data interface{}) *Message {
	err := validation.Validate(data)
	if err == nil {
		return nil
	}

	var verr validation.Errors
	if !errors.As(err, &verr) {
		return &Message{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	elist := []Error{}
	for k, v := range verr {
		elist = append(elist, Error{
			Location: k,
			Error:    v.Error(),
		})
	}
	sort.Slice(elist, func(i, j int) bool {
		return elist[i].Location < elist[j].Location
	})

	return &Message{
		Status:  http.StatusBadRequest,
		Message: "Invalid input data",
		Errors:  elist,
	}
}

func decodeMessage(err error) *Message {
	m := &Message{
		Status:  http.StatusBadRequest,
		Message: "Invalid query string",
	}

	var merr schema.MultiError
	if !errors.As(err, &merr) {
		m.Errors = []Error{{Location: "query", Error: err.Error()}}
		return m
	}

	for k, v := range merr {
		m.Errors = append(m.Errors, Error{Location: k, Error: v.Error()})
	}
	sort.Slice(m.Errors, func(i, j int) bool {
		return m.Errors[i].Location < m.Errors[j].Location
	})
	return m
}
