package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/remote"
)

const sequenceHeader = remote.SequenceHeader

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeMessage(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "client error",
		slog.Int("status", status), slog.String("message", message))
	app.writeMessage(w, r, status, message)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

func (app *application) writeMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, remote.Message{Message: message})
}

// writeJSON encodes v before writing the headers so that an encoding failure can still become a 500.
func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "failed to encode response",
			errors.SlogError(errors.Wrap(err, "encode json")))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
