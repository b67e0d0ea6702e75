package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/formtree"
	"github.com/myrjola/formtree/internal/models"
	"github.com/myrjola/formtree/internal/repositories"
	"github.com/myrjola/formtree/internal/snapshot"
)

const (
	maxFormBytes = 1 << 20

	msgNotArray  = "Form data must be an array of questions"
	msgMalformed = "Form data contains malformed questions"
	msgStale     = "stale form write ignored"
	msgSaved     = "Form saved successfully"
)

func (app *application) getForm(w http.ResponseWriter, r *http.Request) {
	tree, seq, err := app.forms.Get(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.Header().Set(sequenceHeader, strconv.FormatInt(seq, 10))
	app.writeJSON(w, r, http.StatusOK, tree)
}

func (app *application) getNumberedForm(w http.ResponseWriter, r *http.Request) {
	tree, seq, err := app.forms.Get(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.Header().Set(sequenceHeader, strconv.FormatInt(seq, 10))
	app.writeJSON(w, r, http.StatusOK, formtree.AssignNumbers(tree))
}

// saveForm replaces the stored form. A write carrying a sequence number older than the stored one is refused
// with 409 Conflict. A write without a sequence number is stored as the newest one.
func (app *application) saveForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			app.clientError(w, r, http.StatusRequestEntityTooLarge, "Form data is too large")
			return
		}
		app.clientError(w, r, http.StatusBadRequest, "could not read form data")
		return
	}

	if !json.Valid(data) {
		app.clientError(w, r, http.StatusBadRequest, msgNotArray)
		return
	}
	var tree models.Tree
	if tree, err = snapshot.Decode(data); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelDebug, "rejected form", errors.SlogError(err))
		if errors.Is(err, snapshot.ErrNotArray) {
			app.clientError(w, r, http.StatusBadRequest, msgNotArray)
			return
		}
		app.clientError(w, r, http.StatusBadRequest, msgMalformed)
		return
	}

	rawSeq := r.Header.Get(sequenceHeader)
	if rawSeq == "" {
		var seq int64
		if seq, err = app.forms.Save(ctx, tree); err != nil {
			app.serverError(w, r, err)
			return
		}
		w.Header().Set(sequenceHeader, strconv.FormatInt(seq, 10))
		app.writeMessage(w, r, http.StatusOK, msgSaved)
		return
	}

	seq, err := strconv.ParseInt(rawSeq, 10, 64)
	if err != nil || seq < 0 {
		app.clientError(w, r, http.StatusBadRequest, "invalid "+sequenceHeader+" header")
		return
	}
	if err = app.forms.SaveSequenced(ctx, seq, tree); err != nil {
		if errors.Is(err, repositories.ErrStaleWrite) {
			app.clientError(w, r, http.StatusConflict, msgStale)
			return
		}
		app.serverError(w, r, err)
		return
	}
	w.Header().Set(sequenceHeader, rawSeq)
	app.writeMessage(w, r, http.StatusOK, msgSaved)
}
