package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", app.home)
	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.HandleFunc("GET /api/form", app.getForm)
	mux.HandleFunc("POST /api/form", app.saveForm)
	mux.HandleFunc("GET /api/form/numbered", app.getNumberedForm)
	mux.HandleFunc("GET /preview", app.preview)
	mux.HandleFunc("OPTIONS /", preflight)
	mux.HandleFunc("/", app.notFound)

	common := alice.New(app.recoverPanic, app.logRequest, secureHeaders, cors, timeoutHandler(defaultTimeout))

	return common.Then(mux)
}
