package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Files
	mux.Handle("POST /api/v1/uploads", chain(http.HandlerFunc(h.Upload)))
	mux.Handle("GET /api/v1/files", chain(http.HandlerFunc(h.ListFiles)))
	mux.Handle("DELETE /api/v1/files", chain(http.HandlerFunc(h.ClearFiles)))
	mux.Handle("GET /api/v1/files/{name...}", chain(http.HandlerFunc(h.GetFile)))
	mux.Handle("PATCH /api/v1/files/{name...}", chain(http.HandlerFunc(h.EditFile)))
	mux.Handle("GET /api/v1/diff/{name...}", chain(http.HandlerFunc(h.GetDiff)))

	// Selection
	mux.Handle("GET /api/v1/selection", chain(http.HandlerFunc(h.GetSelection)))
	mux.Handle("PUT /api/v1/selection", chain(http.HandlerFunc(h.SetSelection)))

	// Runs
	mux.Handle("POST /api/v1/transform", chain(http.HandlerFunc(h.Transform)))
	mux.Handle("POST /api/v1/rethink", chain(http.HandlerFunc(h.Rethink)))
	mux.Handle("POST /api/v1/deploy", chain(http.HandlerFunc(h.Deploy)))
	mux.Handle("POST /api/v1/test", chain(http.HandlerFunc(h.Test)))
	mux.Handle("GET /api/v1/runs", chain(http.HandlerFunc(h.ListRuns)))

	// State
	mux.Handle("GET /api/v1/state", chain(http.HandlerFunc(h.GetState)))
	mux.Handle("GET /api/v1/logs", chain(http.HandlerFunc(h.ListLogs)))
	mux.Handle("GET /api/v1/logs/{name...}", chain(http.HandlerFunc(h.GetLog)))
}
