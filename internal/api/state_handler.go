package api

import (
	"net/http"
)

// GetState возвращает снимок ledger.
// GET /api/v1/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	Success(w, h.ledger.Snapshot())
}

// ListLogs возвращает имена файлов, для которых есть логи.
// GET /api/v1/logs
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	names := h.ledger.LogFiles()
	List(w, names, len(names))
}

// GetLog возвращает накопленный лог файла.
// GET /api/v1/logs/{name...}
func (h *Handler) GetLog(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	text, ok := h.ledger.FileLog(name)
	if !ok {
		NotFound(w, "no logs for file")
		return
	}
	Success(w, LogResponse{FileName: name, Log: text})
}
