package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Codeshift/internal/domain"
)

// ListFiles возвращает список файлов в порядке загрузки.
// GET /api/v1/files
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	var selected string
	if rec, ok := h.registry.Selected(); ok {
		selected = rec.FileName
	}

	files := h.registry.Files()
	result := make([]FileSummary, len(files))
	for i, f := range files {
		result[i] = FileSummaryFromDomain(f, selected)
	}

	List(w, result, len(result))
}

// GetFile возвращает полную запись файла.
// GET /api/v1/files/{name...}
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.registry.Get(r.PathValue("name"))
	if !ok {
		NotFound(w, "file not found")
		return
	}
	Success(w, rec)
}

// EditFile заменяет рабочий код файла.
// PATCH /api/v1/files/{name...}
func (h *Handler) EditFile(w http.ResponseWriter, r *http.Request) {
	var req EditFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.NewCode == nil {
		BadRequest(w, "new_code is required")
		return
	}

	name := r.PathValue("name")
	if !h.registry.Update(name, domain.FilePatch{NewCode: req.NewCode}) {
		NotFound(w, "file not found")
		return
	}

	rec, _ := h.registry.Get(name)
	Success(w, rec)
}

// ClearFiles очищает реестр, выбор и ledger.
// DELETE /api/v1/files
func (h *Handler) ClearFiles(w http.ResponseWriter, r *http.Request) {
	if h.ledger.IsUpdating() || h.ledger.IsTesting() || h.ledger.IsDeploying() {
		Conflict(w, "cannot clear files while a run is in progress")
		return
	}

	h.registry.Clear()
	h.ledger.Reset()
	NoContent(w)
}

// GetDiff возвращает unified diff OldCode → NewCode.
// GET /api/v1/diff/{name...}
func (h *Handler) GetDiff(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	diff, ok := h.registry.Diff(name)
	if !ok {
		NotFound(w, "file not found")
		return
	}
	Success(w, DiffResponse{FileName: name, Diff: diff})
}

// GetSelection возвращает выбранный файл.
// GET /api/v1/selection
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.registry.Selected()
	if !ok {
		NotFound(w, "no file selected")
		return
	}
	Success(w, rec)
}

// SetSelection выбирает файл (пустое имя сбрасывает выбор).
// PUT /api/v1/selection
func (h *Handler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.FileName == "" {
		h.registry.Unselect()
		NoContent(w)
		return
	}

	if !h.registry.Select(req.FileName) {
		NotFound(w, "file not found")
		return
	}

	rec, _ := h.registry.Selected()
	Success(w, rec)
}
