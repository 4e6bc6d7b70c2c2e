package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/orchestrator"
	"github.com/shaiso/Codeshift/internal/repo"
	"github.com/shaiso/Codeshift/internal/telemetry"
)

const defaultRunsLimit = 50

// Transform запускает трансформацию всех файлов.
// POST /api/v1/transform
func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	mode, ok := domain.ParseProcessingMode(req.Mode)
	if !ok {
		BadRequest(w, "mode must be single or multi")
		return
	}

	h.submit(w, r, orchestrator.Command{
		Kind:   domain.RunKindTransform,
		Prompt: req.Prompt,
		Mode:   mode,
	})
}

// Rethink запускает повторную обработку выбранного файла.
// POST /api/v1/rethink
func (h *Handler) Rethink(w http.ResponseWriter, r *http.Request) {
	var req RethinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	h.submit(w, r, orchestrator.Command{
		Kind:        domain.RunKindRethink,
		Instruction: req.Instruction,
	})
}

// Deploy запускает деплой всех файлов.
// POST /api/v1/deploy
func (h *Handler) Deploy(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, orchestrator.Command{Kind: domain.RunKindDeploy})
}

// Test запускает тестовый прогон проекта.
// POST /api/v1/test
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, orchestrator.Command{Kind: domain.RunKindTest})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, cmd orchestrator.Command) {
	logger := telemetry.FromContext(r.Context())

	if HandleRunError(w, logger, h.runner.Submit(r.Context(), cmd)) {
		return
	}

	logger.Info("run accepted", "kind", cmd.Kind, "mode", cmd.Mode)
	Accepted(w, commandResponse(cmd))
}

// ListRuns возвращает активные и завершённые запуски.
// GET /api/v1/runs?kind=...&status=...&limit=...&offset=...
//
// История берётся из БД, если она настроена, иначе из памяти процесса.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"), defaultRunsLimit)
	if err != nil {
		BadRequest(w, "invalid limit")
		return
	}
	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil {
		BadRequest(w, "invalid offset")
		return
	}

	resp := RunsResponse{Active: h.runner.ActiveRuns()}

	if h.runRepo == nil {
		resp.History = h.runner.RecentRuns(limit)
		Success(w, resp)
		return
	}

	runs, err := h.runRepo.List(r.Context(), repo.RunFilter{
		Kind:   domain.RunKind(q.Get("kind")),
		Status: domain.RunStatus(q.Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if HandleRepoError(w, telemetry.FromContext(r.Context()), err, "runs not found") {
		return
	}
	resp.History = runs
	Success(w, resp)
}

// queryInt парсит неотрицательное число из query, пустое значение — def.
func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
