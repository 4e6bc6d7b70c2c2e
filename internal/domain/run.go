package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — один запуск координатора или стадии пайплайна над набором файлов.
//
// Run ограничен парой установки/сброса busy-флага в Ledger. История runs
// сохраняется в БД (если она настроена) и публикуется в очередь событий.
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// Kind — какой координатор выполняет run.
	Kind RunKind `json:"kind"`

	// Mode — режим трансформации (только для RunKindTransform).
	Mode ProcessingMode `json:"mode,omitempty"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// Total — количество файлов в run.
	Total int `json:"total"`

	// Succeeded/Failed — сколько файлов завершились успешно и с ошибкой.
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	// Error — текст ошибки уровня run (например, отказ пакетного вызова).
	Error string `json:"error,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения. Nil, пока run выполняется.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewRun создаёт run в статусе RUNNING.
func NewRun(kind RunKind, total int) *Run {
	return &Run{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    RunStatusRunning,
		Total:     total,
		StartedAt: time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// IsFinished возвращает true, если run завершён (в любом статусе).
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// RecordSuccess учитывает успешно обработанный файл.
func (r *Run) RecordSuccess() {
	r.Succeeded++
}

// RecordFailure учитывает файл, завершившийся ошибкой.
func (r *Run) RecordFailure() {
	r.Failed++
}

// Finish переводит run в терминальный статус по накопленным счётчикам.
//
//	нет ошибок            → SUCCEEDED
//	ошибки и нет успехов  → FAILED
//	иначе                 → PARTIAL
func (r *Run) Finish() {
	now := time.Now()
	r.FinishedAt = &now

	switch {
	case r.Failed == 0 && r.Error == "":
		r.Status = RunStatusSucceeded
	case r.Succeeded == 0:
		r.Status = RunStatusFailed
	default:
		r.Status = RunStatusPartial
	}
}

// MarkFailed переводит run в статус FAILED с ошибкой.
func (r *Run) MarkFailed(err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.Error = err
}
