package domain

import "strings"

// RunStatus — статус выполнения run.
//
// Жизненный цикл:
//
//	RUNNING → SUCCEEDED
//	        ↘ PARTIAL (часть файлов с ошибкой)
//	        ↘ FAILED
type RunStatus string

const (
	// RunStatusRunning — run в процессе выполнения.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — все файлы обработаны успешно.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusPartial — часть файлов завершилась ошибкой.
	RunStatusPartial RunStatus = "PARTIAL"

	// RunStatusFailed — ни один файл не обработан успешно.
	RunStatusFailed RunStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusPartial, RunStatusFailed:
		return true
	default:
		return false
	}
}

// RunKind — тип run (какой координатор его выполняет).
type RunKind string

const (
	RunKindTransform RunKind = "transform"
	RunKindRethink   RunKind = "rethink"
	RunKindDeploy    RunKind = "deploy"
	RunKindTest      RunKind = "test"
)

// ParseRunKind парсит строку в RunKind. Второе значение — false для неизвестного типа.
func ParseRunKind(s string) (RunKind, bool) {
	switch RunKind(strings.ToLower(strings.TrimSpace(s))) {
	case RunKindTransform:
		return RunKindTransform, true
	case RunKindRethink:
		return RunKindRethink, true
	case RunKindDeploy:
		return RunKindDeploy, true
	case RunKindTest:
		return RunKindTest, true
	default:
		return "", false
	}
}

// ProcessingMode — алгоритм Transform Coordinator.
type ProcessingMode string

const (
	// ModeSingle — по одному запросу на файл, запросы выполняются параллельно.
	ModeSingle ProcessingMode = "single"

	// ModeMulti — один пакетный запрос со всеми файлами.
	ModeMulti ProcessingMode = "multi"
)

// ParseProcessingMode парсит строку в ProcessingMode.
// Пустая строка означает режим по умолчанию (single).
func ParseProcessingMode(s string) (ProcessingMode, bool) {
	switch ProcessingMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSingle:
		return ModeSingle, true
	case ModeMulti:
		return ModeMulti, true
	default:
		return "", false
	}
}

// String возвращает строковое представление ProcessingMode.
func (m ProcessingMode) String() string {
	return string(m)
}
