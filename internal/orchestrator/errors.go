package orchestrator

import "errors"

// Ошибки валидации. Возвращаются до любого обращения к сервисам,
// состояние реестра и ledger при этом не меняется.
var (
	// ErrEmptyPrompt — пустой prompt или инструкция.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrNoSelection — для rethink не выбран файл.
	ErrNoSelection = errors.New("no file selected")

	// ErrUnknownMode — неизвестный режим трансформации.
	ErrUnknownMode = errors.New("unknown processing mode")

	// ErrUnknownKind — неизвестный тип команды.
	ErrUnknownKind = errors.New("unknown run kind")

	// ErrRunInProgress — запуск того же вида уже выполняется.
	ErrRunInProgress = errors.New("run already in progress")

	// ErrOrchestratorStopped — оркестратор остановлен.
	ErrOrchestratorStopped = errors.New("orchestrator stopped")
)

// IsValidation возвращает true для ошибок, которые означают
// некорректную команду, а не сбой.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyPrompt) ||
		errors.Is(err, ErrNoSelection) ||
		errors.Is(err, ErrUnknownMode) ||
		errors.Is(err, ErrUnknownKind)
}

// ErrDeployRejected — сервис деплоя вернул статус, отличный от "success".
var ErrDeployRejected = errors.New("deploy rejected")
