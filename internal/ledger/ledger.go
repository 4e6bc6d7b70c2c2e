package ledger

import (
	"sort"
	"sync"

	"github.com/shaiso/Codeshift/internal/domain"
)

// Ledger — потокобезопасное состояние процесса.
type Ledger struct {
	mu sync.RWMutex

	isUpdating  bool
	isTesting   bool
	isDeploying bool

	// progress — количество завершённых единиц текущего запуска.
	// Монотонно растёт внутри запуска, сбрасывается в StartRun.
	progress int
	total    int

	// testProgress — строки прогресса теста, очищаются в StartTestRun.
	testProgress []string
	testResult   *string

	// fileLogs — FileName → накопленный текст. Не очищается между запусками.
	fileLogs map[string]string
}

// Snapshot — согласованная копия состояния для наблюдателей.
type Snapshot struct {
	IsUpdating   bool              `json:"is_updating"`
	IsTesting    bool              `json:"is_testing"`
	IsDeploying  bool              `json:"is_deploying"`
	Progress     int               `json:"progress"`
	Total        int               `json:"total"`
	TestProgress []string          `json:"test_progress"`
	TestResult   *string           `json:"test_result,omitempty"`
	FileLogs     map[string]string `json:"file_logs"`
}

// New создаёт пустой Ledger.
func New() *Ledger {
	return &Ledger{
		fileLogs: make(map[string]string),
	}
}

// SetUpdating выставляет флаг трансформации.
func (l *Ledger) SetUpdating(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.isUpdating = v
}

// SetTesting выставляет флаг тестового прогона.
func (l *Ledger) SetTesting(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.isTesting = v
}

// SetProgress устанавливает прогресс одним шагом (batch-режим, rethink).
func (l *Ledger) SetProgress(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress = n
}

// IncrementProgress атомарно увеличивает прогресс на единицу.
func (l *Ledger) IncrementProgress() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress++
}

// SetTestResult устанавливает итоговую строку теста.
func (l *Ledger) SetTestResult(result string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.testResult = &result
}

// AddTestProgress добавляет одну строку прогресса теста.
func (l *Ledger) AddTestProgress(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.testProgress = append(l.testProgress, msg)
}

// AddFileLog дописывает text к логу файла (создаёт лог, если его нет).
// Предыдущее содержимое никогда не перезаписывается.
func (l *Ledger) AddFileLog(fileName, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fileLogs[fileName] += text
}

// StartRun начинает запуск трансформации: isUpdating=true, progress=0.
func (l *Ledger) StartRun(total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.startRunLocked(total)
}

// TryStartRun — StartRun, который не срабатывает, если трансформация уже идёт.
// Проверка и старт выполняются под одной блокировкой.
func (l *Ledger) TryStartRun(total int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isUpdating {
		return false
	}
	l.startRunLocked(total)
	return true
}

func (l *Ledger) startRunLocked(total int) {
	l.isUpdating = true
	l.progress = 0
	l.total = total
}

// FinishRun завершает запуск трансформации.
func (l *Ledger) FinishRun() {
	l.SetUpdating(false)
}

// StartTestRun начинает тестовый прогон: очищает строки прогресса и
// выставляет промежуточный результат.
func (l *Ledger) StartTestRun() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.startTestRunLocked()
}

// TryStartTestRun — StartTestRun, который не срабатывает во время другого прогона.
func (l *Ledger) TryStartTestRun() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isTesting {
		return false
	}
	l.startTestRunLocked()
	return true
}

func (l *Ledger) startTestRunLocked() {
	l.isTesting = true
	l.testProgress = []string{domain.TestMsgStarted}
	running := domain.TestResultRunning
	l.testResult = &running
}

// FinishTestRun добавляет строку завершения, выставляет result и снимает isTesting.
func (l *Ledger) FinishTestRun(result string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.testProgress = append(l.testProgress, domain.TestMsgFinished)
	l.testResult = &result
	l.isTesting = false
}

// TryStartDeploy выставляет флаг деплоя, если деплой ещё не идёт.
func (l *Ledger) TryStartDeploy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isDeploying {
		return false
	}
	l.isDeploying = true
	return true
}

// FinishDeploy снимает флаг деплоя.
func (l *Ledger) FinishDeploy() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.isDeploying = false
}

// Reset сбрасывает всё состояние, включая логи файлов.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.isUpdating = false
	l.isTesting = false
	l.isDeploying = false
	l.progress = 0
	l.total = 0
	l.testProgress = nil
	l.testResult = nil
	l.fileLogs = make(map[string]string)
}

// IsUpdating возвращает флаг трансформации.
func (l *Ledger) IsUpdating() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.isUpdating
}

// IsTesting возвращает флаг тестового прогона.
func (l *Ledger) IsTesting() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.isTesting
}

// IsDeploying возвращает флаг деплоя.
func (l *Ledger) IsDeploying() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.isDeploying
}

// Progress возвращает текущий прогресс и размер запуска.
func (l *Ledger) Progress() (done, total int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.progress, l.total
}

// FileLog возвращает накопленный лог файла.
func (l *Ledger) FileLog(fileName string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	text, ok := l.fileLogs[fileName]
	return text, ok
}

// LogFiles возвращает отсортированный список файлов, у которых есть логи.
func (l *Ledger) LogFiles() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.fileLogs))
	for name := range l.fileLogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot возвращает копию состояния.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Snapshot{
		IsUpdating:   l.isUpdating,
		IsTesting:    l.isTesting,
		IsDeploying:  l.isDeploying,
		Progress:     l.progress,
		Total:        l.total,
		TestProgress: append([]string(nil), l.testProgress...),
		FileLogs:     make(map[string]string, len(l.fileLogs)),
	}
	if l.testResult != nil {
		result := *l.testResult
		s.TestResult = &result
	}
	for k, v := range l.fileLogs {
		s.FileLogs[k] = v
	}
	return s
}
