// Package ledger хранит агрегированное состояние процесса: флаги занятости,
// прогресс текущего запуска, строки прогресса тестов и накопленные логи
// по файлам.
//
// Ledger — единственный экземпляр на сессию. Координаторы пишут в него через
// узкий набор методов, наблюдатели (API, CLI) читают через Snapshot.
package ledger
