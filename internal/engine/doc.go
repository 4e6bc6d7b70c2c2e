// Package engine содержит примитивы выполнения пайплайна.
//
// Включает:
//   - join.go   — барьер: запуск N задач, ожидание всех, результат-или-ошибка по каждой
//   - prompt.go — рендеринг текстов запросов к сервису трансформации (Go templates)
//
// Engine не знает ни о реестре, ни о ledger: координаторы сами решают,
// что делать с результатом каждой задачи.
package engine
