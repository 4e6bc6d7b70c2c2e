// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go        — Handler с DI (реестр, ledger, оркестратор, ingest, repo)
//   - routes.go         — регистрация маршрутов
//   - middleware.go     — middleware (logging, recovery)
//   - response.go       — унифицированные JSON-ответы и обработка ошибок
//   - dto.go            — Data Transfer Objects (request/response)
//   - file_handler.go   — /files, /diff, /selection
//   - upload_handler.go — /uploads (multipart)
//   - run_handler.go    — /transform, /rethink, /deploy, /test, /runs
//   - state_handler.go  — /state, /logs
//
// Запуски стадий принимаются синхронно (валидация, 202) и выполняются
// в фоне, независимо от контекста запроса.
package api
