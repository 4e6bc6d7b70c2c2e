// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики запусков и обращений к удалённым сервисам
//
// Метрики регистрируются в глобальном реестре Prometheus и отдаются
// на /metrics endpoint.
package telemetry
