// Package cli реализует инструмент командной строки Codeshift.
//
// # Обзор
//
// CLI — клиентская утилита для Codeshift API. Работает через HTTP и не
// импортирует api/orchestrator; из внутренних пакетов использует только
// ingest.FromDir, чтобы обходить каталог так же, как сервер.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для API. Инкапсулирует запросы, разбор ответов
// (DataResponse, ListResponse, ErrorResponse) и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	files, err := client.ListFiles()
//
// ## Output
//
// Форматирование вывода:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//   - Текст как есть (код, diff, логи)
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr:
// codeshift files list --json | jq .
//
// ## Commands
//
//   - upload DIR
//   - files: list, show, diff, select, edit, clear
//   - transform, rethink, deploy, test (--wait опрашивает /state)
//   - status, logs [FILE], runs
//
// Каждая команда создаётся фабричной функцией (NewFilesCmd и т.д.),
// принимающей clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
