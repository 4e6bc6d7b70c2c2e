// Package orchestrator координирует стадии пайплайна над реестром файлов.
//
// Orchestrator отвечает за:
//   - Transform — трансформацию всех файлов (single: по запросу на файл
//     параллельно, multi: один пакетный запрос)
//   - Rethink — повторную обработку выбранного файла
//   - Deploy — последовательную генерацию артефактов и деплой каждого файла
//   - TestProject — последовательную генерацию unit test и артефактов
//   - Приём команд из RabbitMQ и запуск их в фоне
//
// Координаторы читают реестр, вызывают удалённые сервисы и записывают
// результаты обратно в реестр (по одному файлу через Update) и в ledger.
// Ошибка одного файла не влияет на остальные.
package orchestrator
