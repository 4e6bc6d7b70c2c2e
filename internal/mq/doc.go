// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — соединение с reconnect
//   - topology.go   — exchanges, queues, bindings
//   - publisher.go  — публикация событий пайплайна
//   - consumer.go   — потребление команд
//
// События (exchange codeshift.events, topic):
//   - run.started    — запуск стадии начался
//   - run.finished   — запуск завершился (статус и счётчики)
//   - file.updated   — запись файла изменилась
//   - file.log       — к логу файла добавлен текст
//
// Команды (exchange codeshift.commands, direct → очередь runs.requested):
//   - run.requested  — запустить transform/rethink/deploy/test
package mq
