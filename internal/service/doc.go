// Package service описывает контракт с удалёнными сервисами трансформации,
// деплоя и генерации тестов и содержит его реализации.
//
// Включает:
//   - contract.go    — интерфейсы и типы запросов/ответов
//   - http_client.go — JSON поверх HTTP (основной бэкенд)
//   - llm.go         — трансформация через chat-модель (eino)
//   - artifact.go    — проверка сгенерированного YAML манифеста
//   - codec.go       — base64 для payload деплоя
//
// Семантика самих сервисов (что именно делает модель, как работает
// деплой) находится вне этого пакета: здесь только запросы и ответы.
package service
