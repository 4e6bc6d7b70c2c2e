// Package config загружает конфигурацию сервиса.
//
// Источники (в порядке приоритета):
//  1. Переменные окружения (DB_URL, RABBITMQ_URL, API_PORT, SERVICE_URL,
//     TRANSFORM_BACKEND, LLM_TYPE, LLM_BASE_URL, LLM_API_KEY, LLM_MODEL)
//  2. YAML файл (путь из CODESHIFT_CONFIG, по умолчанию codeshift.yaml)
//  3. Значения по умолчанию
//
// Отсутствующий файл не является ошибкой — используются значения по умолчанию.
package config
