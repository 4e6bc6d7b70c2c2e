// Package ingest превращает загруженные файлы в записи реестра.
//
// Все загрузки читаются конкурентно через engine.Join; реестр заменяется
// целиком только после того, как завершились все чтения. Повторная загрузка
// того же набора заменяет список, а не дополняет его.
//
// Источники загрузок:
//   - HTTP multipart (api)
//   - каталог на диске (FromDir)
//   - наблюдение за каталогом (Watcher, fsnotify)
package ingest
