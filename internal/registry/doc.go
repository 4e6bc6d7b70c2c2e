// Package registry хранит канонический список FileRecord и текущий выбранный файл.
//
// Registry — чистое хранилище без I/O: ни одна операция не может завершиться
// ошибкой. Ошибки I/O обрабатывают вызывающие (координаторы) и записывают их
// в поле Error через Update.
//
// Выбранный файл хранится как ключ (FileName), а не как копия записи, и
// вычисляется при чтении — поэтому выборка не может разойтись с реестром.
package registry
