package ingest

import "errors"

var (
	// ErrNoContent — у загрузки нет источника содержимого.
	ErrNoContent = errors.New("upload has no content source")

	// ErrFileTooLarge — файл превышает допустимый размер.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNotDirectory — путь не является каталогом.
	ErrNotDirectory = errors.New("not a directory")
)
