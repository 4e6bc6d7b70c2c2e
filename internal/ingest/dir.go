package ingest

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FromDir собирает загрузки из всех обычных файлов каталога root.
//
// Path каждой загрузки — путь относительно root через '/'. Скрытые файлы и
// каталоги (начинающиеся с '.') пропускаются. Порядок — лексикографический
// порядок обхода filepath.WalkDir.
func FromDir(root string) ([]Upload, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	var uploads []Upload
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		uploads = append(uploads, FileUpload(filepath.ToSlash(rel), path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return uploads, nil
}

// FileUpload создаёт загрузку из файла на диске.
func FileUpload(name, path string) Upload {
	return Upload{
		Path: name,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
