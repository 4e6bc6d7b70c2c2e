package registry

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// defaultDiffContext — количество строк контекста в hunk'ах.
const defaultDiffContext = 3

// Diff возвращает unified diff между OldCode и NewCode файла.
//
// Пустой NewCode (файл ещё не трансформирован) сравнивается как есть, т.е.
// diff покажет удаление всего содержимого. Второе значение — false, если
// файла нет в реестре.
func (r *Registry) Diff(fileName string) (string, bool) {
	rec, ok := r.Get(fileName)
	if !ok {
		return "", false
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(rec.OldCode),
		B:        splitLinesKeepNL(rec.NewCode),
		FromFile: "a/" + rec.FileName,
		ToFile:   "b/" + rec.FileName,
		Context:  defaultDiffContext,
	}

	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		// GetUnifiedDiffString пишет в strings.Builder и на практике не падает
		return "", true
	}
	return s, true
}

// splitLinesKeepNL делит текст на строки, сохраняя '\n' в конце каждой.
// Последняя строка без перевода строки получает его, иначе difflib склеит
// её со следующей в выводе.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	last := len(lines) - 1
	if !strings.HasSuffix(lines[last], "\n") {
		lines[last] += "\n"
	}
	return lines
}
