package orchestrator

import (
	"path"
	"strings"
)

// testNameRules — правила имени тестового файла по расширению.
var testNameRules = map[string]func(stem, ext string) string{
	".java":  suffixRule("Test"),
	".kt":    suffixRule("Test"),
	".scala": suffixRule("Test"),
	".php":   suffixRule("Test"),
	".cs":    suffixRule("Tests"),
	".go":    suffixRule("_test"),
	".rb":    suffixRule("_spec"),
	".py":    func(stem, ext string) string { return "test_" + stem + ext },
	".js":    dotTestRule,
	".jsx":   dotTestRule,
	".ts":    dotTestRule,
	".tsx":   dotTestRule,
}

func suffixRule(suffix string) func(stem, ext string) string {
	return func(stem, ext string) string { return stem + suffix + ext }
}

func dotTestRule(stem, ext string) string {
	return stem + ".test" + ext
}

// TestFileName возвращает имя тестового файла для fileName.
//
// Каталоги отбрасываются. Для неизвестного расширения возвращается базовое
// имя без изменений.
//
//	src/main/Foo.java → FooTest.java
//	pkg/server.go     → server_test.go
//	app/util.py       → test_util.py
func TestFileName(fileName string) string {
	base := baseName(fileName)
	ext := path.Ext(base)

	rule, ok := testNameRules[strings.ToLower(ext)]
	if !ok {
		return base
	}
	return rule(strings.TrimSuffix(base, ext), ext)
}

// baseName возвращает последний сегмент пути ("/" или "\").
func baseName(fileName string) string {
	if i := strings.LastIndexAny(fileName, `/\`); i >= 0 {
		return fileName[i+1:]
	}
	return fileName
}
