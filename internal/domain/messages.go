package domain

// Пользовательские сообщения. Тексты совпадают с теми, что видит пользователь
// веб-интерфейса, поэтому не переводятся.
const (
	// ErrMsgTransformFailed — ошибка одиночной трансформации и AI Rethink.
	ErrMsgTransformFailed = "AI Rethink 失敗"

	// ErrMsgBatchFailed — ошибка пакетной трансформации (на все файлы пакета).
	ErrMsgBatchFailed = "批次處理失敗"
)

// Сообщения прогресса тестового прогона.
const (
	TestMsgStarted        = "開始測試專案…"
	TestMsgFinished       = "GKE 部署測試完成"
	TestResultRunning     = "專案在 GKE 測試中…"
	TestResultDone        = "所有檔案測試完成"
	testMsgUnitTestPrefix = "UnitTest 產生完成: "
	testMsgArtifactPrefix = "部署檔案產生完成: "
	testMsgDeployedPrefix = "GKE 測試部署完成: "
)

// KubectlLogsHeader — маркер секции логов, добавляемый перед выводом деплоя.
const KubectlLogsHeader = "=== KUBECTL LOGS ===\n"

// TestMsgUnitTest — строка прогресса "unit test сгенерирован".
func TestMsgUnitTest(fileName string) string {
	return testMsgUnitTestPrefix + fileName
}

// TestMsgArtifacts — строка прогресса "артефакты деплоя сгенерированы".
func TestMsgArtifacts(fileName string) string {
	return testMsgArtifactPrefix + fileName
}

// TestMsgDeployed — строка прогресса "тестовый пакет задеплоен".
func TestMsgDeployed(fileName string) string {
	return testMsgDeployedPrefix + fileName
}

// FormatDeployLog оборачивает вывод деплоя в секцию лога.
func FormatDeployLog(output string) string {
	return KubectlLogsHeader + output + "\n\n"
}
