package service

import "context"

// TransformResult — ответ одиночной трансформации.
type TransformResult struct {
	// ConvertedCode — новый код. Пустая строка — сервис кода не вернул.
	ConvertedCode string `json:"converted_code" jsonschema:"description=the full transformed source code of the file"`

	// Suggestions — рекомендации (строка или список строк).
	Suggestions Suggestions `json:"suggestions" jsonschema:"description=review notes and suggestions for the file"`
}

// BatchFile — файл в пакетном запросе.
type BatchFile struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"`
}

// BatchFileResult — файл в ответе пакетной трансформации.
type BatchFileResult struct {
	FileName    string      `json:"file_name" jsonschema:"description=base name of the input file this entry belongs to"`
	Content     string      `json:"content" jsonschema:"description=the full transformed source code"`
	Suggestions Suggestions `json:"suggestions" jsonschema:"description=review notes for this file"`
}

// BatchResult — ответ пакетной трансформации.
type BatchResult struct {
	Files []BatchFileResult `json:"files" jsonschema:"description=one entry per input file"`
}

// Find возвращает первый элемент с данным file_name.
func (r *BatchResult) Find(fileName string) (BatchFileResult, bool) {
	for _, f := range r.Files {
		if f.FileName == fileName {
			return f, true
		}
	}
	return BatchFileResult{}, false
}

// Artifacts — сгенерированные артефакты деплоя.
type Artifacts struct {
	Dockerfile string `json:"dockerfile"`
	YAML       string `json:"yaml"`
}

// CodeFile — файл кода в payload деплоя (content в base64).
type CodeFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// DeployPayload — запрос деплоя. Все строковые поля закодированы в base64.
type DeployPayload struct {
	CodeFiles  []CodeFile `json:"code_files"`
	JobYAML    string     `json:"job_yaml"`
	Dockerfile string     `json:"dockerfile"`
}

// NewDeployPayload собирает payload из исходных (не закодированных) текстов.
func NewDeployPayload(fileName, code string, artifacts Artifacts) DeployPayload {
	return DeployPayload{
		CodeFiles:  []CodeFile{{Filename: fileName, Content: EncodeBase64(code)}},
		JobYAML:    EncodeBase64(artifacts.YAML),
		Dockerfile: EncodeBase64(artifacts.Dockerfile),
	}
}

// DeployStatusSuccess — статус успешного деплоя.
const DeployStatusSuccess = "success"

// DeployResult — ответ деплоя.
type DeployResult struct {
	Status string `json:"status"`

	// KubectlLogs — вывод kubectl в base64 (может отсутствовать).
	KubectlLogs string `json:"kubectl_logs,omitempty"`
}

// Succeeded возвращает true для статуса "success".
func (r DeployResult) Succeeded() bool {
	return r.Status == DeployStatusSuccess
}

// Logs декодирует вывод kubectl. Второе значение — false, если логов нет.
func (r DeployResult) Logs() (string, bool, error) {
	if r.KubectlLogs == "" {
		return "", false, nil
	}
	text, err := DecodeBase64(r.KubectlLogs)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// Transformer — одиночная трансформация: текст запроса → код и рекомендации.
type Transformer interface {
	Transform(ctx context.Context, text string) (*TransformResult, error)
}

// BatchTransformer — пакетная трансформация нескольких файлов одним запросом.
type BatchTransformer interface {
	TransformBatch(ctx context.Context, prompt string, files []BatchFile) (*BatchResult, error)
}

// ArtifactGenerator — генерация Dockerfile и манифеста для файла.
type ArtifactGenerator interface {
	GenerateArtifacts(ctx context.Context, fileName, source string) (*Artifacts, error)
}

// Deployer — деплой пакета.
type Deployer interface {
	Deploy(ctx context.Context, payload DeployPayload) (*DeployResult, error)
}

// TestGenerator — генерация unit test для файла.
type TestGenerator interface {
	GenerateUnitTest(ctx context.Context, fileName, source string) (string, error)
}

// Backend — все удалённые операции пайплайна.
type Backend interface {
	Transformer
	BatchTransformer
	ArtifactGenerator
	Deployer
	TestGenerator
}

// Composite собирает Backend из отдельных реализаций, например
// трансформацию через chat-модель, а деплой через HTTP сервис.
type Composite struct {
	Transformer
	BatchTransformer
	ArtifactGenerator
	Deployer
	TestGenerator
}

var _ Backend = Composite{}
