package domain

// FileRecord — один загруженный файл и всё, что о нём накоплено пайплайном.
//
// FileRecord создаётся при загрузке (ingest), затем меняется по полям
// каждой последующей стадией и удаляется только явным Clear.
type FileRecord struct {
	// FileName — путь файла относительно корня загрузки.
	// Уникальный ключ внутри реестра, используется для всех поисков и слияний.
	FileName string `json:"file_name"`

	// OldCode — исходное содержимое, фиксируется при загрузке и больше не меняется.
	OldCode string `json:"old_code"`

	// NewCode — рабочее содержимое. Перезаписывается успешной трансформацией
	// или правкой пользователя, при ошибке остаётся прежним.
	NewCode string `json:"new_code"`

	// Advice — последняя рекомендация для файла (nil — рекомендаций нет).
	Advice *string `json:"advice,omitempty"`

	// Loading — для файла сейчас выполняется трансформация.
	Loading bool `json:"loading"`

	// Error — последняя ошибка. Очищается следующей успешной операцией.
	Error string `json:"error,omitempty"`

	// Артефакты последующих стадий (deploy, test).
	UnitTestCode      string `json:"unit_test_code,omitempty"`
	DockerfileContent string `json:"dockerfile_content,omitempty"`
	YAMLContent       string `json:"yaml_content,omitempty"`
}

// AdviceText возвращает рекомендацию или пустую строку.
func (f FileRecord) AdviceText() string {
	if f.Advice == nil {
		return ""
	}
	return *f.Advice
}

// HasError возвращает true, если последняя операция над файлом завершилась ошибкой.
func (f FileRecord) HasError() bool {
	return f.Error != ""
}

// FilePatch — частичное обновление FileRecord.
//
// nil-поле означает "не трогать". FileName и OldCode не патчатся:
// первый — ключ, второй неизменяем после загрузки.
type FilePatch struct {
	NewCode           *string `json:"new_code,omitempty"`
	Advice            *string `json:"advice,omitempty"`
	Loading           *bool   `json:"loading,omitempty"`
	Error             *string `json:"error,omitempty"`
	UnitTestCode      *string `json:"unit_test_code,omitempty"`
	DockerfileContent *string `json:"dockerfile_content,omitempty"`
	YAMLContent       *string `json:"yaml_content,omitempty"`
}

// Apply возвращает копию record с применёнными полями патча.
func (p FilePatch) Apply(record FileRecord) FileRecord {
	if p.NewCode != nil {
		record.NewCode = *p.NewCode
	}
	if p.Advice != nil {
		advice := *p.Advice
		record.Advice = &advice
	}
	if p.Loading != nil {
		record.Loading = *p.Loading
	}
	if p.Error != nil {
		record.Error = *p.Error
	}
	if p.UnitTestCode != nil {
		record.UnitTestCode = *p.UnitTestCode
	}
	if p.DockerfileContent != nil {
		record.DockerfileContent = *p.DockerfileContent
	}
	if p.YAMLContent != nil {
		record.YAMLContent = *p.YAMLContent
	}
	return record
}

// IsEmpty возвращает true, если патч ничего не меняет.
func (p FilePatch) IsEmpty() bool {
	return p == FilePatch{}
}

// NewFileRecord создаёт запись в начальном состоянии после загрузки.
func NewFileRecord(fileName, content string) FileRecord {
	return FileRecord{
		FileName: fileName,
		OldCode:  content,
		NewCode:  "",
		Loading:  true,
		Error:    "",
	}
}

// Ptr возвращает указатель на значение. Удобно для сборки FilePatch.
func Ptr[T any](v T) *T {
	return &v
}
