package api

import (
	"github.com/shaiso/Codeshift/internal/domain"
	"github.com/shaiso/Codeshift/internal/ingest"
	"github.com/shaiso/Codeshift/internal/orchestrator"
)

// File DTOs

// FileSummary — строка списка файлов.
type FileSummary struct {
	FileName  string `json:"file_name"`
	Loading   bool   `json:"loading"`
	Converted bool   `json:"converted"`
	Error     string `json:"error,omitempty"`
	Selected  bool   `json:"selected"`
}

// FileSummaryFromDomain конвертирует domain.FileRecord в FileSummary.
func FileSummaryFromDomain(f domain.FileRecord, selected string) FileSummary {
	return FileSummary{
		FileName:  f.FileName,
		Loading:   f.Loading,
		Converted: f.NewCode != "",
		Error:     f.Error,
		Selected:  f.FileName == selected,
	}
}

// EditFileRequest — правка рабочего кода пользователем.
type EditFileRequest struct {
	NewCode *string `json:"new_code"`
}

// SelectRequest — выбор файла для rethink.
type SelectRequest struct {
	FileName string `json:"file_name"`
}

// DiffResponse — unified diff OldCode → NewCode.
type DiffResponse struct {
	FileName string `json:"file_name"`
	Diff     string `json:"diff"`
}

// Upload DTOs

// DroppedUpload — файл, не попавший в реестр.
type DroppedUpload struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// UploadResponse — итог загрузки.
type UploadResponse struct {
	Files   []FileSummary   `json:"files"`
	Dropped []DroppedUpload `json:"dropped,omitempty"`
}

// UploadResponseFromResult конвертирует ingest.Result в UploadResponse.
func UploadResponseFromResult(res *ingest.Result) UploadResponse {
	out := UploadResponse{Files: make([]FileSummary, len(res.Files))}
	for i, f := range res.Files {
		out.Files[i] = FileSummaryFromDomain(f, "")
	}
	for _, d := range res.Dropped {
		out.Dropped = append(out.Dropped, DroppedUpload{Path: d.Path, Error: d.Err.Error()})
	}
	return out
}

// Run DTOs

// TransformRequest — запуск трансформации.
type TransformRequest struct {
	Prompt string `json:"prompt"`
	Mode   string `json:"mode,omitempty"`
}

// RethinkRequest — запуск rethink для выбранного файла.
type RethinkRequest struct {
	Instruction string `json:"instruction"`
}

// AcceptedResponse — запуск принят.
type AcceptedResponse struct {
	Kind domain.RunKind `json:"kind"`
}

// RunsResponse — активные и завершённые запуски.
type RunsResponse struct {
	Active  []domain.Run `json:"active"`
	History []domain.Run `json:"history"`
}

// commandResponse строит AcceptedResponse для команды.
func commandResponse(cmd orchestrator.Command) AcceptedResponse {
	return AcceptedResponse{Kind: cmd.Kind}
}

// Log DTOs

// LogResponse — накопленный лог файла.
type LogResponse struct {
	FileName string `json:"file_name"`
	Log      string `json:"log"`
}
