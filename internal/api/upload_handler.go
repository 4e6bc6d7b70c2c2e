package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/shaiso/Codeshift/internal/ingest"
)

// Upload limits.
const (
	uploadField       = "files"
	maxUploadBodySize = 64 << 20
)

// Upload загружает набор файлов и заменяет ими реестр.
// POST /api/v1/uploads (multipart/form-data, поле "files",
// filename — путь относительно корня проекта)
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)

	uploads, err := readUploads(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "upload is too large")
			return
		}
		BadRequest(w, err.Error())
		return
	}
	if len(uploads) == 0 {
		BadRequest(w, "no files in upload")
		return
	}

	res := h.ingestor.Ingest(r.Context(), uploads)
	Success(w, UploadResponseFromResult(res))
}

// readUploads читает части multipart в память.
//
// Part.FileName() отбрасывает каталоги, поэтому имя берётся из
// Content-Disposition напрямую.
func readUploads(r *http.Request) ([]ingest.Upload, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}

	var uploads []ingest.Upload
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return uploads, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart: %w", err)
		}

		if part.FormName() != uploadField {
			part.Close()
			continue
		}

		name := partFileName(part.Header.Get("Content-Disposition"))
		if name == "" {
			part.Close()
			return nil, errors.New("file part without filename")
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		uploads = append(uploads, ingest.Upload{
			Path: name,
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(data)), nil
			},
		})
	}
}

// partFileName возвращает очищенный относительный путь из Content-Disposition.
func partFileName(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}

	name := strings.ReplaceAll(params["filename"], `\`, "/")
	if name == "" {
		return ""
	}
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" || name == "." {
		return ""
	}
	return name
}
