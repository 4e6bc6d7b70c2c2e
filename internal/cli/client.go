package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shaiso/Codeshift/internal/ingest"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// FileSummary — строка списка файлов.
type FileSummary struct {
	FileName  string `json:"file_name"`
	Loading   bool   `json:"loading"`
	Converted bool   `json:"converted"`
	Error     string `json:"error,omitempty"`
	Selected  bool   `json:"selected"`
}

// FileRecord — полная запись файла.
type FileRecord struct {
	FileName          string  `json:"file_name"`
	OldCode           string  `json:"old_code"`
	NewCode           string  `json:"new_code"`
	Advice            *string `json:"advice,omitempty"`
	Loading           bool    `json:"loading"`
	Error             string  `json:"error,omitempty"`
	UnitTestCode      string  `json:"unit_test_code,omitempty"`
	DockerfileContent string  `json:"dockerfile_content,omitempty"`
	YAMLContent       string  `json:"yaml_content,omitempty"`
}

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

// DiffResponse — unified diff файла.
type DiffResponse struct {
	FileName string `json:"file_name"`
	Diff     string `json:"diff"`
}

// AcceptedResponse — запуск принят сервером.
type AcceptedResponse struct {
	Kind string `json:"kind"`
}

// Run — запуск стадии.
type Run struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Mode       string `json:"mode,omitempty"`
	Status     string `json:"status"`
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// RunsResponse — активные и завершённые запуски.
type RunsResponse struct {
	Active  []Run `json:"active"`
	History []Run `json:"history"`
}

// State — снимок состояния процесса.
type State struct {
	IsUpdating   bool              `json:"is_updating"`
	IsTesting    bool              `json:"is_testing"`
	IsDeploying  bool              `json:"is_deploying"`
	Progress     int               `json:"progress"`
	Total        int               `json:"total"`
	TestProgress []string          `json:"test_progress"`
	TestResult   *string           `json:"test_result,omitempty"`
	FileLogs     map[string]string `json:"file_logs"`
}

// LogResponse — лог файла.
type LogResponse struct {
	FileName string `json:"file_name"`
	Log      string `json:"log"`
}

// ListRunsOpts — параметры фильтрации runs.
type ListRunsOpts struct {
	Kind   string
	Status string
	Limit  int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Codeshift API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Files ---

// Upload загружает файлы каталога, заменяя ими реестр сервера.
func (c *Client) Upload(uploads []ingest.Upload) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, u := range uploads {
		if err := writeUploadPart(mw, u); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/uploads", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out UploadResponse
	if err := c.decodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeUploadPart(mw *multipart.Writer, u ingest.Upload) error {
	rc, err := u.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", u.Path, err)
	}
	defer rc.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, u.Path))
	h.Set("Content-Type", "application/octet-stream")

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", u.Path, err)
	}
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("write %s: %w", u.Path, err)
	}
	return nil
}

// ListFiles возвращает файлы реестра.
func (c *Client) ListFiles() ([]FileSummary, error) {
	var files []FileSummary
	err := c.list("/api/v1/files", nil, &files)
	return files, err
}

// GetFile возвращает запись файла.
func (c *Client) GetFile(name string) (*FileRecord, error) {
	var rec FileRecord
	err := c.get("/api/v1/files/"+escapePath(name), &rec)
	return &rec, err
}

// EditFile заменяет рабочий код файла.
func (c *Client) EditFile(name, newCode string) (*FileRecord, error) {
	var rec FileRecord
	body := map[string]string{"new_code": newCode}
	err := c.doData(http.MethodPatch, "/api/v1/files/"+escapePath(name), body, &rec)
	return &rec, err
}

// Diff возвращает unified diff файла.
func (c *Client) Diff(name string) (*DiffResponse, error) {
	var diff DiffResponse
	err := c.get("/api/v1/diff/"+escapePath(name), &diff)
	return &diff, err
}

// ClearFiles очищает реестр сервера.
func (c *Client) ClearFiles() error {
	return c.delete("/api/v1/files")
}

// Select выбирает файл для rethink.
func (c *Client) Select(name string) (*FileRecord, error) {
	var rec FileRecord
	err := c.put("/api/v1/selection", map[string]string{"file_name": name}, &rec)
	return &rec, err
}

// --- Runs ---

// Transform запускает трансформацию.
func (c *Client) Transform(prompt, mode string) (*AcceptedResponse, error) {
	var out AcceptedResponse
	err := c.post("/api/v1/transform", map[string]string{"prompt": prompt, "mode": mode}, &out)
	return &out, err
}

// Rethink запускает rethink выбранного файла.
func (c *Client) Rethink(instruction string) (*AcceptedResponse, error) {
	var out AcceptedResponse
	err := c.post("/api/v1/rethink", map[string]string{"instruction": instruction}, &out)
	return &out, err
}

// Deploy запускает деплой.
func (c *Client) Deploy() (*AcceptedResponse, error) {
	var out AcceptedResponse
	err := c.post("/api/v1/deploy", nil, &out)
	return &out, err
}

// Test запускает тестовый прогон.
func (c *Client) Test() (*AcceptedResponse, error) {
	var out AcceptedResponse
	err := c.post("/api/v1/test", nil, &out)
	return &out, err
}

// ListRuns возвращает активные и завершённые запуски.
func (c *Client) ListRuns(opts ListRunsOpts) (*RunsResponse, error) {
	params := url.Values{}
	if opts.Kind != "" {
		params.Set("kind", opts.Kind)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/api/v1/runs"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var runs RunsResponse
	err := c.get(path, &runs)
	return &runs, err
}

// --- State ---

// State возвращает снимок состояния.
func (c *Client) State() (*State, error) {
	var state State
	err := c.get("/api/v1/state", &state)
	return &state, err
}

// WaitIdle опрашивает состояние, пока busy возвращает true.
func (c *Client) WaitIdle(ctx context.Context, interval time.Duration, busy func(*State) bool) (*State, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		state, err := c.State()
		if err != nil {
			return nil, err
		}
		if !busy(state) {
			return state, nil
		}

		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-ticker.C:
		}
	}
}

// ListLogs возвращает имена файлов с логами.
func (c *Client) ListLogs() ([]string, error) {
	var names []string
	err := c.list("/api/v1/logs", nil, &names)
	return names, err
}

// GetLog возвращает лог файла.
func (c *Client) GetLog(name string) (*LogResponse, error) {
	var log LogResponse
	err := c.get("/api/v1/logs/"+escapePath(name), &log)
	return &log, err
}

// escapePath экранирует сегменты пути, сохраняя "/".
func escapePath(name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decodeData(resp, result)
}

func (c *Client) decodeData(resp *http.Response, result any) error {
	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
