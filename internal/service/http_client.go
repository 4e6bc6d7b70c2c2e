package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/Codeshift/internal/telemetry"
)

const (
	defaultHTTPTimeout = 5 * time.Minute
	maxResponseBody    = 32 * 1024 * 1024 // 32 MB
	maxErrorBody       = 4 * 1024
)

// Имена операций для логов и метрик.
const (
	OpTransform      = "transform"
	OpTransformBatch = "transform_batch"
	OpArtifacts      = "artifacts"
	OpDeploy         = "deploy"
	OpUnitTest       = "unit_test"
)

// Endpoints — пути endpoint'ов относительно BaseURL.
type Endpoints struct {
	Unified         string
	Multi           string
	DeploymentFiles string
	Deploy          string
	UnitTest        string
}

// DefaultEndpoints возвращает стандартные пути сервиса.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Unified:         "/unified",
		Multi:           "/multi",
		DeploymentFiles: "/deployment-files",
		Deploy:          "/deploy",
		UnitTest:        "/unit-test",
	}
}

// withDefaults заполняет пустые пути значениями по умолчанию.
func (e Endpoints) withDefaults() Endpoints {
	def := DefaultEndpoints()
	if e.Unified == "" {
		e.Unified = def.Unified
	}
	if e.Multi == "" {
		e.Multi = def.Multi
	}
	if e.DeploymentFiles == "" {
		e.DeploymentFiles = def.DeploymentFiles
	}
	if e.Deploy == "" {
		e.Deploy = def.Deploy
	}
	if e.UnitTest == "" {
		e.UnitTest = def.UnitTest
	}
	return e
}

// HTTPClientConfig — конфигурация HTTPClient.
type HTTPClientConfig struct {
	// BaseURL — адрес сервиса, например http://localhost:8000.
	BaseURL string

	// Timeout — таймаут одного запроса (default: 5m).
	Timeout time.Duration

	Endpoints Endpoints

	// Client — готовый http.Client (для тестов). Если задан, Timeout игнорируется.
	Client *http.Client

	Logger *slog.Logger
}

// HTTPClient — Backend поверх JSON/HTTP.
//
// Каждая операция — один POST с JSON телом. Ответ со статусом >= 400
// превращается в *HTTPError, сетевые ошибки оборачиваются в ErrRequestFailed.
// Повторов нет.
type HTTPClient struct {
	baseURL   string
	endpoints Endpoints
	client    *http.Client
	logger    *slog.Logger
}

var _ Backend = (*HTTPClient)(nil)

// NewHTTPClient создаёт HTTPClient.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		endpoints: cfg.Endpoints.withDefaults(),
		client:    client,
		logger:    logger,
	}
}

// Transform отправляет текст запроса на /unified.
func (c *HTTPClient) Transform(ctx context.Context, text string) (*TransformResult, error) {
	req := struct {
		Text string `json:"text"`
	}{Text: text}

	var resp struct {
		Result *TransformResult `json:"result"`
	}
	if err := c.post(ctx, OpTransform, c.endpoints.Unified, req, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%w: %s: missing result", ErrMalformedResponse, OpTransform)
	}
	return resp.Result, nil
}

// TransformBatch отправляет пакет файлов на /multi.
func (c *HTTPClient) TransformBatch(ctx context.Context, prompt string, files []BatchFile) (*BatchResult, error) {
	req := struct {
		Prompt string      `json:"prompt"`
		Files  []BatchFile `json:"files"`
	}{Prompt: prompt, Files: files}

	var resp struct {
		Files *[]BatchFileResult `json:"files"`
	}
	if err := c.post(ctx, OpTransformBatch, c.endpoints.Multi, req, &resp); err != nil {
		return nil, err
	}
	if resp.Files == nil {
		return nil, fmt.Errorf("%w: %s: missing files", ErrMalformedResponse, OpTransformBatch)
	}
	return &BatchResult{Files: *resp.Files}, nil
}

// GenerateArtifacts запрашивает Dockerfile и манифест на /deployment-files.
func (c *HTTPClient) GenerateArtifacts(ctx context.Context, fileName, source string) (*Artifacts, error) {
	req := struct {
		FileName string `json:"file_name"`
		Content  string `json:"content"`
	}{FileName: fileName, Content: source}

	var resp Artifacts
	if err := c.post(ctx, OpArtifacts, c.endpoints.DeploymentFiles, req, &resp); err != nil {
		return nil, err
	}

	// манифест проверяется, но не блокирует деплой
	for _, w := range InspectWorkload(resp.YAML) {
		c.logger.Warn("generated workload manifest looks suspicious",
			"file", fileName,
			"warning", w,
		)
	}
	return &resp, nil
}

// Deploy отправляет payload на /deploy.
func (c *HTTPClient) Deploy(ctx context.Context, payload DeployPayload) (*DeployResult, error) {
	var resp DeployResult
	if err := c.post(ctx, OpDeploy, c.endpoints.Deploy, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateUnitTest запрашивает unit test на /unit-test.
func (c *HTTPClient) GenerateUnitTest(ctx context.Context, fileName, source string) (string, error) {
	req := struct {
		FileName string `json:"file_name"`
		Content  string `json:"content"`
	}{FileName: fileName, Content: source}

	var resp struct {
		UnitTest *string `json:"unit_test"`
	}
	if err := c.post(ctx, OpUnitTest, c.endpoints.UnitTest, req, &resp); err != nil {
		return "", err
	}
	if resp.UnitTest == nil {
		return "", fmt.Errorf("%w: %s: missing unit_test", ErrMalformedResponse, OpUnitTest)
	}
	return *resp.UnitTest, nil
}

// post выполняет POST запрос с JSON телом и декодирует JSON ответ в out.
func (c *HTTPClient) post(ctx context.Context, op, path string, in, out any) error {
	defer telemetry.ObserveRemoteCall(op, time.Now())

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("calling service", "operation", op, "url", req.URL.String())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRequestFailed, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(errBody),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %v", ErrRequestFailed, op, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
	}
	return nil
}
