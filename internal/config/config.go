package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath — путь к файлу конфигурации по умолчанию.
const DefaultPath = "codeshift.yaml"

// Бэкенды трансформации.
const (
	BackendHTTP = "http"
	BackendLLM  = "llm"
)

// Config — полная конфигурация сервиса.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Service   ServiceConfig   `yaml:"service"`
	Transform TransformConfig `yaml:"transform"`
	LLM       LLMConfig       `yaml:"llm"`
	Test      TestConfig      `yaml:"test"`
	Database  DatabaseConfig  `yaml:"database"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// ServerConfig — HTTP сервер API.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// ServiceConfig — удалённый сервис трансформации/деплоя.
type ServiceConfig struct {
	BaseURL   string          `yaml:"base_url"`
	Timeout   time.Duration   `yaml:"timeout"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
}

// EndpointsConfig — пути endpoint'ов относительно BaseURL.
type EndpointsConfig struct {
	Unified         string `yaml:"unified"`
	Multi           string `yaml:"multi"`
	DeploymentFiles string `yaml:"deployment_files"`
	Deploy          string `yaml:"deploy"`
	UnitTest        string `yaml:"unit_test"`
}

// TransformConfig — параметры трансформации.
type TransformConfig struct {
	// Backend — "http" (удалённый сервис) или "llm" (chat-модель напрямую).
	Backend string `yaml:"backend"`

	// Concurrency — максимум одновременных запросов (0 — без ограничения).
	Concurrency int `yaml:"concurrency"`

	// PromptTemplate и RethinkTemplate переопределяют шаблоны запросов.
	PromptTemplate  string `yaml:"prompt_template"`
	RethinkTemplate string `yaml:"rethink_template"`
}

// LLMConfig — chat-модель для бэкенда "llm".
type LLMConfig struct {
	// Type — openai, ollama, claude, ark, qwen.
	Type        string        `yaml:"type"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature *float32      `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// TestConfig — параметры тестового прогона.
type TestConfig struct {
	// Deploy — деплоить тестовый пакет после генерации артефактов.
	Deploy bool `yaml:"deploy"`
}

// DatabaseConfig — PostgreSQL. Пустой URL — история запусков не сохраняется.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RabbitMQConfig — брокер событий. Пустой URL — события не публикуются.
type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

// IngestConfig — загрузка файлов из каталога.
type IngestConfig struct {
	// WatchDir — каталог, изменения в котором перезагружают реестр ("" — выключено).
	WatchDir string `yaml:"watch_dir"`

	// Debounce — пауза после последнего события перед перезагрузкой.
	Debounce time.Duration `yaml:"debounce"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Service: ServiceConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 5 * time.Minute,
			Endpoints: EndpointsConfig{
				Unified:         "/unified",
				Multi:           "/multi",
				DeploymentFiles: "/deployment-files",
				Deploy:          "/deploy",
				UnitTest:        "/unit-test",
			},
		},
		Transform: TransformConfig{Backend: BackendHTTP},
		LLM: LLMConfig{
			Type:    "openai",
			Timeout: 5 * time.Minute,
		},
		Ingest: IngestConfig{Debounce: 500 * time.Millisecond},
	}
}

// Load читает конфигурацию из файла (путь из CODESHIFT_CONFIG или
// DefaultPath) и накладывает переменные окружения.
func Load() (Config, error) {
	path := os.Getenv("CODESHIFT_CONFIG")
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

// LoadFile читает конфигурацию из указанного файла.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// файла нет — остаются значения по умолчанию
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyEnv накладывает переменные окружения поверх файла.
func (c *Config) applyEnv() error {
	setString(&c.Database.URL, "DB_URL")
	setString(&c.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&c.Server.Port, "API_PORT")
	setString(&c.Service.BaseURL, "SERVICE_URL")
	setString(&c.Transform.Backend, "TRANSFORM_BACKEND")
	setString(&c.LLM.Type, "LLM_TYPE")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.Ingest.WatchDir, "WATCH_DIR")

	if v := os.Getenv("TRANSFORM_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: TRANSFORM_CONCURRENCY=%q", ErrInvalidValue, v)
		}
		c.Transform.Concurrency = n
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Validate проверяет значения конфигурации.
func (c Config) Validate() error {
	switch c.Transform.Backend {
	case BackendHTTP, BackendLLM:
	default:
		return fmt.Errorf("%w: transform.backend=%q", ErrUnknownBackend, c.Transform.Backend)
	}

	if c.Transform.Backend == BackendLLM {
		switch c.LLM.Type {
		case "openai", "ollama", "claude", "ark", "qwen":
		default:
			return fmt.Errorf("%w: llm.type=%q", ErrUnknownModelType, c.LLM.Type)
		}
		if c.LLM.Model == "" {
			return fmt.Errorf("%w: llm.model is required", ErrInvalidValue)
		}
	}

	if c.Transform.Concurrency < 0 {
		return fmt.Errorf("%w: transform.concurrency must be >= 0", ErrInvalidValue)
	}
	if c.Service.BaseURL == "" {
		return fmt.Errorf("%w: service.base_url is required", ErrInvalidValue)
	}
	return nil
}
