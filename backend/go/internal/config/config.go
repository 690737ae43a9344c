package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey 在需要凭证的模型提供商未配置 API 密钥时返回。
// 该错误总是在发起任何网络调用之前返回。
var ErrMissingAPIKey = errors.New("Gemini API Key not provided. Please provide GEMINI_API_KEY as an environment variable")

// 环境变量名称。
const (
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvConfigPath     = "RAG_CONFIG"
	EnvStoragePath    = "RAG_STORAGE_PATH"
	EnvNResults       = "RAG_N_RESULTS"
	EnvCollectionName = "RAG_COLLECTION"
)

// 默认值。
const (
	DefaultNResults        = 3
	MaxNResults            = 20
	DefaultStoragePath     = "./ChromaDB"
	DefaultEmbeddingModel  = "models/embedding-001"
	DefaultGenerationModel = "gemini-pro"
	DefaultTaskType        = "retrieval_document"
	DefaultEmbeddingTitle  = "Custom query"
	DefaultHTTPAddress     = ":8080"
	DefaultUploadDir       = "./uploads"
)

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// ServerConfig 定义了 HTTP 服务的配置。
type ServerConfig struct {
	Address         string `yaml:"address"`         // 监听地址
	UploadDir       string `yaml:"uploadDir"`       // 上传的 PDF 保存目录
	MaxUploadMB     int64  `yaml:"maxUploadMB"`     // 上传文件大小上限 (MB)
	SessionCapacity int    `yaml:"sessionCapacity"` // 内存中最多保留的会话数
	SessionTTL      string `yaml:"sessionTTL"`      // 会话空闲过期时间，例如 "2h"
	ShutdownTimeout string `yaml:"shutdownTimeout"` // 优雅关闭的等待时间，例如 "10s"
}

// PipelineConfig 是 RAG 流水线的配置。
type PipelineConfig struct {
	NResults       int    `yaml:"nResults"`       // 每次查询检索的段落数
	StoragePath    string `yaml:"storagePath"`    // 向量集合的持久化目录
	CollectionName string `yaml:"collectionName"` // 集合名称，为空时使用上传文件名（去掉扩展名）
}

// GeminiConfig 包含了 Gemini 模型的配置。
type GeminiConfig struct {
	APIKey   string `yaml:"apiKey"`             // Gemini API 密钥
	Model    string `yaml:"model"`              // Gemini 模型名称
	TaskType string `yaml:"taskType,omitempty"` // Embedding 任务类型 (仅用于 embedding)
	Title    string `yaml:"title,omitempty"`    // Embedding 文档标题 (仅用于 embedding)
}

// OllamaConfig 包含了本地 Ollama 服务的配置。
type OllamaConfig struct {
	BaseURL string `yaml:"baseURL"` // Ollama 服务地址
	Model   string `yaml:"model"`   // 模型名称
}

// LLMConfig 包含了不同LLM提供商的配置。
type LLMConfig struct {
	Provider string       `yaml:"provider"` // LLM提供商 ("gemini" 或 "ollama")
	Gemini   GeminiConfig `yaml:"gemini"`   // Gemini 模型配置
	Ollama   OllamaConfig `yaml:"ollama"`   // Ollama 模型配置
}

// EmbeddingConfig 包含了不同Embedding提供商的配置。
type EmbeddingConfig struct {
	Provider string       `yaml:"provider"` // Embedding提供商 ("gemini" 或 "ollama")
	Gemini   GeminiConfig `yaml:"gemini"`   // Gemini 模型配置
	Ollama   OllamaConfig `yaml:"ollama"`   // Ollama 模型配置
}

// VectorStoreConfig 选择向量存储后端。
type VectorStoreConfig struct {
	Backend  string `yaml:"backend"`  // "chromem", "milvus" 或 "pgvector"
	Compress bool   `yaml:"compress"` // chromem 持久化文件是否使用 gzip 压缩
}

// ArchiveConfig 定义了上传文件归档的配置。
type ArchiveConfig struct {
	Backend string `yaml:"backend"` // "" (不归档) 或 "minio"
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// MilvusConfig 定义了 Milvus 数据库的连接和索引配置。
type MilvusConfig struct {
	Address     string                 `yaml:"address"`     // Milvus 服务地址
	Dim         int                    `yaml:"dim"`         // 空集合使用的向量维度
	IndexType   string                 `yaml:"indexType"`   // 索引类型 (例如: "IVF_FLAT", "HNSW", "AUTOINDEX")
	MetricType  string                 `yaml:"metricType"`  // 相似度度量类型 (例如: "L2", "COSINE")
	IndexParams map[string]interface{} `yaml:"indexParams"` // 索引参数 (例如: {"nlist": 128})
}

// PostgresConfig 定义了 PostgreSQL (pgvector) 的连接配置。
type PostgresConfig struct {
	ConnString string `yaml:"connString"` // 连接字符串
	MaxConns   int32  `yaml:"maxConns"`   // 连接池最大连接数
}

// MinIOConfig 定义了 MinIO 对象存储的连接配置。
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`  // MinIO 服务端点
	AccessKey string `yaml:"accessKey"` // 访问密钥
	SecretKey string `yaml:"secretKey"` // Secret 密钥
	Bucket    string `yaml:"bucket"`    // 归档存储桶名称
	Secure    bool   `yaml:"secure"`    // 是否使用HTTPS
}

// DatabaseConfigs 包含所有外部存储的配置。
type DatabaseConfigs struct {
	Milvus   MilvusConfig   `yaml:"milvus"`   // Milvus 数据库配置
	Postgres PostgresConfig `yaml:"postgres"` // PostgreSQL 数据库配置
	MinIO    MinIOConfig    `yaml:"minio"`    // MinIO 对象存储配置
}

// RateLimiterConfig 定义了令牌桶限流器的配置。
type RateLimiterConfig struct {
	Enabled bool    `yaml:"enabled"`
	Rate    float64 `yaml:"rate"`  // 每秒补充的令牌数
	Burst   int     `yaml:"burst"` // 桶容量
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter RateLimiterConfig `yaml:"rateLimiter"`
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App         AppInfo           `yaml:"app"`         // 应用程序信息
	Server      ServerConfig      `yaml:"server"`      // HTTP 服务配置
	Pipeline    PipelineConfig    `yaml:"pipeline"`    // RAG 流水线配置
	LLM         LLMConfig         `yaml:"llm"`         // LLM 配置部分
	Embedding   EmbeddingConfig   `yaml:"embedding"`   // Embedding 配置部分
	VectorStore VectorStoreConfig `yaml:"vectorStore"` // 向量存储配置
	Archive     ArchiveConfig     `yaml:"archive"`     // 上传归档配置
	Logger      LoggerConfig      `yaml:"logger"`      // 日志记录器配置
	Databases   DatabaseConfigs   `yaml:"databases"`   // 数据库配置
	Middleware  MiddlewareConfig  `yaml:"middleware"`  // 中间件配置
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
// 解析后依次应用默认值、环境变量覆盖和校验。
//
// 参数:
//
//	path: YAML 配置文件的路径。为空时只使用默认值和环境变量。
//
// 返回值:
//
//	*AppConfig: 解析后的应用程序配置结构体。
//	error: 如果文件读取、解析或校验失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		yamlFile, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
		}
		if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
			return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 返回只包含默认值的配置。
func Default() *AppConfig {
	var cfg AppConfig
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults 为未设置的字段填充默认值。
func (c *AppConfig) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "PDFChat"
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultHTTPAddress
	}
	if c.Server.UploadDir == "" {
		c.Server.UploadDir = DefaultUploadDir
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 32
	}
	if c.Server.SessionCapacity == 0 {
		c.Server.SessionCapacity = 256
	}
	if c.Server.SessionTTL == "" {
		c.Server.SessionTTL = "2h"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}

	if c.Pipeline.NResults == 0 {
		c.Pipeline.NResults = DefaultNResults
	}
	if c.Pipeline.StoragePath == "" {
		c.Pipeline.StoragePath = DefaultStoragePath
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Gemini.Model == "" {
		c.LLM.Gemini.Model = DefaultGenerationModel
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "gemini"
	}
	if c.Embedding.Gemini.Model == "" {
		c.Embedding.Gemini.Model = DefaultEmbeddingModel
	}
	if c.Embedding.Gemini.TaskType == "" {
		c.Embedding.Gemini.TaskType = DefaultTaskType
	}
	if c.Embedding.Gemini.Title == "" {
		c.Embedding.Gemini.Title = DefaultEmbeddingTitle
	}

	if c.VectorStore.Backend == "" {
		c.VectorStore.Backend = "chromem"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}

	if c.Databases.Milvus.Dim == 0 {
		c.Databases.Milvus.Dim = 768
	}
	if c.Databases.Milvus.IndexType == "" {
		c.Databases.Milvus.IndexType = "AUTOINDEX"
	}
	if c.Databases.Milvus.MetricType == "" {
		c.Databases.Milvus.MetricType = "COSINE"
	}

	if c.Middleware.RateLimiter.Rate == 0 {
		c.Middleware.RateLimiter.Rate = 5
	}
	if c.Middleware.RateLimiter.Burst == 0 {
		c.Middleware.RateLimiter.Burst = 10
	}
}

// ApplyEnv 使用环境变量覆盖配置。lookup 通常为 os.LookupEnv，测试时可以替换。
func (c *AppConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if key, ok := lookup(EnvAPIKey); ok && key != "" {
		c.LLM.Gemini.APIKey = key
		c.Embedding.Gemini.APIKey = key
	}
	if path, ok := lookup(EnvStoragePath); ok && path != "" {
		c.Pipeline.StoragePath = path
	}
	if name, ok := lookup(EnvCollectionName); ok && name != "" {
		c.Pipeline.CollectionName = name
	}
	if raw, ok := lookup(EnvNResults); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("环境变量 %s 不是整数: %w", EnvNResults, err)
		}
		c.Pipeline.NResults = n
	}
	return nil
}

// ValidationError 描述单个字段的校验失败。
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors 汇总所有校验失败的字段。
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "配置校验失败: " + strings.Join(msgs, "; ")
}

// Validate 校验配置。API 密钥不在此处校验，缺失时在首次使用时报错。
func (c *AppConfig) Validate() error {
	var errs ValidationErrors

	if c.Pipeline.NResults < 1 || c.Pipeline.NResults > MaxNResults {
		errs = append(errs, ValidationError{"pipeline.nResults", fmt.Sprintf("必须在 1 到 %d 之间", MaxNResults)})
	}
	switch c.VectorStore.Backend {
	case "chromem":
		if c.Pipeline.StoragePath == "" {
			errs = append(errs, ValidationError{"pipeline.storagePath", "不能为空"})
		}
	case "milvus":
		if c.Databases.Milvus.Address == "" {
			errs = append(errs, ValidationError{"databases.milvus.address", "不能为空"})
		}
	case "pgvector":
		if c.Databases.Postgres.ConnString == "" {
			errs = append(errs, ValidationError{"databases.postgres.connString", "不能为空"})
		}
	default:
		errs = append(errs, ValidationError{"vectorStore.backend", fmt.Sprintf("不支持的后端: %s", c.VectorStore.Backend)})
	}
	switch c.Archive.Backend {
	case "":
	case "minio":
		if c.Databases.MinIO.Endpoint == "" || c.Databases.MinIO.Bucket == "" {
			errs = append(errs, ValidationError{"databases.minio", "endpoint 和 bucket 不能为空"})
		}
	default:
		errs = append(errs, ValidationError{"archive.backend", fmt.Sprintf("不支持的归档后端: %s", c.Archive.Backend)})
	}
	for field, provider := range map[string]string{"llm.provider": c.LLM.Provider, "embedding.provider": c.Embedding.Provider} {
		if provider != "gemini" && provider != "ollama" {
			errs = append(errs, ValidationError{field, fmt.Sprintf("不支持的提供商: %s", provider)})
		}
	}
	if c.Server.MaxUploadMB < 0 {
		errs = append(errs, ValidationError{"server.maxUploadMB", "不能为负数"})
	}
	if _, err := time.ParseDuration(c.Server.SessionTTL); err != nil {
		errs = append(errs, ValidationError{"server.sessionTTL", err.Error()})
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		errs = append(errs, ValidationError{"server.shutdownTimeout", err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SessionTTLDuration 返回解析后的会话过期时间。调用前配置应已通过校验。
func (s ServerConfig) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(s.SessionTTL)
	return d
}

// ShutdownTimeoutDuration 返回解析后的优雅关闭等待时间。
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.ShutdownTimeout)
	return d
}
