// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Generation    GenerationConfig    `yaml:"generation" mapstructure:"generation"`
	Scraper       ScraperConfig       `yaml:"scraper" mapstructure:"scraper"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// LLMConfig 文本提供方配置
// 当前仅内置 mock 提供方：固定延迟 + 占位输出，不接入真实模型服务。
type LLMConfig struct {
	Provider string             `yaml:"provider" mapstructure:"provider"`
	Mock     MockProviderConfig `yaml:"mock" mapstructure:"mock"`
}

// MockProviderConfig Mock 提供方配置
type MockProviderConfig struct {
	// Delay 每次调用的固定延迟，模拟真实生成耗时
	Delay time.Duration `yaml:"delay" mapstructure:"delay"`
}

// GenerationConfig 生成流程配置
type GenerationConfig struct {
	// DefaultNumChapters 未指定时的默认章节数
	DefaultNumChapters int `yaml:"default_num_chapters" mapstructure:"default_num_chapters"`
	// DefaultTone 未指定时的默认语气
	DefaultTone string `yaml:"default_tone" mapstructure:"default_tone"`
	// WriterConcurrency 章节写作的最大并发数
	WriterConcurrency int `yaml:"writer_concurrency" mapstructure:"writer_concurrency"`
	// MaxContextChars TOC 参考上下文的最大字符数
	MaxContextChars int `yaml:"max_context_chars" mapstructure:"max_context_chars"`
}

// ScraperConfig TOC 抓取配置
type ScraperConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxSources int           `yaml:"max_sources" mapstructure:"max_sources"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	// MinSnippetChars 抓取结果的最小有效长度，低于该值的片段会被丢弃
	MinSnippetChars int `yaml:"min_snippet_chars" mapstructure:"min_snippet_chars"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Exporter   string  `yaml:"exporter" mapstructure:"exporter"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CORS CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
