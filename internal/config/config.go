// Package config provides configuration loading, validation, and defaults
// for wadigest. Values come from an optional YAML file, a .env file and the
// process environment.
package config

import "time"

// Config defines the application configuration parameters for all components.
// It is built once at process start and passed by reference to every job.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	GreenAPI  GreenAPIConfig  `mapstructure:"greenapi"`
	Store     StoreConfig     `mapstructure:"store"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Harvest   HarvestConfig   `mapstructure:"harvest"`
	Digest    DigestConfig    `mapstructure:"digest"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// GreenAPIConfig holds the WhatsApp gateway credentials and endpoint.
type GreenAPIConfig struct {
	BaseURL    string        `mapstructure:"base_url"    validate:"required,url"`
	InstanceID string        `mapstructure:"instance_id" validate:"required"`
	Token      string        `mapstructure:"token"       validate:"required"`
	Timeout    time.Duration `mapstructure:"timeout"     validate:"min=1s,max=10m"`
}

// StoreConfig selects the relational store. For postgres, URL is a
// connection string and Key is the password injected into it; for sqlite,
// URL is the database file path.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	URL    string `mapstructure:"url"    validate:"required"`
	Key    string `mapstructure:"key"    validate:"required_if=Driver postgres"`
}

// GeminiConfig holds the generative provider settings used for the digest.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"            validate:"required"`
	ModelName         string        `mapstructure:"model_name"         validate:"required"`
	SystemInstruction string        `mapstructure:"system_instruction"`
	Temperature       float32       `mapstructure:"temperature"        validate:"min=0,max=2"`
	MaxOutputTokens   int32         `mapstructure:"max_output_tokens"  validate:"min=1,max=8192"`
	Timeout           time.Duration `mapstructure:"timeout"            validate:"min=1s,max=10m"`
}

// HarvestConfig controls the message harvester.
type HarvestConfig struct {
	ChatID   string        `mapstructure:"chat_id"  validate:"required"`
	Count    int           `mapstructure:"count"    validate:"min=1,max=1000"`
	Lookback time.Duration `mapstructure:"lookback" validate:"min=1m"`
}

// DigestConfig controls the digest publisher.
type DigestConfig struct {
	TargetChatID string `mapstructure:"target_chat_id" validate:"required"`
}

// TelegramConfig enables the optional digest mirror. Both fields must be set
// together; leaving them empty disables the mirror.
type TelegramConfig struct {
	Token  string `mapstructure:"token"   validate:"required_with=ChatID"`
	ChatID int64  `mapstructure:"chat_id" validate:"required_with=Token"`
}

// Enabled reports whether the Telegram mirror is configured.
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// SchedulerConfig holds the cron schedule of every job used by serve.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
	Redis RedisConfig           `mapstructure:"redis"`
}

// TaskConfig is the schedule of a single job.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// RedisConfig configures the distributed job lock. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"       validate:"min=0"`
	LockTTL  time.Duration `mapstructure:"lock_ttl" validate:"min=1s"`
}

// ServerConfig configures the admin HTTP API. An empty Addr disables it.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}
