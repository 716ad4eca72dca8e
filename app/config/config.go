package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log          Log          `yaml:"log"`
	DB           DB           `yaml:"db"`
	Telegram     Telegram     `yaml:"telegram"`
	OpenAI       ModelConfig  `yaml:"openai" validate:"required"`
	Calendar     MCPServer    `yaml:"calendar" validate:"required"`
	Contacts     MCPServer    `yaml:"contacts" validate:"required"`
	Summary      Summary      `yaml:"summary"`
	Conversation Conversation `yaml:"conversation"`
	Web          Web          `yaml:"web"`
}

type ModelConfig struct {
	// OpenAI-compatible base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1" validate:"required"`
	// API token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// Model name
	Model string `yaml:"model" example:"anthropic/claude-sonnet-4" validate:"required"`
}

type Telegram struct {
	// Bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789" validate:"required"`
	// User IDs allowed to talk to the assistant
	AllowedUserIDs []int64 `yaml:"allowed_user_ids" validate:"required,min=1"`
	// Chat the daily summary and reminders are delivered to
	SummaryChatID int64 `yaml:"summary_chat_id" example:"123456789" validate:"required"`
}

type MCPServer struct {
	// Command spawning the stdio MCP server
	Command string `yaml:"command" example:"uv" validate:"required"`
	// Command arguments
	Args []string `yaml:"args"`
	// Extra environment in KEY=VALUE form
	Env []string `yaml:"env"`
}

type Summary struct {
	// Local hour the daily summary fires at
	Hour int `yaml:"hour" example:"7" validate:"min=0,max=23"`
	// Local minute the daily summary fires at
	Minute int `yaml:"minute" example:"0" validate:"min=0,max=59"`
	// IANA timezone the target time is interpreted in
	Timezone string `yaml:"timezone" example:"Europe/Vienna"`
}

type Conversation struct {
	// Maximum retained messages per chat
	WindowSize int `yaml:"window_size" example:"40" validate:"min=4"`
	// Maximum reasoning/tool-call rounds per incoming message
	MaxToolRounds int `yaml:"max_tool_rounds" example:"5" validate:"min=1"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

type DB struct {
	// SQLite database path
	Path string `yaml:"path" example:"data/luna.db"`
}

type Web struct {
	// Status server listen address, empty disables it
	Addr string `yaml:"addr" example:":8080"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.DB.Path == "" {
		result.DB.Path = "data/luna.db"
	}
	if result.Summary.Timezone == "" {
		result.Summary.Timezone = "Europe/Vienna"
	}
	if result.Summary.Hour == 0 && result.Summary.Minute == 0 {
		result.Summary.Hour = 7
	}
	if result.Conversation.WindowSize == 0 {
		result.Conversation.WindowSize = 40
	}
	if result.Conversation.MaxToolRounds == 0 {
		result.Conversation.MaxToolRounds = 5
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
