package config

import (
	"os"

	"github.com/spf13/viper"
)

// MCP client transport types.
const (
	ClientTypeSSE            = "sse"
	ClientTypeStreamableHTTP = "streamable_http"
	ClientTypeStdio          = "stdio"
)

// Config holds the application configuration.
type Config struct {
	LLM        LLMConfig         `mapstructure:"llm"`
	Server     ServerConfig      `mapstructure:"server"`
	Google     GoogleConfig      `mapstructure:"google"`
	Agent      AgentConfig       `mapstructure:"agent"`
	History    HistoryConfig     `mapstructure:"history"`
	MCPServers []MCPServerConfig `mapstructure:"mcp_servers"`
	LogLevel   string            `mapstructure:"log_level"`
}

// LLMConfig holds the LLM configuration.
type LLMConfig struct {
	Provider          string `mapstructure:"provider"`
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// GoogleConfig holds the Google API configuration. AccessToken, when set,
// bypasses the token file entirely (useful when a front end supplies OAuth
// tokens per request).
type GoogleConfig struct {
	CalendarID          string `mapstructure:"calendar_id"`
	TaskListID          string `mapstructure:"task_list_id"`
	TokenFile           string `mapstructure:"token_file"`
	ClientID            string `mapstructure:"client_id"`
	ClientSecret        string `mapstructure:"client_secret"`
	AccessToken         string `mapstructure:"access_token"`
	TimezoneOffsetHours int    `mapstructure:"timezone_offset_hours"`
}

// AgentConfig holds the agent loop configuration.
type AgentConfig struct {
	Type               string `mapstructure:"type"`
	MaxTurns           int    `mapstructure:"max_turns"`
	ToolTimeoutSeconds int    `mapstructure:"tool_timeout_seconds"`
	PromptDir          string `mapstructure:"prompt_dir"`
}

// HistoryConfig holds the message persistence configuration.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// MCPServerConfig describes one external MCP tool server.
type MCPServerConfig struct {
	Name    string            `mapstructure:"name"`
	Type    string            `mapstructure:"type"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
	Command string            `mapstructure:"command"`
	Args    []string          `mapstructure:"args"`
	Env     map[string]string `mapstructure:"env"`
}

// Load loads the configuration from config.yaml in the working directory, or
// from the file named by CONFIG_PATH when set.
func Load() (*Config, error) {
	v := viper.New()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		// Defaults always unmarshal; reaching here is a programming error.
		panic(err)
	}
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("google.calendar_id", "primary")
	v.SetDefault("google.task_list_id", "@default")
	v.SetDefault("google.token_file", "token.json")
	v.SetDefault("google.timezone_offset_hours", 7)
	v.SetDefault("agent.type", "tasks")
	v.SetDefault("agent.max_turns", 10)
	v.SetDefault("agent.tool_timeout_seconds", 30)
	v.SetDefault("agent.prompt_dir", "prompts")
	v.SetDefault("history.path", "history.db")
	v.SetDefault("log_level", "info")
}
