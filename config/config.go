package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Store  StoreConfig  `mapstructure:"store"`
	Game   GameConfig   `mapstructure:"game"`
	Log    LogConfig    `mapstructure:"log"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Ollama OllamaConfig `mapstructure:"ollama"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds the login accounts. Values in Users are either plain
// passwords or bcrypt hashes ("$2a$..." / "$2b$...").
type AuthConfig struct {
	SessionSecret string            `mapstructure:"session_secret"`
	Users         map[string]string `mapstructure:"users"`
}

// Store backend selection
type StoreConfig struct {
	Backend string       `mapstructure:"backend"` // "github", "sqlite" or "memory"
	GitHub  GitHubConfig `mapstructure:"github"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`
}

type GitHubConfig struct {
	APIURL  string `mapstructure:"api_url"`
	Token   string `mapstructure:"token"`
	Repo    string `mapstructure:"repo"` // owner/name
	Branch  string `mapstructure:"branch"`
	Root    string `mapstructure:"root"`    // directory holding one folder per user
	Timeout int    `mapstructure:"timeout"` // seconds
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type GameConfig struct {
	XPBasePerLevel int    `mapstructure:"xp_base_per_level"`
	Timezone       string `mapstructure:"timezone"`
	AutoSave       bool   `mapstructure:"auto_save"`
	PlayerName     string `mapstructure:"player_name"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LLM provider selection
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "none", "ollama" or "openai"
}

type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`   // Optional, defaults to OpenAI API
	MaxTokens int    `mapstructure:"max_tokens"` // Optional, defaults to model's max
	Timeout   int    `mapstructure:"timeout"`
}

type OllamaConfig struct {
	Host    string `mapstructure:"host"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})

	viper.SetDefault("auth.session_secret", "your-secret-key-change-this-in-production")
	viper.SetDefault("auth.users", map[string]string{"demo": "demo"})

	viper.SetDefault("store.backend", "github")
	viper.SetDefault("store.github.api_url", "https://api.github.com")
	viper.SetDefault("store.github.branch", "main")
	viper.SetDefault("store.github.root", "data")
	viper.SetDefault("store.github.timeout", 15)
	viper.SetDefault("store.sqlite.path", "./liferpg.db")

	viper.SetDefault("game.xp_base_per_level", 100)
	viper.SetDefault("game.timezone", "Local")
	viper.SetDefault("game.auto_save", true)
	viper.SetDefault("game.player_name", "Nameless Hero")

	viper.SetDefault("log.level", "info")

	viper.SetDefault("llm.provider", "none")
	viper.SetDefault("ollama.host", "http://localhost:11434")
	viper.SetDefault("ollama.model", "llama3.2")
	viper.SetDefault("ollama.timeout", 30)
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.timeout", 30)
	viper.SetDefault("openai.max_tokens", 400)
}

// Load reads .env, config.yaml and config.local.yaml (both optional) and
// LIFERPG_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	// .env is a convenience for local runs; a missing file is fine
	_ = godotenv.Load()

	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.BindEnv("store.github.token", "LIFERPG_GITHUB_TOKEN", "GITHUB_TOKEN")
	viper.BindEnv("openai.api_key", "LIFERPG_OPENAI_API_KEY", "OPENAI_API_KEY")

	viper.SetEnvPrefix("LIFERPG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	// Read local config file for overrides (ignored by git)
	viper.SetConfigName("config.local")
	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
