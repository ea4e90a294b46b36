package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App         AppConfig
	MCP         MCPConfig
	Paths       PathsConfig
	Database    DatabaseConfig
	Scheduler   SchedulerConfig
	AI          AIConfig
	LinkedIn    LinkedInConfig
	Threads     ThreadsConfig
	Jira        JiraConfig
	StockImages StockImagesConfig
	WorkerPool  WorkerPoolConfig
	Security    SecurityConfig
	APIKeys     APIKeysConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	ServerID           string
}

type MCPConfig struct {
	Port string
	Host string
}

type PathsConfig struct {
	BaseDir  string
	Statics  string
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB Name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type SchedulerConfig struct {
	Enabled      bool
	TickSeconds  int
	Timezone     string // IANA name; empty means the system local zone
	MaxErrorSize int
}

type AIConfig struct {
	Provider           string // openai or gemini
	Model              string
	TranscriptionModel string
	MaxAudioBytes      int64
}

type LinkedInConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type ThreadsConfig struct {
	AppID       string
	AppSecret   string
	RedirectURL string
}

type JiraConfig struct {
	BaseURL    string
	Email      string
	APIToken   string
	ProjectKey string
	IssueType  string
}

type StockImagesConfig struct {
	UnsplashAccessKey string
	PexelsAPIKey      string
	PixabayAPIKey     string
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

type SecurityConfig struct {
	SecretKey string
}

type APIKeysConfig struct {
	OpenAI string
	Gemini string
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	} else if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		debug = true
	}

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.2.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		ServerID:           getEnv("SERVER_ID", ""),
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		BaseDir:  baseDir,
		Statics:  getEnv("PATH_STATICS", "statics"),
		Storages: baseDir,
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "podinsights.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "podinsights:"),
	}

	schedulerCfg := SchedulerConfig{
		Enabled:      getEnvBool("SCHEDULER_ENABLED", true),
		TickSeconds:  getEnvInt("SCHEDULER_TICK_SECONDS", 60),
		Timezone:     getEnv("SCHEDULER_TIMEZONE", ""),
		MaxErrorSize: getEnvInt("SCHEDULER_MAX_ERROR_SIZE", 500),
	}

	aiCfg := AIConfig{
		Provider:           getEnv("AI_PROVIDER", "openai"),
		Model:              getEnv("AI_MODEL", "gpt-4o"),
		TranscriptionModel: getEnv("AI_TRANSCRIPTION_MODEL", "whisper-1"),
		MaxAudioBytes:      getEnvInt64("AI_MAX_AUDIO_BYTES", 25*1024*1024),
	}

	cfg := &Config{
		App:       appCfg,
		MCP:       MCPConfig{Port: getEnv("MCP_PORT", "8080"), Host: getEnv("MCP_HOST", "localhost")},
		Paths:     pathsCfg,
		Database:  dbCfg,
		Scheduler: schedulerCfg,
		AI:        aiCfg,
		LinkedIn: LinkedInConfig{
			ClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
			ClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("LINKEDIN_REDIRECT_URI", ""),
		},
		Threads: ThreadsConfig{
			AppID:       getEnv("THREADS_APP_ID", ""),
			AppSecret:   getEnv("THREADS_APP_SECRET", ""),
			RedirectURL: getEnv("THREADS_REDIRECT_URI", ""),
		},
		Jira: JiraConfig{
			BaseURL:    getEnv("JIRA_URL", ""),
			Email:      getEnv("JIRA_EMAIL", ""),
			APIToken:   getEnv("JIRA_API_TOKEN", ""),
			ProjectKey: getEnv("JIRA_PROJECT_KEY", ""),
			IssueType:  getEnv("JIRA_ISSUE_TYPE", "Task"),
		},
		StockImages: StockImagesConfig{
			UnsplashAccessKey: getEnv("UNSPLASH_ACCESS_KEY", ""),
			PexelsAPIKey:      getEnv("PEXELS_API_KEY", ""),
			PixabayAPIKey:     getEnv("PIXABAY_API_KEY", ""),
		},
		WorkerPool: WorkerPoolConfig{
			Size:      getEnvInt("EPISODE_WORKER_POOL_SIZE", 4),
			QueueSize: getEnvInt("EPISODE_WORKER_QUEUE_SIZE", 200),
		},
		Security: SecurityConfig{SecretKey: getEnv("APP_SECRET_KEY", "")},
		APIKeys: APIKeysConfig{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
			Gemini: getEnv("GEMINI_API_KEY", ""),
		},
	}

	Global = cfg
	return cfg, nil
}
