package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yukikurage/taskbot/internal/constants"
)

// ConfigFileEnv names an optional YAML file whose keys mirror the
// environment variable names (case-insensitive). Environment wins.
const ConfigFileEnv = "TASKBOT_CONFIG"

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	RedisHost     string
	RedisPort     string
	SessionStore  string
	SessionSecret string

	GinMode    string
	ListenAddr string

	OpenAIAPIKey string

	TrelloAPIKey  string
	TrelloToken   string
	TrelloBaseURL string

	BridgeUsername     string
	BridgePasswordHash string

	SelectMaxOptions int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}

	file := viper.New()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		file.SetConfigFile(path)
		if err := file.ReadInConfig(); err != nil {
			log.Printf("config: ignoring %s: %v", path, err)
		}
	}

	get := func(key, defaultValue string) string {
		if v := strings.TrimSpace(file.GetString(key)); v != "" {
			defaultValue = v
		}
		return getEnv(key, defaultValue)
	}

	return &Config{
		DBDriver:           get("DB_DRIVER", "mysql"),
		DBHost:             get("DB_HOST", "localhost"),
		DBPort:             get("DB_PORT", "3306"),
		DBUser:             get("DB_USER", "taskuser"),
		DBPassword:         get("DB_PASSWORD", "taskpassword"),
		DBName:             get("DB_NAME", "taskbot"),
		SQLitePath:         get("SQLITE_PATH", "taskbot.db"),
		RedisHost:          get("REDIS_HOST", "localhost"),
		RedisPort:          get("REDIS_PORT", "6379"),
		SessionStore:       get("SESSION_STORE", "redis"),
		SessionSecret:      get("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:            get("GIN_MODE", "debug"),
		ListenAddr:         get("LISTEN_ADDR", ":8080"),
		OpenAIAPIKey:       get("OPENAI_API_KEY", ""),
		TrelloAPIKey:       get("TRELLO_API_KEY", ""),
		TrelloToken:        get("TRELLO_TOKEN", ""),
		TrelloBaseURL:      get("TRELLO_BASE_URL", ""),
		BridgeUsername:     get("BRIDGE_USERNAME", "bridge"),
		BridgePasswordHash: get("BRIDGE_PASSWORD_HASH", ""),
		SelectMaxOptions:   selectMaxOptions(get("SELECT_MAX_OPTIONS", "")),
	}
}

// selectMaxOptions never exceeds what one selector can show.
func selectMaxOptions(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > constants.MaxSelectOptions {
		return constants.MaxSelectOptions
	}
	return n
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
