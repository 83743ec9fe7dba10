package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	RedisAddr         string
	HTTPPort          string
	WorkingLang       string
	EmbedEndpoint     string // empty disables the semantic tier
	TranslateEndpoint string // empty disables translation
	ASREndpoint       string // empty disables audio answers
	ASRModel          string
	LogLevel          string
}

// Load reads configuration from the environment. A .env file is honored
// when present but never required.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI:          getEnv("MONGO_URI", ""),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		WorkingLang:       getEnv("WORKING_LANG", "en"),
		EmbedEndpoint:     getEnv("EMBED_ENDPOINT", ""),
		TranslateEndpoint: getEnv("TRANSLATE_ENDPOINT", ""),
		ASREndpoint:       getEnv("ASR_ENDPOINT", ""),
		ASRModel:          getEnv("ASR_MODEL", "base"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
