package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	App struct {
		Port        string
		Debug       bool
		FrontendURL string
	}
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	OpenWeather struct {
		APIKey      string
		GeoURL      string
		WeatherURL  string
		ForecastURL string
		Timeout     time.Duration
	}
	Groq struct {
		APIKey string
		URL    string
		Model  string
	}
	YouTube struct {
		APIKey string
		URL    string
	}
	Export struct {
		OutputDir string
	}
}

func Load() *Config {
	cfg := &Config{}

	// App
	cfg.App.Port = getEnv("PORT", "8080")
	cfg.App.Debug = getEnvAsBool("DEBUG", false)
	cfg.App.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:3000")

	// DB
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.DBName = getEnv("DB_NAME", "meteora")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// OpenWeather
	// Ключ может отсутствовать: падает только зависимый эндпоинт, не процесс
	cfg.OpenWeather.APIKey = getEnv("OPENWEATHER_API_KEY", "")
	cfg.OpenWeather.GeoURL = getEnv("OPENWEATHER_GEO_URL", "https://api.openweathermap.org/geo/1.0/direct")
	cfg.OpenWeather.WeatherURL = getEnv("OPENWEATHER_WEATHER_URL", "https://api.openweathermap.org/data/2.5/weather")
	cfg.OpenWeather.ForecastURL = getEnv("OPENWEATHER_FORECAST_URL", "https://api.openweathermap.org/data/2.5/forecast")
	cfg.OpenWeather.Timeout = getEnvAsDuration("OPENWEATHER_TIMEOUT", 30*time.Second)

	// Groq
	cfg.Groq.APIKey = getEnv("GROQ_API_KEY", "")
	cfg.Groq.URL = getEnv("GROQ_URL", "https://api.groq.com/openai/v1/chat/completions")
	cfg.Groq.Model = getEnv("GROQ_MODEL", "llama-3.3-70b-versatile")

	// YouTube
	cfg.YouTube.APIKey = getEnv("YOUTUBE_API_KEY", "")
	cfg.YouTube.URL = getEnv("YOUTUBE_URL", "https://www.googleapis.com/youtube/v3/search")

	// Export
	cfg.Export.OutputDir = getEnv("EXPORT_OUTPUT_DIR", "./data/exports")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}
