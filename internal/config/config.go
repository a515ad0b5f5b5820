package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	Backtest   BacktestConfig
	MarketData MarketDataConfig
	Universe   UniverseConfig
	Security   SecurityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// BacktestConfig holds the engine defaults.
type BacktestConfig struct {
	Benchmark        string
	InitialCapital   float64
	FetchConcurrency int
}

// MarketDataConfig holds the upstream client and cache settings.
type MarketDataConfig struct {
	YahooBaseURL string
	YahooTimeout time.Duration
	CacheTTL     time.Duration
}

// UniverseConfig holds the dividend universe settings.
// An empty Cron disables the scheduled refresh.
type UniverseConfig struct {
	Dir  string
	Cron string
}

// SecurityConfig holds the shared key guarding write endpoints.
// An empty APIKey leaves those endpoints open.
type SecurityConfig struct {
	APIKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/backtester.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Backtest: BacktestConfig{
			Benchmark: strings.ToUpper(getEnv("BENCHMARK_TICKER", "SPY")),
		},
		MarketData: MarketDataConfig{
			YahooBaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		},
		Universe: UniverseConfig{
			Dir:  getEnv("UNIVERSE_DIR", "./data"),
			Cron: os.Getenv("UNIVERSE_CRON"),
		},
		Security: SecurityConfig{
			APIKey: os.Getenv("INTERNAL_API_KEY"),
		},
	}
	if _, set := os.LookupEnv("UNIVERSE_CRON"); !set {
		config.Universe.Cron = "0 6 * * *"
	}

	var err error
	if config.Backtest.InitialCapital, err = getFloat("DEFAULT_INITIAL_CAPITAL", 100000); err != nil {
		return nil, err
	}
	if config.Backtest.InitialCapital <= 0 {
		return nil, fmt.Errorf("DEFAULT_INITIAL_CAPITAL must be positive, got %v", config.Backtest.InitialCapital)
	}
	if config.Backtest.FetchConcurrency, err = getInt("FETCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if config.Backtest.FetchConcurrency < 1 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", config.Backtest.FetchConcurrency)
	}
	if config.MarketData.YahooTimeout, err = getDuration("YAHOO_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if config.MarketData.CacheTTL, err = getDuration("CACHE_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if config.CORS.MaxAge, err = getDuration("CORS_MAX_AGE", 5*time.Minute); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return i, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
