package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/enigma29/cluehunt/internal/factory"
	redisstorage "github.com/enigma29/cluehunt/internal/storage/redis"
)

// Config holds CLI configuration
type Config struct {
	StorageType string
	RedisURL    string
	Home        string
	Output      string
	Verbose     bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		StorageType: getEnvOrDefault("CLUEHUNT_STORAGE", factory.StorageTypeMemory),
		RedisURL:    getEnvOrDefault("CLUEHUNT_REDIS_URL", redisstorage.DefaultConfig().URL),
		Home:        getEnvOrDefault("CLUEHUNT_HOME", defaultHome()),
		Output:      "text",
		Verbose:     false,
	}
}

// FactoryConfig translates CLI settings into application wiring
func (c *Config) FactoryConfig() factory.Config {
	fc := factory.Config{
		StorageType: c.StorageType,
		SessionPath: filepath.Join(c.Home, "session.json"),
		Logger:      c.logger(),
	}
	if c.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		fc.RedisConfig = &redisCfg
	}
	return fc
}

func (c *Config) logger() *slog.Logger {
	if !c.Verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cluehunt"
	}
	return filepath.Join(home, ".cluehunt")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
