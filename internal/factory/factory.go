package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/enigma29/cluehunt/internal/dependencies/clock"
	"github.com/enigma29/cluehunt/internal/dependencies/random"
	"github.com/enigma29/cluehunt/internal/services/access"
	"github.com/enigma29/cluehunt/internal/services/admin"
	"github.com/enigma29/cluehunt/internal/services/leaderboard"
	"github.com/enigma29/cluehunt/internal/services/questions"
	"github.com/enigma29/cluehunt/internal/session"
	"github.com/enigma29/cluehunt/internal/storage"
	"github.com/enigma29/cluehunt/internal/storage/memory"
	redisstorage "github.com/enigma29/cluehunt/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Client-local session cache
	Sessions *session.Store

	// Services
	AccessResolver     *access.Resolver
	QuestionService    *questions.Service
	LeaderboardService *leaderboard.Service
	AdminService       *admin.Service

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SessionPath overrides where the local session descriptor is cached
	// (optional). If empty, the per-user default location is used.
	SessionPath string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	sessionPath := cfg.SessionPath
	if sessionPath == "" {
		sessionPath = session.DefaultPath()
	}

	return NewWithDependencies(store, session.NewStore(sessionPath), clock.New(), random.New(), logger), nil
}

// NewWithDependencies creates an App with the given dependencies (useful for testing)
func NewWithDependencies(store storage.Storage, sessions *session.Store, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	questionService := questions.New(store, rnd, logger)
	accessResolver := access.NewResolver(store, sessions, clk, rnd, logger)
	leaderboardService := leaderboard.New(store, logger)
	adminService := admin.New(store, rnd, logger)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		Sessions:           sessions,
		AccessResolver:     accessResolver,
		QuestionService:    questionService,
		LeaderboardService: leaderboardService,
		AdminService:       adminService,
		Logger:             logger,
	}
}
