package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is read from KINGS_* environment variables
type Config struct {
	Addr string `env:"KINGS_ADDR,default=:8000"`

	AIMoveInterval time.Duration `env:"KINGS_AI_MOVE_INTERVAL,default=1s"`
	// TurnTimeout of zero lets humans take as long as they like
	TurnTimeout time.Duration `env:"KINGS_TURN_TIMEOUT,default=2m"`
	BotStrategy string        `env:"KINGS_BOT_STRATEGY,default=heuristic"`

	WinThreshold int `env:"KINGS_WIN_THRESHOLD,default=9"`
	BlankFiller  int `env:"KINGS_BLANK_FILLER,default=4"`

	BroadcastBacklog int           `env:"KINGS_BROADCAST_BACKLOG,default=16"`
	GameTTL          time.Duration `env:"KINGS_GAME_TTL,default=6h"`
	// FinishedGrace is how long a won game stays reachable
	FinishedGrace time.Duration `env:"KINGS_FINISHED_GRACE,default=1m"`

	// AllowedOrigins is separated by semicolons
	AllowedOrigins []string `env:"KINGS_ALLOWED_ORIGINS,default=*"`

	Logging LoggingConfig
}

type LoggingConfig struct {
	Level  string `env:"KINGS_LOG_LEVEL,default=info"`
	Format string `env:"KINGS_LOG_FORMAT,default=console"`
}

// Load reads the optional dotenv files (".env" when none are named) into
// the environment without overriding it, then decodes the environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	err := envdecode.Decode(&cfg)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: empty address", ErrInvalidConfig)
	case c.AIMoveInterval <= 0:
		return fmt.Errorf("%w: AI move interval must be positive", ErrInvalidConfig)
	case c.TurnTimeout < 0:
		return fmt.Errorf("%w: turn timeout cannot be negative", ErrInvalidConfig)
	case c.WinThreshold <= 0:
		return fmt.Errorf("%w: win threshold must be positive", ErrInvalidConfig)
	case c.BlankFiller < 0:
		return fmt.Errorf("%w: blank filler cannot be negative", ErrInvalidConfig)
	case c.BroadcastBacklog <= 0:
		return fmt.Errorf("%w: broadcast backlog must be positive", ErrInvalidConfig)
	case c.GameTTL <= 0:
		return fmt.Errorf("%w: game TTL must be positive", ErrInvalidConfig)
	case c.FinishedGrace <= 0:
		return fmt.Errorf("%w: finished grace must be positive", ErrInvalidConfig)
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// NewLogger builds a production logger for json output and a coloured
// development logger otherwise
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
