// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	engine "github.com/ppravin88/Shanko/engine"
)

// EnvPrefix prefixes every environment override, e.g. SHANKO_SIM_PLAYERS.
const EnvPrefix = "SHANKO"

// Config is the simulator configuration.
type Config struct {
	Sim      SimConfig      `mapstructure:"sim"`
	Table    TableConfig    `mapstructure:"table"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// SimConfig sizes a simulator run.
type SimConfig struct {
	Players  int    `mapstructure:"players"`
	Humans   int    `mapstructure:"humans"`
	Games    int    `mapstructure:"games"`
	Parallel int    `mapstructure:"parallel"`
	Seed     uint64 `mapstructure:"seed"` // 0 seeds every game from the OS
	Format   string `mapstructure:"format"`
}

// TableConfig carries the house rules every table is created with.
type TableConfig struct {
	MaxTurnsPerRound int           `mapstructure:"max_turns_per_round"`
	TurnTimeout      time.Duration `mapstructure:"turn_timeout"`
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig points at the Postgres results store. An empty Host
// disables it.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// Enabled reports whether results should be written to Postgres.
func (c DatabaseConfig) Enabled() bool { return c.Host != "" }

// DSN returns the connection URL.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// RedisConfig points at the Redis leaderboard. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	Key      string `mapstructure:"key"`
}

// Enabled reports whether the leaderboard should be updated.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Sim:   SimConfig{Players: 4, Games: 1, Parallel: 4, Format: "text"},
		Table: TableConfig{MaxTurnsPerRound: 400},
		Log:   LogConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{
			Port:            5432,
			Name:            "shanko",
			User:            "shanko",
			SSLMode:         "disable",
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{PoolSize: 4, Key: "shanko:wins"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("sim.players", d.Sim.Players)
	v.SetDefault("sim.humans", d.Sim.Humans)
	v.SetDefault("sim.games", d.Sim.Games)
	v.SetDefault("sim.parallel", d.Sim.Parallel)
	v.SetDefault("sim.seed", d.Sim.Seed)
	v.SetDefault("sim.format", d.Sim.Format)

	v.SetDefault("table.max_turns_per_round", d.Table.MaxTurnsPerRound)
	v.SetDefault("table.turn_timeout", d.Table.TurnTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.name", d.Database.Name)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("redis.key", d.Redis.Key)
}

// RegisterFlags adds the simulator flags to flags. Their defaults match
// Defaults.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Defaults()
	flags.String("config", "", "path to a YAML config file")
	flags.Int("players", d.Sim.Players, "seats per game (2-8)")
	flags.Int("humans", d.Sim.Humans, "seats played by the scripted human stand-in")
	flags.Int("games", d.Sim.Games, "number of games to play")
	flags.Int("parallel", d.Sim.Parallel, "games played at once")
	flags.Uint64("seed", d.Sim.Seed, "base RNG seed; game i uses seed+i (0 = random)")
	flags.String("format", d.Sim.Format, "report format: text, json or yaml")
	flags.Int("max-turns", d.Table.MaxTurnsPerRound, "turns before a round is closed without a winner (0 = no limit)")
	flags.String("log-level", d.Log.Level, "log level")
	flags.String("log-format", d.Log.Format, "log format: text or json")
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"players":    "sim.players",
	"humans":     "sim.humans",
	"games":      "sim.games",
	"parallel":   "sim.parallel",
	"seed":       "sim.seed",
	"format":     "sim.format",
	"max-turns":  "table.max_turns_per_round",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// Load builds the configuration from, lowest precedence first: defaults, the
// YAML file at path (skipped when empty), a .env file in the working
// directory, SHANKO_* environment variables and the flags in flags that were
// set on the command line.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks value ranges.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Sim.Players < engine.MinPlayers || c.Sim.Players > engine.MaxPlayers {
		add("sim.players must be between %d and %d, got %d", engine.MinPlayers, engine.MaxPlayers, c.Sim.Players)
	}
	if c.Sim.Humans < 0 || c.Sim.Humans > c.Sim.Players {
		add("sim.humans must be between 0 and sim.players, got %d", c.Sim.Humans)
	}
	if c.Sim.Games < 1 {
		add("sim.games must be at least 1, got %d", c.Sim.Games)
	}
	if c.Sim.Parallel < 1 {
		add("sim.parallel must be at least 1, got %d", c.Sim.Parallel)
	}
	switch c.Sim.Format {
	case "text", "json", "yaml":
	default:
		add("sim.format must be text, json or yaml, got %q", c.Sim.Format)
	}
	if c.Table.MaxTurnsPerRound < 0 {
		add("table.max_turns_per_round must not be negative")
	}
	if c.Table.TurnTimeout < 0 {
		add("table.turn_timeout must not be negative")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		add("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Database.Enabled() && (c.Database.Port <= 0 || c.Database.MaxOpenConns < 1) {
		add("database.port and database.max_open_conns must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
