package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"geohash-service/geohash"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Search SearchConfig
}

type ServerConfig struct {
	Addr             string
	DefaultPrecision int
	MaxPrecision     int
}

type DBConfig struct {
	User           string
	Password       string
	DBName         string
	SSLMode        string
	Host           string
	Port           string
	MigrationsPath string
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	CellPrecision int
}

type SearchConfig struct {
	Technique       string
	MaxRetries      int
	InitialRadius   float64
	DefaultDistance float64
}

// DSN returns the postgres URL shared by lib/pq and golang-migrate.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.defaultprecision", 7)
	v.SetDefault("server.maxprecision", 12)

	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.dbname", "geohash")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.migrationspath", "file://database/migrations")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cellprecision", 5)

	v.SetDefault("search.technique", "geohashing")
	v.SetDefault("search.maxretries", 3)
	v.SetDefault("search.initialradius", 0.05)
	v.SetDefault("search.defaultdistance", 10)
}

// Load reads config.yaml (or the file at path), then .env and GEOHASH_* variables.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("geohash")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	// Stored venue hashes and decoded cells are limited to geohash.MaxCellPrecision.
	if c.Server.MaxPrecision < 1 || c.Server.MaxPrecision > geohash.MaxCellPrecision {
		return fmt.Errorf("server.maxprecision %d outside [1, %d]", c.Server.MaxPrecision, geohash.MaxCellPrecision)
	}
	if c.Server.DefaultPrecision < 1 || c.Server.DefaultPrecision > c.Server.MaxPrecision {
		return fmt.Errorf("server.defaultprecision %d outside [1, %d]", c.Server.DefaultPrecision, c.Server.MaxPrecision)
	}
	// Cache cells are prefixes of the stored venue hash.
	if c.Redis.CellPrecision < 1 || c.Redis.CellPrecision > c.Server.DefaultPrecision {
		return fmt.Errorf("redis.cellprecision %d outside [1, %d]", c.Redis.CellPrecision, c.Server.DefaultPrecision)
	}
	if c.Search.MaxRetries < 1 {
		return fmt.Errorf("search.maxretries must be positive, got %d", c.Search.MaxRetries)
	}
	if c.Search.InitialRadius <= 0 {
		return fmt.Errorf("search.initialradius must be positive, got %v", c.Search.InitialRadius)
	}
	return nil
}
