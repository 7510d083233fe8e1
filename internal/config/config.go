package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode           string
	Endpoint       string
	HTTPAddr       string
	GRPCAddr       string
	AllowedOrigins []string
	DBDriver       string
	DBDSN          string
	LogLevel       string
	LogFile        string
	CopyAck        time.Duration
}

const envPrefix = "CLARIFI"

func setDefaults(v *viper.Viper) {
	v.SetDefault("MODE", "local")
	v.SetDefault("ENDPOINT", "http://localhost:5000/analyze")
	v.SetDefault("HTTP_ADDR", ":5000")
	v.SetDefault("GRPC_ADDR", ":5001")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("COPY_ACK", "2s")
}

// NewConfig читает настройки из env-файла (если он есть) и переменных
// окружения с префиксом CLARIFI_. Переменные окружения важнее файла.
func NewConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("error reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		Mode:     v.GetString("MODE"),
		Endpoint: v.GetString("ENDPOINT"),
		HTTPAddr: v.GetString("HTTP_ADDR"),
		GRPCAddr: v.GetString("GRPC_ADDR"),
		DBDriver: v.GetString("DB_DRIVER"),
		DBDSN:    v.GetString("DB_DSN"),
		LogLevel: v.GetString("LOG_LEVEL"),
		LogFile:  v.GetString("LOG_FILE"),
		CopyAck:  v.GetDuration("COPY_ACK"),
	}
	cfg.AllowedOrigins = splitList(v.GetString("ALLOWED_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "local", "remote":
	default:
		return fmt.Errorf("invalid MODE %q: expected local or remote", c.Mode)
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: expected sqlite or postgres", c.DBDriver)
	}

	if c.CopyAck <= 0 {
		return fmt.Errorf("invalid COPY_ACK %s: must be positive", c.CopyAck)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
