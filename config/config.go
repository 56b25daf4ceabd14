package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"strings"
	"time"
	_ "time/tzdata"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/status-page/internal/service"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Address     string  `mapstructure:"address"`
	Environment string  `mapstructure:"environment"`
	RateLimit   float64 `mapstructure:"rate_limit"`
	RateBurst   int     `mapstructure:"rate_burst"`
}

type DashboardConfig struct {
	Title    string `mapstructure:"title"`
	Timezone string `mapstructure:"timezone"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type ServiceConfig struct {
	Name     string   `mapstructure:"name"`
	Proxy    string   `mapstructure:"proxy"`
	Backends []string `mapstructure:"backends"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Services  []ServiceConfig `mapstructure:"services"`
}

// defaultServices mirrors the deployment the dashboard was first written for.
var defaultServices = []any{
	map[string]any{
		"name":  "Nginx Orion (1026)",
		"proxy": "http://nginx-orion:1026/health",
		"backends": []any{
			"http://orion-1:1027/version",
			"http://orion-2:1028/version",
			"http://orion-3:1029/version",
		},
	},
	map[string]any{
		"name":  "Nginx IoT Agent (7896)",
		"proxy": "http://nginx-iot-7896:7896/health",
		"backends": []any{
			"http://iotagent-1:7897/iot/about",
			"http://iotagent-2:7898/iot/about",
			"http://iotagent-3:7899/iot/about",
		},
	},
	map[string]any{
		"name":  "Nginx IoT Agent (4041)",
		"proxy": "http://nginx-iot-4041:4041/health",
		"backends": []any{
			"http://iotagent-1:4042/iot/about",
			"http://iotagent-2:4043/iot/about",
			"http://iotagent-3:4044/iot/about",
		},
	},
}

// Load reads configuration from an optional .env file, config.yaml in
// ./config or the working directory, and the environment, in increasing
// order of precedence. The result is validated before it is returned.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.rate_limit", 5)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("dashboard.title", "Service Status")
	v.SetDefault("dashboard.timezone", "Europe/Madrid")
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("services", defaultServices)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		slog.Warn("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Groups converts the configured services into probe targets, preserving
// their order.
func (c *Config) Groups() ([]service.Group, error) {
	groups := make([]service.Group, 0, len(c.Services))

	for _, s := range c.Services {
		g, err := service.ParseGroup(s.Name, s.Proxy, s.Backends)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	return groups, nil
}

// Location returns the time zone used to display timestamps.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Dashboard.Timezone)
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
					validation.Field(&sc.RateLimit,
						validation.Min(0.0),
					),
					validation.Field(&sc.RateBurst,
						validation.Min(0),
					),
				)
			}),
		),
		validation.Field(&c.Dashboard,
			validation.Required,
			validation.By(func(value interface{}) error {
				dc, ok := value.(DashboardConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a DashboardConfig")
				}
				return validation.ValidateStruct(&dc,
					validation.Field(&dc.Title, validation.Required),
					validation.Field(&dc.Timezone,
						validation.Required,
						validation.By(validateTimezone),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Services,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateServiceConfig)),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateTimezone(value interface{}) error {
	name, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := time.LoadLocation(name); err != nil {
		return validation.NewError("validation_invalid_timezone", "must be an IANA time zone name (e.g., Europe/Madrid, UTC)")
	}

	return nil
}

func validateEndpointURL(value interface{}) error {
	rawURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := service.ParseEndpoint(rawURL); err != nil {
		return validation.NewError("validation_invalid_url", "must be an absolute http or https URL")
	}

	return nil
}

func validateServiceConfig(value interface{}) error {
	sc, ok := value.(ServiceConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a ServiceConfig")
	}

	return validation.ValidateStruct(&sc,
		validation.Field(&sc.Name, validation.Required),
		validation.Field(&sc.Proxy,
			validation.Required,
			validation.By(validateEndpointURL),
		),
		validation.Field(&sc.Backends,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateEndpointURL)),
		),
	)
}
