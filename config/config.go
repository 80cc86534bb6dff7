// Package config loads client and callback server settings from a YAML
// file and SLIMS_* environment variables.
package config

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/sicko7947/slims"
	"github.com/sicko7947/slims/transport"
)

// EnvPrefix prefixes every environment variable, e.g. SLIMS_URL or
// SLIMS_OAUTH_CLIENT_ID
const EnvPrefix = "SLIMS"

// Config holds the configuration of one instance
type Config struct {
	// Name identifies the instance towards the server
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	OAuth struct {
		Enabled      bool   `mapstructure:"enabled"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"oauth"`

	// RepoLocation is the local mount of the server's file repository
	RepoLocation string `mapstructure:"repo_location"`

	// Server is where the server reaches the flow callback endpoint
	Server struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"server"`

	Timeout  time.Duration `mapstructure:"timeout"`
	LogLevel string        `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"name":                "slims",
	"url":                 "",
	"username":            "",
	"password":            "",
	"oauth.enabled":       false,
	"oauth.client_id":     "",
	"oauth.client_secret": "",
	"repo_location":       "",
	"server.host":         "localhost",
	"server.port":         5000,
	"timeout":             transport.DefaultTimeout,
	"log_level":           "info",
}

// Load reads the configuration. With an empty path, slims.yaml is looked
// up in the working directory and ./config, and a missing file is not an
// error. Environment variables override the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("slims")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, slims.NewConfigError("failed to read config: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, slims.NewConfigError("failed to decode config: %v", err)
	}

	cfg.URL = strings.TrimSpace(cfg.URL)

	return &cfg, nil
}

// Validate checks that the credentials needed by the chosen
// authentication scheme are present
func (c *Config) Validate() error {
	if c.Name == "" {
		return slims.NewConfigError("name is required")
	}
	if c.URL == "" {
		return slims.NewConfigError("url is required")
	}
	if c.OAuth.Enabled {
		if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
			return slims.NewConfigError("oauth.client_id and oauth.client_secret are required when oauth is enabled")
		}
		return nil
	}
	if c.Username == "" || c.Password == "" {
		return slims.NewConfigError("username and password are required when oauth is disabled")
	}
	return nil
}

// RedirectURL returns where the server sends the authorization code
func (c *Config) RedirectURL() string {
	return transport.RedirectURL(c.Server.Host, c.Server.Port, c.Name)
}

// Logger builds a console logger at the configured level
func (c *Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger().
		Level(level)
}

// Transport builds the transport for the configured authentication scheme
func (c *Config) Transport(logger zerolog.Logger) (slims.Transport, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	opts := []transport.Option{
		transport.WithLogger(logger),
		transport.WithHTTPClient(&http.Client{Timeout: c.Timeout}),
	}
	if c.OAuth.Enabled {
		tr, err := transport.NewOAuth(c.URL, c.OAuth.ClientID, c.OAuth.ClientSecret, c.RedirectURL(), opts...)
		if err != nil {
			return nil, err
		}
		return tr, nil
	}
	tr, err := transport.NewBasicAuth(c.URL, c.Username, c.Password, opts...)
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// Client builds a client for the configured instance
func (c *Config) Client(logger zerolog.Logger) (*slims.Client, error) {
	tr, err := c.Transport(logger)
	if err != nil {
		return nil, err
	}
	return slims.New(c.Name, tr,
		slims.WithRepoLocation(c.RepoLocation),
		slims.WithLogger(logger),
	)
}
