package utorrent

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultUserAgent      = "go-utorrent"
)

// LoadConfig reads utorrent.yaml from the working directory or configPath,
// then applies UTORRENT_* environment overrides (UTORRENT_BASE_URL,
// UTORRENT_USERNAME, UTORRENT_PASSWORD, UTORRENT_REQUEST_TIMEOUT,
// UTORRENT_USER_AGENT, UTORRENT_REFRESH_TOKEN_ON_AUTH_FAILURE,
// UTORRENT_LOG_LEVEL). A missing file is not an error.
func LoadConfig(configPath string) (Config, error) {
	v := viper.New()

	v.SetDefault("base_url", "http://localhost:8080/gui/")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("refresh_token_on_auth_failure", false)
	v.SetDefault("log_level", "")

	v.SetConfigName("utorrent")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}

	v.SetEnvPrefix("UTORRENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "failed to read config file")
		}
	}

	cfg := Config{
		BaseURL:                   v.GetString("base_url"),
		Username:                  v.GetString("username"),
		Password:                  v.GetString("password"),
		RequestTimeout:            v.GetDuration("request_timeout"),
		UserAgent:                 v.GetString("user_agent"),
		RefreshTokenOnAuthFailure: v.GetBool("refresh_token_on_auth_failure"),
	}

	if level := v.GetString("log_level"); level != "" {
		cfg.Logger = NewLogger(level)
	}

	return cfg, nil
}
