package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Settings is the client configuration. Theme is the only value the client
// writes back; everything else is read-only at startup.
type Settings struct {
	BaseURL string `mapstructure:"base_url"`
	UserID  string `mapstructure:"user_id"`
	Theme   string `mapstructure:"theme"`
	Local   bool   `mapstructure:"local"`
}

const (
	DefaultBaseURL = "http://localhost:8000"

	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Load reads the configuration from configFile, or from the default location
// under the user config directory when empty. A missing file is not an
// error.
func Load(configFile string) (*Settings, *viper.Viper, error) {
	v := viper.New()
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("theme", ThemeSystem)
	v.SetDefault("local", false)

	v.SetEnvPrefix("COPILOT")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		configDir, err := os.UserConfigDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(configDir, "copilot"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, nil, errors.Wrap(err, "failed to read config")
		}
		log.Debug().Msg("no config file found, using defaults")
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &settings, v, nil
}

// SaveTheme persists the theme preference, creating the config file when it
// does not exist yet.
func SaveTheme(v *viper.Viper, theme string) error {
	switch theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return errors.Errorf("unknown theme %q", theme)
	}

	v.Set("theme", theme)
	if err := v.WriteConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "failed to write config")
		}
		configDir, err := os.UserConfigDir()
		if err != nil {
			return errors.Wrap(err, "failed to locate config directory")
		}
		dir := filepath.Join(configDir, "copilot")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
		if err := v.WriteConfigAs(filepath.Join(dir, "config.yaml")); err != nil {
			return errors.Wrap(err, "failed to write config")
		}
	}
	return nil
}
