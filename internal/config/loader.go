package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName = ".git2html"
	configType = "yaml"
	envPrefix  = "GIT2HTML"
)

// Load reads configuration from defaults, the config file and env vars.
// An explicit configPath must exist; otherwise .git2html.yaml is looked up in
// the working directory and then $HOME, and a missing file is not an error.
// The result is not validated: callers layer their flags on top first and
// then call Validate.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("theme", DefaultTheme)
	v.SetDefault("highlight", true)
	v.SetDefault("word_diff", true)
	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("output_dir", "")
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("stats", true)
	v.SetDefault("git.extra_args", "")
	v.SetDefault("git.timeout", DefaultTimeout)
}
