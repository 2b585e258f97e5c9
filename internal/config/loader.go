package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = "dts-bundle"

// envPrefix is the environment variable prefix for dts-bundle settings.
const envPrefix = "DTS_BUNDLE"

// Load resolves the configuration. If configPath is non-empty it names the
// config file explicitly; otherwise dts-bundle.{json,yaml,...} is looked up
// in the working directory and a missing file is not an error. flags, when
// non-nil, are bound so that explicitly set flags win over every other
// source.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viperCfg.AutomaticEnv()

	if flags != nil {
		if err := viperCfg.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config
	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Main == "" || cfg.Name == "" {
		dir := cfg.BaseDir
		if dir == "" {
			dir = "."
		}
		pkg, err := DetectPackage(dir)
		if err != nil {
			return nil, err
		}
		if cfg.Name == "" {
			cfg.Name = pkg.Name
		}
		if cfg.Main == "" && pkg.Types != "" {
			cfg.Main = filepath.Join(dir, filepath.FromSlash(pkg.Types))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RegisterFlags defines the flags Load understands on fs. Their defaults are
// zero values so that unset flags never shadow file or env settings.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("main", "", "entry declaration file (default: package.json types)")
	fs.String("name", "", "export name of the bundle (default: package.json name)")
	fs.String("baseDir", "", "project root (default: directory of main)")
	fs.String("out", "", "output file, relative to baseDir (default: <name>.d.ts)")
	fs.String("newline", "", "line ending: lf, crlf or os")
	fs.String("indent", "", `indent unit: literal, "tab" or a number of spaces`)
	fs.String("prefix", "", "prefix of internal module names")
	fs.String("separator", "", "separator of internal module names")
	fs.Bool("externals", false, "inline external modules declared in the project")
	fs.String("exclude", "", "regular expression of relative paths to leave out")
	fs.StringSlice("exclude-glob", nil, "glob of relative paths to leave out (repeatable)")
	fs.StringSlice("ignore", nil, "glob of paths hidden from typing discovery (repeatable)")
	fs.Bool("removeSource", false, "delete the source typings after bundling")
	fs.BoolP("verbose", "v", false, "trace every step")
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("newline", DefaultNewline)
	viperCfg.SetDefault("indent", DefaultIndent)
	viperCfg.SetDefault("prefix", DefaultPrefix)
	viperCfg.SetDefault("separator", DefaultSeparator)
	viperCfg.SetDefault("externals", false)
	viperCfg.SetDefault("removeSource", false)
	viperCfg.SetDefault("verbose", false)
}
