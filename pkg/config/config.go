// Package config loads settings shared by the marker binaries from
// defaults, an optional markers.yaml, MARKERS_* environment variables and
// command line flags, in increasing order of precedence.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ha1tch/chartmarkers/pkg/markerfile"
)

const (
	// EnvPrefix is prepended to every environment key, e.g. MARKERS_FONT_SIZE.
	EnvPrefix = "markers"
	// FileName is the config file looked up when --config is not given.
	FileName = "markers"
)

// nestedKeys maps flat flag names to nested config keys.
var nestedKeys = map[string]string{
	"font-size":   "font.size",
	"font-family": "font.family",
}

type Config struct {
	Debug  bool   `mapstructure:"debug"`
	Format string `mapstructure:"format"`
	Scale  int    `mapstructure:"scale"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`

	Background string `mapstructure:"background"`
	Font       Font   `mapstructure:"font"`

	Listen string `mapstructure:"listen"`
}

type Font struct {
	Size   float64 `mapstructure:"size"`
	Family string  `mapstructure:"family"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("debug", false)
	v.SetDefault("format", markerfile.OutputPNG)
	v.SetDefault("scale", 2)
	v.SetDefault("width", 800)
	v.SetDefault("height", 400)
	v.SetDefault("background", "#0E0E0F")
	v.SetDefault("font.size", 12)
	v.SetDefault("font.family", "Go")
	v.SetDefault("listen", ":8080")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file and binds flags. An explicit path must exist;
// without one a markers.yaml in the working directory or ~/.markers is
// used when present.
func Load(v *viper.Viper, path string, flags *pflag.FlagSet) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.markers")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := f.Name
			if k, ok := nestedKeys[f.Name]; ok {
				key = k
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = errors.Wrapf(err, "bind flag %s", f.Name)
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &c, nil
}

// RenderOptions converts the config to frame rendering options.
func (c *Config) RenderOptions() markerfile.Options {
	return markerfile.Options{
		Format:     c.Format,
		Scale:      c.Scale,
		Width:      c.Width,
		Height:     c.Height,
		Background: c.Background,
		FontSize:   c.Font.Size,
		FontFamily: c.Font.Family,
	}
}
