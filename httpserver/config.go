package httpserver

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlConfig struct {
	HTTP struct {
		Address string `yaml:"address"`
		Debug   bool   `yaml:"debug"`
		Cors    bool   `yaml:"cors"`
		Stage   string `yaml:"stage"`
	} `yaml:"http"`
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return HttpOption(func(o *Options) {
		if cfg.HTTP.Address != "" {
			o.Address = cfg.HTTP.Address
		}
		if cfg.HTTP.Stage != "" {
			o.Stage = cfg.HTTP.Stage
		}
		o.DebugMode = cfg.HTTP.Debug
		o.CorsMode = cfg.HTTP.Cors
	}), nil
}

// WithConfig parses YAML bytes following http.yaml structure and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return HttpOption(func(*Options) {
			panic(fmt.Errorf("httpserver.WithConfig: %w", err))
		})
	}
	return opt
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return HttpOption(func(*Options) {
			panic(fmt.Errorf("httpserver.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
