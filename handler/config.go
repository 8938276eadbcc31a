package handler

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlHandlerConfig struct {
	Mode struct {
		Debug bool `yaml:"debug"`
	} `yaml:"mode"`
	Validation struct {
		CoerceTypes      *bool `yaml:"coerceTypes"`
		RemoveAdditional *bool `yaml:"removeAdditional"`
		Response         bool  `yaml:"response"`
	} `yaml:"validation"`
	Headers []struct {
		Key   string `yaml:"key"`
		Value string `yaml:"value"`
	} `yaml:"headers"`
}

func optionFromHandlerConfig(cfg yamlHandlerConfig) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = cfg.Mode.Debug
		o.ResponseValidation = cfg.Validation.Response
		if cfg.Validation.CoerceTypes != nil {
			o.CoerceTypes = *cfg.Validation.CoerceTypes
		}
		if cfg.Validation.RemoveAdditional != nil {
			o.RemoveAdditional = *cfg.Validation.RemoveAdditional
		}

		if o.DefaultHeaders == nil {
			o.DefaultHeaders = make(map[string]string)
		}
		for _, h := range cfg.Headers {
			if h.Key == "" {
				continue
			}
			o.DefaultHeaders[h.Key] = h.Value
		}
	})
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlHandlerConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return optionFromHandlerConfig(cfg), nil
}

// WithConfig parses YAML bytes following handler.yml structure and applies it to Options.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("handler.WithConfig: %w", err))
		})
	}
	return opt
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("handler.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
