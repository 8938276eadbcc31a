package server

import (
	"fmt"
	"os"

	"github.com/aura-studio/apifunc/httpserver"
	"github.com/aura-studio/apifunc/internal/configfile"
	yaml "gopkg.in/yaml.v2"
)

type yamlServerConfig struct {
	Mode string `yaml:"mode"`
	HTTP any    `yaml:"http"`
}

type Option interface {
	Apply(*Options)
}

type Options struct {
	Mode string // ModeLambda, ModeHTTP, or empty to detect
	Http []httpserver.Option
}

type serveOptionFunc func(*Options)

func (f serveOptionFunc) Apply(o *Options) { f(o) }

func WithMode(mode string) Option {
	return serveOptionFunc(func(o *Options) {
		o.Mode = mode
	})
}

func WithHttpOptions(opts ...httpserver.Option) Option {
	return serveOptionFunc(func(o *Options) {
		o.Http = append(o.Http, opts...)
	})
}

type serveConfigOption struct {
	mode    string
	httpOpt httpserver.Option
}

func (o serveConfigOption) Apply(opts *Options) {
	if o.mode != "" {
		opts.Mode = o.mode
	}
	if o.httpOpt != nil {
		opts.Http = append(opts.Http, o.httpOpt)
	}
}

// WithServeConfig parses YAML bytes following server.yml structure.
func WithServeConfig(yamlBytes []byte) Option {
	var cfg yamlServerConfig
	if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	}

	switch cfg.Mode {
	case "", ModeLambda, ModeHTTP:
	default:
		panic(fmt.Errorf("server.WithServeConfig: unknown mode %q", cfg.Mode))
	}

	var httpOpt httpserver.Option
	if cfg.HTTP != nil {
		b, err := yaml.Marshal(map[string]any{"http": cfg.HTTP})
		if err != nil {
			panic(fmt.Errorf("server.WithServeConfig: %w", err))
		}
		httpOpt = httpserver.WithConfig(b)
	}

	return serveConfigOption{
		mode:    cfg.Mode,
		httpOpt: httpOpt,
	}
}

// WithServeConfigFile loads a YAML file and applies it as Option.
func WithServeConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("server.WithServeConfigFile(%s): %w", path, err))
	}
	return WithServeConfig(b)
}

// DefaultServeConfigCandidates returns relative paths that will be checked (in order)
// when searching for a default server config.
func DefaultServeConfigCandidates() []string {
	return configfile.Candidates("server", "app.yaml", "app.yml")
}

// FindDefaultServeConfigFile searches for a server config file in CWD, then
// in the executable directory.
func FindDefaultServeConfigFile() (string, error) {
	return configfile.Find("server", DefaultServeConfigCandidates())
}

// WithDefaultServeConfigFile finds and loads the default server config file.
func WithDefaultServeConfigFile() Option {
	p, err := FindDefaultServeConfigFile()
	if err != nil {
		panic(fmt.Errorf("server.WithDefaultServeConfigFile: %w", err))
	}
	return WithServeConfigFile(p)
}
