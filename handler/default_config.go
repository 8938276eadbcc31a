package handler

import (
	"fmt"

	"github.com/aura-studio/apifunc/internal/configfile"
)

// DefaultConfigCandidates returns relative paths that will be checked (in order)
// when searching for a default handler config.
func DefaultConfigCandidates() []string {
	return configfile.Candidates("handler")
}

// FindDefaultConfigFile searches for a handler config file in CWD, then in
// the executable directory.
func FindDefaultConfigFile() (string, error) {
	return configfile.Find("handler", DefaultConfigCandidates())
}

// WithDefaultConfigFile finds and loads the default handler config file.
// It panics if the file cannot be found or read.
func WithDefaultConfigFile() Option {
	p, err := FindDefaultConfigFile()
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("handler.WithDefaultConfigFile: %w", err))
		})
	}
	return WithConfigFile(p)
}
