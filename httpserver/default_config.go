package httpserver

import (
	"fmt"

	"github.com/aura-studio/apifunc/internal/configfile"
)

// DefaultConfigCandidates returns the paths checked, in order, for the
// emulator config: http.yaml, http.yml and the same under http/.
func DefaultConfigCandidates() []string {
	return configfile.Candidates("http")
}

func FindDefaultConfigFile() (string, error) {
	return configfile.Find("http", DefaultConfigCandidates())
}

// WithDefaultConfig loads the first config file found by
// FindDefaultConfigFile. It panics if there is none.
func WithDefaultConfig() Option {
	p, err := FindDefaultConfigFile()
	if err != nil {
		return HttpOption(func(*Options) {
			panic(fmt.Errorf("httpserver.WithDefaultConfig: %w", err))
		})
	}
	return WithConfigFile(p)
}
