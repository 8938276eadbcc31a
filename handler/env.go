package handler

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// WithEnv overlays options from environment variables carrying prefix:
//
//	<prefix>DEBUG=true
//	<prefix>RESPONSE_VALIDATION=true
//	<prefix>COERCE_TYPES=false
//	<prefix>REMOVE_ADDITIONAL=false
//
// Unset variables leave the corresponding option untouched. It panics if the
// environment cannot be read.
func WithEnv(prefix string) Option {
	k := koanf.New(".")
	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, prefix))
	}), nil)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("handler.WithEnv(%s): %w", prefix, err))
		})
	}

	return OptionFunc(func(o *Options) {
		if k.Exists("debug") {
			o.DebugMode = k.Bool("debug")
		}
		if k.Exists("response_validation") {
			o.ResponseValidation = k.Bool("response_validation")
		}
		if k.Exists("coerce_types") {
			o.CoerceTypes = k.Bool("coerce_types")
		}
		if k.Exists("remove_additional") {
			o.RemoveAdditional = k.Bool("remove_additional")
		}
	})
}
