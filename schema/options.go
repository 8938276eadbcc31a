package schema

import (
	"fmt"

	"github.com/mohae/deepcopy"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

// Options holds the policies applied to every validator produced by a Compiler.
type Options struct {
	CoerceTypes      bool   // convert primitives to the declared type where unambiguous
	RemoveAdditional bool   // drop properties the schema does not declare
	Draft            string // "4", "6", "7", "2019-09" or "2020-12"; empty means the engine default
}

var defaultOptions = &Options{
	CoerceTypes:      true,
	RemoveAdditional: true,
	Draft:            "",
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.init(opts...)
	return options
}

func (o *Options) init(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
}

func WithCoerceTypes(coerce bool) Option {
	return OptionFunc(func(o *Options) {
		o.CoerceTypes = coerce
	})
}

func WithRemoveAdditional(remove bool) Option {
	return OptionFunc(func(o *Options) {
		o.RemoveAdditional = remove
	})
}

func WithDraft(draft string) Option {
	return OptionFunc(func(o *Options) {
		if _, err := draftOf(draft); err != nil {
			panic(err)
		}
		o.Draft = draft
	})
}

func draftOf(name string) (*jsonschema.Draft, error) {
	switch name {
	case "":
		return nil, nil
	case "4":
		return jsonschema.Draft4, nil
	case "6":
		return jsonschema.Draft6, nil
	case "7":
		return jsonschema.Draft7, nil
	case "2019-09":
		return jsonschema.Draft2019, nil
	case "2020-12":
		return jsonschema.Draft2020, nil
	default:
		return nil, fmt.Errorf("schema: unrecognized draft: %q", name)
	}
}
