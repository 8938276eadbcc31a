package handler

import "github.com/aura-studio/apifunc/response"

// BindPathParameters copies the declared parameters out of raw. It returns
// the first declared name, in declaration order, whose value is missing or
// empty, with ok set to false.
func BindPathParameters(raw map[string]string, declared []string) (bound map[string]string, missing string, ok bool) {
	bound = make(map[string]string, len(declared))
	for _, name := range declared {
		value := raw[name]
		if value == "" {
			return nil, name, false
		}
		bound[name] = value
	}
	return bound, "", true
}

func (w *Wrapper[B, Q, A]) bind(raw map[string]string) (map[string]string, error) {
	bound, missing, ok := BindPathParameters(raw, w.params)
	if !ok {
		cause := &MissingPathParameterError{Route: w.def.Route(), Parameter: missing}
		return nil, fail(StageBind, response.BadRequest(cause.Error()).
			WithCode(CodeMissingPathParameter).
			WithCause(cause), cause)
	}
	return bound, nil
}
