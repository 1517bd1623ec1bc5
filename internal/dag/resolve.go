package dag

import (
	"fmt"
	"strings"
)

// referenceSigil prefixes a string input that should be resolved
// against the shared run context instead of passed through verbatim.
const referenceSigil = "$"

// resolveInputs materializes a task's declared inputs against the
// shared context. Nested maps and lists are resolved element-wise;
// non-reference values pass through unchanged.
func resolveInputs(inputs map[string]any, runCtx map[string]any) (map[string]any, error) {
	if len(inputs) == 0 {
		return map[string]any{}, nil
	}
	resolved := make(map[string]any, len(inputs))
	for name, value := range inputs {
		v, err := resolveValue(value, runCtx)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		resolved[name] = v
	}
	return resolved, nil
}

func resolveValue(value any, runCtx map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		if !strings.HasPrefix(v, referenceSigil) {
			return v, nil
		}
		return resolveReference(v, runCtx)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			r, err := resolveValue(elem, runCtx)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			r, err := resolveValue(elem, runCtx)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return value, nil
	}
}

// resolveReference walks a "$a.b.c" expression through nested maps in
// the shared context.
func resolveReference(expr string, runCtx map[string]any) (any, error) {
	path := strings.TrimPrefix(expr, referenceSigil)
	if path == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvedReference, expr)
	}

	var current any = runCtx
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnresolvedReference, expr)
		}
		current, ok = node[segment]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnresolvedReference, expr)
		}
	}
	return current, nil
}
