// Package sandbox executes user-edited code bodies and returns their result
// as plain JSON-native values. There is one shared interpreter with no
// isolation between invocations, so executions are serialized: a second
// request waits for the first to finish.
package sandbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

// Runner executes a code body and returns its final value as a JSON-native
// Go value (string, float64, bool, nil, []any, map[string]any).
type Runner interface {
	RunCode(ctx context.Context, code string) (any, error)
}

// JSRunner evaluates JavaScript in a single shared interpreter.
type JSRunner struct {
	mu sync.Mutex
	vm *goja.Runtime
}

// NewJSRunner creates a runner with a fresh interpreter.
func NewJSRunner() *JSRunner {
	return &JSRunner{vm: goja.New()}
}

// RunCode evaluates the code body and returns the value of its final
// expression. Executions are serialized; an in-flight execution cannot be
// interrupted, so cancellation is only observed before the run starts
// (callers drop results produced after their context is cancelled).
func (r *JSRunner) RunCode(ctx context.Context, code string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	val, err := r.vm.RunString(code)
	if err != nil {
		return nil, fmt.Errorf("execute code: %w", err)
	}
	return normalize(val.Export()), nil
}

// normalize coerces interpreter-native values into plain JSON-native ones:
// integer types widen to float64, slices and maps normalize recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	}
	return v
}
