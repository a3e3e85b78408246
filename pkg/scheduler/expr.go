package scheduler

import (
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/matzehuels/tweetwall/pkg/errors"
)

// Predicate is a compiled JavaScript boolean expression over the machine
// state. The expression sees:
//
//	props    snapshot of the property bag
//	hour     current hour, 0-23
//	weekday  current weekday, 0 is Sunday
//	step     name of the step being considered
type Predicate struct {
	src     string
	program *goja.Program
}

// CompilePredicate compiles src. Syntax errors are INVALID_CONFIG errors.
func CompilePredicate(src string) (*Predicate, error) {
	wrapped := "(function() {\n return (" + src + ")\n})()"
	prog, err := goja.Compile("skip_if", wrapped, true)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "skip_if %q", src)
	}
	return &Predicate{src: src, program: prog}, nil
}

// String returns the source expression.
func (p *Predicate) String() string { return p.src }

// Eval runs the predicate. Each evaluation uses a fresh runtime, so scripts
// cannot leak state between calls.
func (p *Predicate) Eval(mc *MachineContext, step string, now time.Time) (bool, error) {
	rt := goja.New()
	vars := map[string]any{
		"props":   mc.Properties.Snapshot(),
		"hour":    now.Hour(),
		"weekday": int(now.Weekday()),
		"step":    step,
	}
	for k, v := range vars {
		if err := rt.Set(k, v); err != nil {
			return false, fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	v, err := rt.RunProgram(p.program)
	if err != nil {
		return false, fmt.Errorf("skip_if %q: %w", p.src, err)
	}
	return v.ToBoolean(), nil
}
