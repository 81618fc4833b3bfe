// Package engine provides the Lisp evaluation engine for shade design
// scripts. It wraps zygomys in a sandboxed environment and produces a
// parameter snapshot from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/shadecut/pkg/shade"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Script is the outcome of a successful evaluation.
type Script struct {
	Snapshot shade.Snapshot
	// GlassSet and ShadeSet report which forms the script used. Parameters
	// the script did not set keep the engine defaults.
	GlassSet bool
	ShadeSet bool
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter for design scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	defaults   shade.Snapshot
	timeout    time.Duration
}

// NewEngine creates an Engine whose scripts start from defaults. A
// non-positive timeout selects EvalTimeout.
func NewEngine(defaults shade.Snapshot, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = EvalTimeout
	}
	return &Engine{defaults: defaults, timeout: timeout}
}

// Defaults returns the snapshot scripts start from.
func (e *Engine) Defaults() shade.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.defaults
}

// SetDefaults replaces the snapshot later scripts start from.
func (e *Engine) SetDefaults(s shade.Snapshot) {
	e.mu.Lock()
	e.defaults = s
	e.mu.Unlock()
}

// Evaluate takes Lisp source code and produces a parameter snapshot.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns script + nil errors + nil error
//   - On parse/eval failure: returns nil script + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
//
// The snapshot is not validated here; that is the geometry core's job.
func (e *Engine) Evaluate(source string) (*Script, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	defaults := e.defaults
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := evaluate(source, defaults)
		ch <- evalResult{script: s, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func evaluate(source string, defaults shade.Snapshot) (*Script, []EvalError, error) {
	// Empty source is a valid program that keeps every default.
	if strings.TrimSpace(source) == "" {
		return &Script{Snapshot: defaults, Warnings: []EvalWarning{noParameters}}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	st := &scriptState{snap: defaults}
	registerBuiltins(env, st)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	script := &Script{
		Snapshot: st.snap,
		GlassSet: st.glassSet,
		ShadeSet: st.shadeSet,
	}
	if !st.glassSet && !st.shadeSet {
		script.Warnings = append(script.Warnings, noParameters)
	}
	return script, nil, nil
}

var noParameters = EvalWarning{Message: "script defines no glass or shade; using defaults"}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
