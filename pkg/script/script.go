// Package script provides the layout scripting console. It wraps zygomys
// in a sandboxed environment and exposes a small Lisp vocabulary for
// adding, selecting, and editing habitat modules from the editor's
// console panel.
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/kferr/habkit/pkg/habitat"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in console input.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter for console evaluation. Each call
// to Evaluate creates a fresh sandboxed environment; only the layout
// passed in carries state between calls.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{timeout: EvalTimeout}
}

// Evaluate runs console source through the layout's normal operations,
// exactly as the sidebar buttons would. The script executes against a
// private clone of the layout; the clone's state replaces the real one
// only when evaluation finishes in time, unsuperseded, with no errors.
// A script that fails, times out, or outlives the timeout therefore
// never touches the caller's layout.
//
// Return semantics:
//   - On success: nil errors + nil error
//   - On parse/eval failure: eval errors + nil error (layout untouched)
//   - On fatal failure (timeout, panic): nil + error (layout untouched)
func (e *Engine) Evaluate(source string, l *habitat.Layout) ([]EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	clone := l.Clone()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		evalErrs, err := e.evaluate(source, clone)
		ch <- evalResult{errors: evalErrs, err: err}
	}()

	evalErrs, err := waitWithTimeout(ch, gen, e)
	if err != nil || len(evalErrs) > 0 {
		return evalErrs, err
	}

	l.Replace(clone.Modules())
	if id := clone.SelectedID(); id != "" {
		l.Select(id)
	}
	return nil, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, l *habitat.Layout) ([]EvalError, error) {
	// Empty input is a valid program that does nothing.
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	// Sandbox mode prevents console code from accessing the filesystem
	// or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, l)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return parseZygomysError(err), nil
	}
	return nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError
// values, extracting line numbers from the message where possible.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
