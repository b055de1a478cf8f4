package script

import (
	"fmt"
	"time"
)

// EvalTimeout is the hard limit for a single console evaluation.
const EvalTimeout = 5 * time.Second

// evalResult is the internal type used to pass evaluation results
// through channels.
type evalResult struct {
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns a timeout error
// if the evaluation exceeds the engine's timeout. It uses a generation
// counter to discard stale results from previous evaluations.
//
// On timeout the goroutine may still be running, but it only holds the
// clone made for this evaluation, so nothing it does afterwards is
// observable through the caller's layout.
func waitWithTimeout(ch <-chan evalResult, gen uint64, e *Engine) ([]EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()

		if gen != current {
			// A newer evaluation was started; discard this result.
			return nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.errors, res.err

	case <-timer.C:
		return nil, fmt.Errorf("evaluation timed out after %s", e.timeout)
	}
}
