package execx

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// FakeRunner is a scripted Runner for tests. Responses are keyed by the full
// command line; every invocation is recorded for assertion.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string]Result
	errs      map[string]error
	calls     []string
}

// NewFakeRunner returns an empty FakeRunner. Unscripted commands succeed
// with empty output, matching tools that are quiet on success.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		responses: make(map[string]Result),
		errs:      make(map[string]error),
	}
}

// Script sets the result for a command line.
func (f *FakeRunner) Script(cmdline string, result Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[cmdline] = result
}

// ScriptError makes a command line fail to run entirely.
func (f *FakeRunner) ScriptError(cmdline string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[cmdline] = err
}

// Run implements Runner.
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (Result, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmdline)

	if err, ok := f.errs[cmdline]; ok {
		return Result{ExitCode: -1}, err
	}
	if result, ok := f.responses[cmdline]; ok {
		return result, nil
	}
	return Result{}, nil
}

// Calls returns every command line run so far, in order.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns the number of invocations matching the command line.
func (f *FakeRunner) CallCount(cmdline string) int {
	count := 0
	for _, call := range f.Calls() {
		if call == cmdline {
			count++
		}
	}
	return count
}

var _ Runner = (*FakeRunner)(nil)
var _ fmt.Stringer = Result{}

// String renders the result for test failure messages.
func (res Result) String() string {
	return fmt.Sprintf("exit=%d stdout=%q stderr=%q", res.ExitCode, res.Stdout, res.Stderr)
}
