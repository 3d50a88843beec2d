package runner

import (
	"context"
	"strings"
	"sync"
)

// Invocation is one recorded command
type Invocation struct {
	Name string
	Args []string
}

// String returns the command line
func (i Invocation) String() string {
	return strings.TrimSpace(i.Name + " " + strings.Join(i.Args, " "))
}

// Recorder is a Runner that records invocations instead of executing them.
// It backs --dry-run style previews and tests.
type Recorder struct {
	mu          sync.Mutex
	invocations []Invocation

	// Fail, if set, decides the result of each invocation
	Fail func(inv Invocation) error
}

// Run records the invocation
func (r *Recorder) Run(ctx context.Context, name string, args ...string) error {
	inv := Invocation{Name: name, Args: append([]string(nil), args...)}

	r.mu.Lock()
	r.invocations = append(r.invocations, inv)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Fail != nil {
		return r.Fail(inv)
	}
	return nil
}

// Invocations returns a copy of everything recorded so far
func (r *Recorder) Invocations() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Invocation(nil), r.invocations...)
}

// Commands returns the recorded command lines
func (r *Recorder) Commands() []string {
	invs := r.Invocations()
	lines := make([]string, len(invs))
	for i, inv := range invs {
		lines[i] = inv.String()
	}
	return lines
}
