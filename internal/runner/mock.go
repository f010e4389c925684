package runner

import (
	"context"
	"sync"
)

// Mock is a Runner for testing. Handle decides each invocation's result;
// every call is recorded in order.
type Mock struct {
	// Handle decides the result of each invocation.
	// Nil means success with empty output.
	Handle func(ctx context.Context, name string, args []string) (stdout, stderr []byte, err error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one invocation.
type MockCall struct {
	Name string
	Args []string
}

func (m *Mock) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Name: name, Args: append([]string(nil), args...)})
	m.mu.Unlock()

	if m.Handle == nil {
		return nil, nil, nil
	}
	return m.Handle(ctx, name, args)
}

// Calls returns the recorded invocations in order.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns how many times the named executable was invoked.
func (m *Mock) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Name == name {
			count++
		}
	}
	return count
}
