package assistant

import (
	"context"
	"sync"
)

// MockInvoker is a test double for Invoker. Responses are returned in order;
// when exhausted, DefaultResponse is returned.
type MockInvoker struct {
	mu              sync.Mutex
	Responses       []string
	Errs            []error
	DefaultResponse string
	History         []InvokeCall
	next            int
}

// InvokeCall records a call to Invoke.
type InvokeCall struct {
	Prompt  string
	WorkDir string
}

func (m *MockInvoker) Invoke(_ context.Context, prompt, workDir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.History = append(m.History, InvokeCall{Prompt: prompt, WorkDir: workDir})

	i := m.next
	m.next++

	if i < len(m.Errs) && m.Errs[i] != nil {
		return "", m.Errs[i]
	}
	if i < len(m.Responses) {
		return m.Responses[i], nil
	}
	return m.DefaultResponse, nil
}

// Calls returns a copy of the recorded invoke history.
func (m *MockInvoker) Calls() []InvokeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]InvokeCall, len(m.History))
	copy(out, m.History)
	return out
}
