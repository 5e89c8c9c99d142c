package agent

import "context"

// fakeProvider is a scripted Provider used by loop tests.
type fakeProvider struct {
	responses []ChatResponse
	errs      []error
	calls     int
	// capturedHistory records the history slice passed on each call.
	capturedHistory [][]ConversationMessage
}

func (f *fakeProvider) next() (ChatResponse, error) {
	i := f.calls
	f.calls++
	var resp ChatResponse
	var err error
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return resp, err
}

func (f *fakeProvider) ChatWithTools(ctx context.Context, systemPrompt string, history []ConversationMessage, tools []ToolSpec, model string, temperature float64) (ChatResponse, error) {
	f.capturedHistory = append(f.capturedHistory, history)
	return f.next()
}

func (f *fakeProvider) ChatStream(ctx context.Context, systemPrompt string, history []ConversationMessage, tools []ToolSpec, model string, temperature float64, sink chan<- StreamEvent) (ChatResponse, error) {
	f.capturedHistory = append(f.capturedHistory, history)
	return f.next()
}

// fakeMemory is an in-memory Memory capability.
type fakeMemory struct {
	stored map[string]string
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{stored: make(map[string]string)}
}

func (m *fakeMemory) Store(ctx context.Context, key, content, category string) error {
	m.stored[key] = content
	return nil
}

func (m *fakeMemory) Recall(ctx context.Context, query string, limit int) ([]MemoryRecallResult, error) {
	return nil, nil
}

func (m *fakeMemory) Forget(ctx context.Context, key string) (bool, error) {
	_, ok := m.stored[key]
	delete(m.stored, key)
	return ok, nil
}

func (m *fakeMemory) Count(ctx context.Context) (int, error) {
	return len(m.stored), nil
}

// fakeChannel is a scripted Channel used by executor tests.
type fakeChannel struct {
	confirmAnswer ConfirmAnswer
	confirmErr    error
	confirms      int
	sent          []string
	events        []StreamEvent
}

func (c *fakeChannel) Send(ctx context.Context, text string, recipient string) error {
	c.sent = append(c.sent, text)
	return nil
}

func (c *fakeChannel) EmitStreamEvent(ctx context.Context, ev StreamEvent) error {
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeChannel) Confirm(ctx context.Context, summary string) (ConfirmAnswer, error) {
	c.confirms++
	return c.confirmAnswer, c.confirmErr
}

// fakeTool is a scripted Tool.
type fakeTool struct {
	name       string
	schema     map[string]any
	rejectWith string
	result     ToolExecResult
	err        error
	calls      int
}

func (t *fakeTool) Name() string                      { return t.name }
func (t *fakeTool) Description() string               { return "fake tool " + t.name }
func (t *fakeTool) ParametersSchema() map[string]any   { return t.schema }

func (t *fakeTool) PreValidate(args map[string]any, policy SecurityPolicy) (string, bool) {
	if t.rejectWith != "" {
		return t.rejectWith, true
	}
	return "", false
}

func (t *fakeTool) Execute(ctx context.Context, args map[string]any, policy SecurityPolicy) (ToolExecResult, error) {
	t.calls++
	return t.result, t.err
}
