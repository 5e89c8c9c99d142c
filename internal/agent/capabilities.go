package agent

import "context"

// Provider is the LLM transport capability. Concrete implementations
// (internal/provider/openai, internal/provider/anthropic) must preserve any
// ReasoningContent returned in assistant messages across turns — the Agent
// Loop passes it back unchanged for multi-turn reasoning-model support.
type Provider interface {
	// ChatWithTools performs a single non-streaming completion.
	ChatWithTools(ctx context.Context, systemPrompt string, history []ConversationMessage, tools []ToolSpec, model string, temperature float64) (ChatResponse, error)

	// ChatStream performs a single completion, emitting StreamEvents to
	// sink as they arrive, and returns the final ChatResponse.
	ChatStream(ctx context.Context, systemPrompt string, history []ConversationMessage, tools []ToolSpec, model string, temperature float64, sink chan<- StreamEvent) (ChatResponse, error)
}

// MemoryRecallResult is one hit returned by Memory.Recall.
type MemoryRecallResult struct {
	Key     string
	Content string
}

// Memory is the persistent recall capability.
type Memory interface {
	Store(ctx context.Context, key, content, category string) error
	Recall(ctx context.Context, query string, limit int) ([]MemoryRecallResult, error)
	Forget(ctx context.Context, key string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// ConfirmAnswer is the user's reply to a pending tool confirmation.
type ConfirmAnswer int

const (
	ConfirmNo ConfirmAnswer = iota
	ConfirmYes
	ConfirmAutoApproveSession
)

// Channel is the I/O capability: sends assistant text and stream events to
// the user, and can prompt for a tool-execution confirmation.
type Channel interface {
	Send(ctx context.Context, text string, recipient string) error
	EmitStreamEvent(ctx context.Context, ev StreamEvent) error
	Confirm(ctx context.Context, summary string) (ConfirmAnswer, error)
}

// Tool is a single capability the Tool Executor can invoke.
type Tool interface {
	Name() string
	Description() string
	ParametersSchema() map[string]any

	// PreValidate inspects args against policy without executing.
	// rejected=true means the policy forbids the call; reason explains why.
	PreValidate(args map[string]any, policy SecurityPolicy) (reason string, rejected bool)

	// Execute runs the tool. success=false means the tool ran but failed;
	// err is reserved for unexpected execution exceptions.
	Execute(ctx context.Context, args map[string]any, policy SecurityPolicy) (result ToolExecResult, err error)
}

// ToolExecResult is the raw outcome a Tool reports before the executor
// classifies and folds it into ToolResult.Content.
type ToolExecResult struct {
	Success bool
	Output  string
	Error   string
}
