package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ToolExecutor mediates tool invocations: lookup, pre-validate, confirm,
// execute with timeout, classify result, inspect for injection, and emit
// status events. Grounded on the teacher's ToolGuard.Check pipeline
// (tool_guard.go) generalized from access-level tiers to the spec's single
// autonomy posture, and on AgentRun's tool-execution loop (agent.go).
type ToolExecutor struct {
	tools     map[string]Tool
	policy    *PolicyEvaluator
	inspector *InjectionInspector
	channel   Channel
	logger    *slog.Logger

	mu       sync.Mutex
	approved map[string]struct{} // session-scoped auto-approved base command / tool names
}

// NewToolExecutor constructs an executor. channel may be nil only for tests
// that never exercise a confirmation-requiring tool.
func NewToolExecutor(policy *PolicyEvaluator, inspector *InjectionInspector, channel Channel, logger *slog.Logger) *ToolExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolExecutor{
		tools:     make(map[string]Tool),
		policy:    policy,
		inspector: inspector,
		channel:   channel,
		logger:    logger.With("component", "tool_executor"),
		approved:  make(map[string]struct{}),
	}
}

// Register adds a tool to the catalogue. Tool names advertised to the model
// must be globally unique; callers are responsible for prefixing
// MCP-bridged tools with "mcp_{server}_" before registering.
func (e *ToolExecutor) Register(t Tool) {
	e.tools[t.Name()] = t
}

// Tools returns the tool schemas advertised to the model for this turn.
func (e *ToolExecutor) Tools() []ToolSpec {
	out := make([]ToolSpec, 0, len(e.tools))
	for _, t := range e.tools {
		out = append(out, ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.ParametersSchema(),
		})
	}
	return out
}

// approvalKey returns the session-approval cache key for a call: the base
// command name for shell, the tool name otherwise.
func approvalKey(call ToolCall) string {
	if call.Name == "shell" || call.Name == "exec" {
		if cmd, ok := call.Arguments["command"].(string); ok {
			return "shell:" + baseCommand(cmd)
		}
	}
	return "tool:" + call.Name
}

// Execute runs calls sequentially, preserving order, and returns one
// ToolResult ConversationMessage per call.
func (e *ToolExecutor) Execute(ctx context.Context, calls []ToolCall) []ConversationMessage {
	results := make([]ConversationMessage, 0, len(calls))
	for _, call := range calls {
		content := e.executeOne(ctx, call)
		results = append(results, NewToolResultMessage(call.ID, content))
	}
	return results
}

// executeOne runs the full pipeline for a single call and returns the
// content string to fold into its ToolResult.
func (e *ToolExecutor) executeOne(ctx context.Context, call ToolCall) string {
	// 1. Lookup.
	tool, ok := e.tools[call.Name]
	if !ok {
		return fmt.Sprintf("[error] unknown tool: %s", call.Name)
	}

	policy := e.policy.Policy()

	// 2. Pre-validate — runs before confirmation so users never confirm
	// something that will then be rejected.
	if reason, rejected := tool.PreValidate(call.Arguments, policy); rejected {
		return fmt.Sprintf("[error] %s", reason)
	}

	// 3. Confirmation.
	if e.policy.RequiresConfirmation() {
		key := approvalKey(call)
		e.mu.Lock()
		_, alreadyApproved := e.approved[key]
		e.mu.Unlock()

		if !alreadyApproved {
			answer, err := e.confirm(ctx, call)
			if err != nil || answer == ConfirmNo {
				return "[error] user declined"
			}
			if answer == ConfirmAutoApproveSession {
				e.mu.Lock()
				e.approved[key] = struct{}{}
				e.mu.Unlock()
			}
		}
	}

	// 4. Emit Running status.
	e.emitStatus(ctx, call.Name, ToolStatusRunning, summarizeCall(call))

	// 5. Execute with a per-tool timeout.
	timeout := toolTimeout(call.Name)
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := tool.Execute(execCtx, call.Arguments, policy)

	// 6. Classify result.
	var content string
	switch {
	case err != nil:
		content = fmt.Sprintf("[error] %s", err.Error())
	case result.Success:
		content = result.Output
	default:
		content = fmt.Sprintf("[failed] %s", result.Error)
		if result.Output != "" {
			content += "\n[partial output]\n" + result.Output
		}
	}

	// 7. Inject inspector.
	if policy.InjectionCheck && IsExternalDataTool(call.Name) {
		verdict := e.inspector.Inspect(content)
		if verdict.Severity == InjectionBlock {
			e.logger.Warn("injection blocked", "tool", call.Name, "reason", verdict.Reason)
			content = verdict.Sanitized
		} else if verdict.Severity == InjectionReview {
			e.logger.Warn("injection review", "tool", call.Name, "reason", verdict.Reason)
		} else if verdict.Severity == InjectionWarn {
			e.logger.Info("injection warn", "tool", call.Name, "reason", verdict.Reason)
		}
	}

	// 8. Emit Success/Failed status.
	if err != nil || !result.Success {
		e.emitStatus(ctx, call.Name, ToolStatusFailed, firstNLines(content, 3))
	} else {
		e.emitStatus(ctx, call.Name, ToolStatusSuccess, firstNLines(content, 1))
	}

	return content
}

func (e *ToolExecutor) confirm(ctx context.Context, call ToolCall) (ConfirmAnswer, error) {
	if e.channel == nil {
		return ConfirmNo, fmt.Errorf("no channel available to request confirmation")
	}
	return e.channel.Confirm(ctx, summarizeCall(call))
}

func (e *ToolExecutor) emitStatus(ctx context.Context, toolName string, kind ToolStatusKind, preview string) {
	if e.channel == nil {
		return
	}
	_ = e.channel.EmitStreamEvent(ctx, StreamEvent{
		Kind:       StreamToolStatus,
		ToolName:   toolName,
		StatusKind: kind,
		Preview:    preview,
	})
}

func summarizeCall(call ToolCall) string {
	var parts []string
	for k, v := range call.Arguments {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return fmt.Sprintf("%s(%s)", call.Name, strings.Join(parts, ", "))
}

func toolTimeout(name string) time.Duration {
	if name == "shell" || name == "exec" {
		return ShellToolTimeoutSeconds * time.Second
	}
	return 60 * time.Second
}
