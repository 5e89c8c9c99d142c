package provider

import (
	"testing"

	"github.com/yzzting/rrclaw/internal/agent"
)

func TestToAnthropicMessages_SkipsSystemAndPreservesToolCalls(t *testing.T) {
	history := []agent.ConversationMessage{
		agent.NewChatMessage("system", "you are RRClaw"),
		agent.NewChatMessage("user", "list files"),
		agent.NewAssistantWithToolCalls("", "", []agent.ToolCall{
			{ID: "call_1", Name: "shell", Arguments: `{"cmd":"ls"}`},
		}),
		agent.NewToolResultMessage("call_1", "file1.txt\nfile2.txt"),
	}

	messages := toAnthropicMessages(history)
	if len(messages) != 3 {
		t.Fatalf("expected 3 non-system messages, got %d", len(messages))
	}
}

func TestToAnthropicTools_BuildsToolParams(t *testing.T) {
	tools := []agent.ToolSpec{
		{Name: "file_read", Description: "read a file", Parameters: map[string]any{"type": "object", "properties": map[string]any{"path": map[string]any{"type": "string"}}}},
	}
	out, err := toAnthropicTools(tools)
	if err != nil {
		t.Fatalf("toAnthropicTools: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 tool param, got %d", len(out))
	}
}

func TestToAnthropicTools_RejectsInvalidSchema(t *testing.T) {
	tools := []agent.ToolSpec{
		{Name: "broken", Parameters: map[string]any{"bad": make(chan int)}},
	}
	if _, err := toAnthropicTools(tools); err == nil {
		t.Fatalf("expected error for invalid schema")
	}
}
