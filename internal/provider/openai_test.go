package provider

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yzzting/rrclaw/internal/agent"
)

func TestToOpenAIMessages_RoundTripsReasoningContent(t *testing.T) {
	history := []agent.ConversationMessage{
		agent.NewChatMessage(openai.ChatMessageRoleUser, "what's the weather?"),
		agent.NewAssistantWithToolCalls("", "thinking about it", []agent.ToolCall{
			{ID: "call_1", Name: "get_weather", Arguments: `{"city":"nyc"}`},
		}),
		agent.NewToolResultMessage("call_1", "72F and sunny"),
	}

	out := toOpenAIMessages("", history)
	if len(out) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(out))
	}
	if out[1].ReasoningContent != "thinking about it" {
		t.Fatalf("expected reasoning content preserved, got %q", out[1].ReasoningContent)
	}
	if len(out[1].ToolCalls) != 1 || out[1].ToolCalls[0].Function.Name != "get_weather" {
		t.Fatalf("expected tool call preserved, got %+v", out[1].ToolCalls)
	}
	if out[2].Role != openai.ChatMessageRoleTool || out[2].ToolCallID != "call_1" {
		t.Fatalf("expected tool result message, got %+v", out[2])
	}
}

func TestToOpenAITools_BuildsFunctionDefinitions(t *testing.T) {
	tools := []agent.ToolSpec{
		{Name: "shell", Description: "run a command", Parameters: map[string]any{"type": "object"}},
	}
	out := toOpenAITools(tools)
	if len(out) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(out))
	}
	if out[0].Function.Name != "shell" {
		t.Fatalf("expected shell tool, got %+v", out[0])
	}
}

func TestMergeStreamedToolCall_AccumulatesArguments(t *testing.T) {
	idx0 := 0
	var calls []agent.ToolCall
	calls = mergeStreamedToolCall(calls, openai.ToolCall{
		Index:    &idx0,
		ID:       "call_1",
		Function: openai.FunctionCall{Name: "shell", Arguments: `{"cmd":`},
	})
	calls = mergeStreamedToolCall(calls, openai.ToolCall{
		Index:    &idx0,
		Function: openai.FunctionCall{Arguments: `"ls"}`},
	})

	if len(calls) != 1 {
		t.Fatalf("expected 1 accumulated call, got %d", len(calls))
	}
	if calls[0].Arguments != `{"cmd":"ls"}` {
		t.Fatalf("expected merged arguments, got %q", calls[0].Arguments)
	}
}

func TestFromOpenAIChoice_PreservesReasoningAndToolCalls(t *testing.T) {
	choice := openai.ChatCompletionChoice{
		Message: openai.ChatCompletionMessage{
			Content:          "done",
			ReasoningContent: "because X",
			ToolCalls: []openai.ToolCall{
				{ID: "call_9", Function: openai.FunctionCall{Name: "git", Arguments: `{}`}},
			},
		},
	}
	resp := fromOpenAIChoice(choice)
	if resp.Reasoning != "because X" {
		t.Fatalf("expected reasoning preserved, got %q", resp.Reasoning)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "git" {
		t.Fatalf("expected tool call preserved, got %+v", resp.ToolCalls)
	}
}
