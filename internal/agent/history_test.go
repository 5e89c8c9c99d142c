package agent

import "testing"

func TestHistory_TruncatesToCap(t *testing.T) {
	h := NewHistory()
	for i := 0; i < MaxHistoryEntries+20; i++ {
		h.Append(NewChatMessage("user", "msg"))
	}
	if h.Len() != MaxHistoryEntries {
		t.Fatalf("got len %d, want %d", h.Len(), MaxHistoryEntries)
	}
}

func TestHistory_ClearPriorReasoning(t *testing.T) {
	h := NewHistory()
	h.Append(NewAssistantWithToolCalls("first", "reasoning-1", []ToolCall{{ID: "a"}}))
	h.Append(NewToolResultMessage("a", "result"))
	h.Append(NewAssistantWithToolCalls("second", "reasoning-2", []ToolCall{{ID: "b"}}))

	h.ClearPriorReasoning()

	entries := h.Entries()
	if entries[0].Reasoning != "" {
		t.Fatalf("expected earlier AssistantWithToolCalls reasoning cleared, got %q", entries[0].Reasoning)
	}
	if entries[2].Reasoning != "reasoning-2" {
		t.Fatalf("expected most recent AssistantWithToolCalls reasoning preserved, got %q", entries[2].Reasoning)
	}
}

func TestHistory_NeverSplitsPairing(t *testing.T) {
	h := NewHistory()
	// Fill history to the cap with chat entries, then push it past the cap
	// with one assistant/tool-result pair.
	for i := 0; i < MaxHistoryEntries; i++ {
		h.Append(NewChatMessage("user", "u"))
	}
	h.Append(NewAssistantWithToolCalls("", "", []ToolCall{{ID: "z"}}))
	h.Append(NewToolResultMessage("z", "r"))

	entries := h.Entries()
	for i, e := range entries {
		if e.Kind == MessageToolResult {
			if i == 0 {
				t.Fatalf("ToolResult at index 0 has no preceding entry in retained history")
			}
		}
	}
}
