package agent

// History is the conversation's retained ConversationMessage log. It
// enforces the invariants from the data model: length <= MaxHistoryEntries
// after any append, truncation from the front, and never splitting an
// AssistantWithToolCalls from its paired ToolResult entries.
type History struct {
	entries []ConversationMessage
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{entries: make([]ConversationMessage, 0, 16)}
}

// Append adds entries, then truncates from the front to respect the cap.
func (h *History) Append(msgs ...ConversationMessage) {
	h.entries = append(h.entries, msgs...)
	h.truncate()
}

// Entries returns the live slice of retained messages.
func (h *History) Entries() []ConversationMessage {
	return h.entries
}

// Len reports the current number of retained entries.
func (h *History) Len() int {
	return len(h.entries)
}

// ClearPriorReasoning clears Reasoning on every AssistantWithToolCalls entry
// except the most recent one, matching the invariant that reasoning_content
// is preserved only on the most recent entry across intra-turn iterations.
func (h *History) ClearPriorReasoning() {
	lastIdx := -1
	for i, e := range h.entries {
		if e.Kind == MessageAssistantWithToolCalls {
			lastIdx = i
		}
	}
	for i := range h.entries {
		if i == lastIdx {
			continue
		}
		if h.entries[i].Kind == MessageAssistantWithToolCalls {
			h.entries[i].Reasoning = ""
		}
	}
}

// truncate removes entries from the front until length <= MaxHistoryEntries,
// always cutting at a boundary that keeps an AssistantWithToolCalls entry
// together with every ToolResult that pairs with it.
func (h *History) truncate() {
	if len(h.entries) <= MaxHistoryEntries {
		return
	}
	excess := len(h.entries) - MaxHistoryEntries
	cut := excess
	// If truncating at `excess` would start mid-pairing (landing on a
	// ToolResult whose AssistantWithToolCalls predecessor would be dropped
	// without it, or landing just before the ToolResults of a surviving
	// AssistantWithToolCalls), push the cut forward to the next Chat or
	// AssistantWithToolCalls boundary so pairings stay intact.
	for cut < len(h.entries) && h.entries[cut].Kind == MessageToolResult {
		cut++
	}
	h.entries = h.entries[cut:]
}
