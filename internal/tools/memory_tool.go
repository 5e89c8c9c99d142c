package tools

import (
	"context"
	"fmt"

	"github.com/yzzting/rrclaw/internal/agent"
)

var memoryRecallParametersSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query": map[string]any{"type": "string", "description": "what to recall"},
		"limit": map[string]any{"type": "integer", "description": "max results, defaults to 5"},
	},
	"required": []string{"query"},
}

// MemoryRecallTool exposes agent.Memory.Recall to the model directly (in
// addition to the automatic top-k recall folded into every Phase 2
// prompt), for on-demand deeper lookups.
type MemoryRecallTool struct {
	memory agent.Memory
}

func NewMemoryRecallTool(memory agent.Memory) *MemoryRecallTool {
	return &MemoryRecallTool{memory: memory}
}

func (t *MemoryRecallTool) Name() string        { return "memory_recall" }
func (t *MemoryRecallTool) Description() string { return "Recall previously stored memories matching a query." }
func (t *MemoryRecallTool) ParametersSchema() map[string]any { return memoryRecallParametersSchema }

func (t *MemoryRecallTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	if query, _ := args["query"].(string); query == "" {
		return "query is required", true
	}
	return "", false
}

func (t *MemoryRecallTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	query, _ := args["query"].(string)
	limit := 5
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	hits, err := t.memory.Recall(ctx, query, limit)
	if err != nil {
		return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
	}
	if len(hits) == 0 {
		return agent.ToolExecResult{Success: true, Output: "no matching memories"}, nil
	}

	output := ""
	for _, h := range hits {
		output += fmt.Sprintf("[%s] %s\n", h.Key, h.Content)
	}
	return agent.ToolExecResult{Success: true, Output: output}, nil
}

var memorySaveParametersSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"key":      map[string]any{"type": "string", "description": "identifier to store the memory under"},
		"content":  map[string]any{"type": "string", "description": "what to remember"},
		"category": map[string]any{"type": "string", "description": "optional grouping label"},
	},
	"required": []string{"key", "content"},
}

// MemorySaveTool exposes agent.Memory.Store to the model so it can save a
// fact for later recall, distinct from the loop's automatic turn-summary
// storage.
type MemorySaveTool struct {
	memory agent.Memory
}

func NewMemorySaveTool(memory agent.Memory) *MemorySaveTool {
	return &MemorySaveTool{memory: memory}
}

func (t *MemorySaveTool) Name() string        { return "memory_save" }
func (t *MemorySaveTool) Description() string { return "Save a fact to long-term memory for later recall." }
func (t *MemorySaveTool) ParametersSchema() map[string]any { return memorySaveParametersSchema }

func (t *MemorySaveTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	key, _ := args["key"].(string)
	content, _ := args["content"].(string)
	if key == "" || content == "" {
		return "key and content are required", true
	}
	return "", false
}

func (t *MemorySaveTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	key, _ := args["key"].(string)
	content, _ := args["content"].(string)
	category, _ := args["category"].(string)

	if err := t.memory.Store(ctx, key, content, category); err != nil {
		return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
	}
	return agent.ToolExecResult{Success: true, Output: "saved"}, nil
}
