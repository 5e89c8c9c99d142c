package tools

import (
	"context"

	"github.com/yzzting/rrclaw/internal/agent"
)

var skillParametersSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{"type": "string", "description": "skill name to load, from the L1 catalog"},
	},
	"required": []string{"name"},
}

// SkillTool loads the full instructions body of an L1-cataloged skill on
// demand, the Phase 2 half of the two-phase skill disclosure described in
// SPEC_FULL.md §4.8 (L1 catalog always in context, L2 body loaded only
// when the model names a skill it wants).
type SkillTool struct {
	registry *agent.SkillRegistry
}

func NewSkillTool(registry *agent.SkillRegistry) *SkillTool {
	return &SkillTool{registry: registry}
}

func (t *SkillTool) Name() string        { return "skill" }
func (t *SkillTool) Description() string { return "Load the full instructions of a named skill." }
func (t *SkillTool) ParametersSchema() map[string]any { return skillParametersSchema }

func (t *SkillTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	if name, _ := args["name"].(string); name == "" {
		return "name is required", true
	}
	return "", false
}

func (t *SkillTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	name, _ := args["name"].(string)
	content, ok := t.registry.Content(name)
	if !ok {
		return agent.ToolExecResult{Success: false, Error: "no such skill: " + name}, nil
	}
	return agent.ToolExecResult{Success: true, Output: content.Instructions}, nil
}
