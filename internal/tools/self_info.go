package tools

import (
	"context"
	"fmt"
	"runtime"

	"github.com/yzzting/rrclaw/internal/agent"
)

var selfInfoParametersSchema = map[string]any{
	"type":       "object",
	"properties": map[string]any{},
}

// SelfInfoTool reports the running agent's own identity: version,
// provider/model, autonomy level, and workspace, so the model can answer
// "what are you / what can you do" questions without guessing.
type SelfInfoTool struct {
	version  string
	provider string
	model    string
}

func NewSelfInfoTool(version, provider, model string) *SelfInfoTool {
	return &SelfInfoTool{version: version, provider: provider, model: model}
}

func (t *SelfInfoTool) Name() string        { return "self_info" }
func (t *SelfInfoTool) Description() string { return "Report the agent's own version, provider, model, and security posture." }
func (t *SelfInfoTool) ParametersSchema() map[string]any { return selfInfoParametersSchema }

func (t *SelfInfoTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	return "", false
}

func (t *SelfInfoTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	out := fmt.Sprintf(
		"rrclaw %s (%s)\nprovider: %s\nmodel: %s\nautonomy: %s\nworkspace: %s\nblocked_paths: %v\n",
		t.version, runtime.Version(), t.provider, t.model, policy.Autonomy, policy.WorkspaceDir, policy.BlockedPaths,
	)
	return agent.ToolExecResult{Success: true, Output: out}, nil
}
