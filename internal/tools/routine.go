package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/yzzting/rrclaw/internal/agent"
	"github.com/yzzting/rrclaw/internal/scheduler"
)

var routineParametersSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"action": map[string]any{"type": "string", "description": "one of: list"},
	},
	"required": []string{"action"},
}

// RoutineTool reports the cron-scheduled jobs currently running in the
// scheduler, an internal tool per spec.md §4.2's exemption list. Job
// definitions themselves are edited in the config file (the config tool
// cannot set them), not here: the scheduler is built once at startup from [[routines.jobs]]
// and this tool only reports on it.
type RoutineTool struct {
	scheduler *scheduler.Scheduler
}

func NewRoutineTool(s *scheduler.Scheduler) *RoutineTool {
	return &RoutineTool{scheduler: s}
}

func (t *RoutineTool) Name() string        { return "routine" }
func (t *RoutineTool) Description() string { return "List the currently scheduled routine jobs." }
func (t *RoutineTool) ParametersSchema() map[string]any { return routineParametersSchema }

func (t *RoutineTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	if action, _ := args["action"].(string); action != "list" {
		return "action must be 'list'", true
	}
	return "", false
}

func (t *RoutineTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	if t.scheduler == nil {
		return agent.ToolExecResult{Success: true, Output: "no scheduler configured"}, nil
	}

	entries := t.scheduler.Jobs()
	if len(entries) == 0 {
		return agent.ToolExecResult{Success: true, Output: "no routines scheduled"}, nil
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "next run: %s\n", e.Next)
	}
	return agent.ToolExecResult{Success: true, Output: b.String()}, nil
}
