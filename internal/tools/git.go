package tools

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"os/exec"

	"github.com/yzzting/rrclaw/internal/agent"
)

var gitParametersSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"args": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "git subcommand and arguments, e.g. [\"status\", \"--short\"]",
		},
	},
	"required": []string{"args"},
}

// GitTool runs a git subcommand in the workspace, grounded on the
// teacher's runGit helper (exec.Command("git", args...).CombinedOutput()).
type GitTool struct{}

func NewGitTool() *GitTool { return &GitTool{} }

func (t *GitTool) Name() string                    { return "git" }
func (t *GitTool) Description() string             { return "Run a git subcommand in the workspace." }
func (t *GitTool) ParametersSchema() map[string]any { return gitParametersSchema }

// readOnlyGitSubcommands lists subcommands that only inspect repository
// state. Anything else (commit, push, add, checkout, reset, merge, ...) is
// treated as mutating and denied outright under AutonomyReadOnly.
var readOnlyGitSubcommands = map[string]struct{}{
	"status": {}, "log": {}, "diff": {}, "show": {}, "branch": {},
	"remote": {}, "blame": {}, "ls-files": {}, "rev-parse": {},
	"describe": {}, "shortlog": {}, "reflog": {},
}

func (t *GitTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	rawArgs, _ := args["args"].([]any)
	subcommand := ""
	if len(rawArgs) > 0 {
		subcommand, _ = rawArgs[0].(string)
	}
	_, readOnly := readOnlyGitSubcommands[subcommand]

	if policy.Autonomy == agent.AutonomyReadOnly && !readOnly {
		return fmt.Sprintf("git %s is a mutating operation and is not permitted under the current autonomy level", subcommand), true
	}

	if policy.Autonomy == agent.AutonomyFull {
		eval := agent.NewPolicyEvaluator(policy)
		if !eval.IsCommandAllowed("git") {
			return "git is not permitted under the current autonomy level", true
		}
	}
	// Supervised: the whitelist is not consulted here — confirmation is the
	// actual gate, per §4.1. Let the call through to the executor's
	// confirmation step regardless of allow-list membership.
	return "", false
}

func (t *GitTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	rawArgs, _ := args["args"].([]any)
	gitArgs := make([]string, 0, len(rawArgs))
	for _, a := range rawArgs {
		s, ok := a.(string)
		if !ok {
			return agent.ToolExecResult{Success: false, Error: "args must all be strings"}, nil
		}
		gitArgs = append(gitArgs, s)
	}
	if len(gitArgs) == 0 {
		return agent.ToolExecResult{Success: false, Error: "args is required"}, nil
	}

	cmd := exec.CommandContext(ctx, "git", gitArgs...)
	cmd.Dir = policy.WorkspaceDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return agent.ToolExecResult{
			Success: false,
			Output:  strings.TrimSpace(out.String()),
			Error:   fmt.Sprintf("git %s: %v", strings.Join(gitArgs, " "), err),
		}, nil
	}
	return agent.ToolExecResult{Success: true, Output: strings.TrimSpace(out.String())}, nil
}
