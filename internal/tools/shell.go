// Package tools implements the concrete agent.Tool capabilities named in
// SPEC_FULL.md §4.7 (shell, file_read, file_write, git, http_request,
// config, memory_recall, memory_save), grounded on the teacher's
// product_tools.go (exec.Command/CombinedOutput pattern, runGit helper)
// and tool_guard.go (PreValidate delegating to policy before execution).
package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/yzzting/rrclaw/internal/agent"
)

var shellParametersSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"command": map[string]any{
			"type":        "string",
			"description": "the shell command line to execute",
		},
		"cwd": map[string]any{
			"type":        "string",
			"description": "working directory, defaults to the workspace root",
		},
	},
	"required": []string{"command"},
}

// ShellTool runs an arbitrary command line via the OS shell, grounded on
// the teacher's runGit/exec.Command pattern generalized to any command.
type ShellTool struct{}

func NewShellTool() *ShellTool { return &ShellTool{} }

func (t *ShellTool) Name() string        { return "shell" }
func (t *ShellTool) Description() string { return "Run a shell command and return its output." }
func (t *ShellTool) ParametersSchema() map[string]any { return shellParametersSchema }

func (t *ShellTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	command, _ := args["command"].(string)
	if strings.TrimSpace(command) == "" {
		return "command is required", true
	}
	eval := agent.NewPolicyEvaluator(policy)
	switch policy.Autonomy {
	case agent.AutonomyReadOnly:
		return fmt.Sprintf("command %q is not permitted under the current autonomy level", command), true
	case agent.AutonomyFull:
		if !eval.IsCommandAllowed(command) {
			return fmt.Sprintf("command %q is not permitted under the current autonomy level", command), true
		}
	}
	// Supervised: the whitelist is not consulted here — confirmation is the
	// actual gate, per §4.1. Let the call through to the executor's
	// confirmation step regardless of allow-list membership.
	return "", false
}

func (t *ShellTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	command, _ := args["command"].(string)
	cwd, _ := args["cwd"].(string)
	if cwd == "" {
		cwd = policy.WorkspaceDir
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = cwd

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := strings.TrimSpace(stdout.String())
	errOutput := strings.TrimSpace(stderr.String())

	if err != nil {
		message := err.Error()
		if errOutput != "" {
			message = errOutput
		}
		return agent.ToolExecResult{Success: false, Output: output, Error: message}, nil
	}
	return agent.ToolExecResult{Success: true, Output: output}, nil
}
