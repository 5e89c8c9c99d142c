package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yzzting/rrclaw/internal/agent"
)

var fileReadParametersSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"path": map[string]any{"type": "string", "description": "path to read, absolute or workspace-relative"},
	},
	"required": []string{"path"},
}

// FileReadTool reads a file from disk, honoring the workspace/blocked-path
// policy before touching the filesystem.
type FileReadTool struct{}

func NewFileReadTool() *FileReadTool { return &FileReadTool{} }

func (t *FileReadTool) Name() string                    { return "file_read" }
func (t *FileReadTool) Description() string             { return "Read the contents of a file." }
func (t *FileReadTool) ParametersSchema() map[string]any { return fileReadParametersSchema }

func (t *FileReadTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	path, _ := args["path"].(string)
	if path == "" {
		return "path is required", true
	}
	eval := agent.NewPolicyEvaluator(policy)
	if ok, reason := eval.IsPathAllowed(resolveAgainst(policy.WorkspaceDir, path)); !ok {
		return reason, true
	}
	return "", false
}

func (t *FileReadTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	path, _ := args["path"].(string)
	data, err := os.ReadFile(resolveAgainst(policy.WorkspaceDir, path))
	if err != nil {
		return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
	}
	return agent.ToolExecResult{Success: true, Output: string(data)}, nil
}

var fileWriteParametersSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"path":    map[string]any{"type": "string", "description": "path to write, absolute or workspace-relative"},
		"content": map[string]any{"type": "string", "description": "content to write"},
		"append":  map[string]any{"type": "boolean", "description": "append instead of overwrite"},
	},
	"required": []string{"path", "content"},
}

// FileWriteTool writes or appends content to a file within the workspace.
type FileWriteTool struct{}

func NewFileWriteTool() *FileWriteTool { return &FileWriteTool{} }

func (t *FileWriteTool) Name() string                    { return "file_write" }
func (t *FileWriteTool) Description() string             { return "Write content to a file." }
func (t *FileWriteTool) ParametersSchema() map[string]any { return fileWriteParametersSchema }

func (t *FileWriteTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	if policy.Autonomy == agent.AutonomyReadOnly {
		return "file_write is a mutating operation and is not permitted under the current autonomy level", true
	}
	path, _ := args["path"].(string)
	if path == "" {
		return "path is required", true
	}
	eval := agent.NewPolicyEvaluator(policy)
	if ok, reason := eval.IsPathAllowed(resolveAgainst(policy.WorkspaceDir, path)); !ok {
		return reason, true
	}
	return "", false
}

func (t *FileWriteTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	path, _ := args["path"].(string)
	content, _ := args["content"].(string)
	appendMode, _ := args["append"].(bool)
	fullPath := resolveAgainst(policy.WorkspaceDir, path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(fullPath, flags, 0o644)
	if err != nil {
		return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
	}
	return agent.ToolExecResult{Success: true, Output: fmt.Sprintf("wrote %d bytes to %s", len(content), path)}, nil
}

func resolveAgainst(workspaceDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspaceDir, path)
}
