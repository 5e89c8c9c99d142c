package tools

import (
	"bytes"
	"context"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/yzzting/rrclaw/internal/agent"
	"github.com/yzzting/rrclaw/internal/config"
)

var configToolParametersSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"action": map[string]any{"type": "string", "description": "one of: get, set"},
		"field":  map[string]any{"type": "string", "description": "dotted field path, e.g. default.model"},
		"value":  map[string]any{"type": "string", "description": "new value, required for action=set"},
	},
	"required": []string{"action"},
}

// ConfigTool lets the model inspect and edit ~/.rrclaw/config.toml, an
// internal tool exempt from injection inspection per spec.md §4.2 since
// its output is agent-controlled rather than externally sourced.
type ConfigTool struct {
	path string
}

func NewConfigTool(path string) *ConfigTool {
	return &ConfigTool{path: path}
}

func (t *ConfigTool) Name() string        { return "config" }
func (t *ConfigTool) Description() string { return "Inspect or edit the RRClaw configuration file." }
func (t *ConfigTool) ParametersSchema() map[string]any { return configToolParametersSchema }

func (t *ConfigTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	action, _ := args["action"].(string)
	if action != "get" && action != "set" {
		return "action must be 'get' or 'set'", true
	}
	return "", false
}

func (t *ConfigTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	action, _ := args["action"].(string)
	field, _ := args["field"].(string)

	cfg, err := config.Load(t.path)
	if err != nil {
		return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
	}

	switch action {
	case "get":
		enc, encErr := tomlEncode(cfg)
		if encErr != nil {
			return agent.ToolExecResult{Success: false, Error: encErr.Error()}, nil
		}
		return agent.ToolExecResult{Success: true, Output: string(enc)}, nil
	case "set":
		value, _ := args["value"].(string)
		if err := applyField(cfg, field, value); err != nil {
			return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
		}
		if err := config.Save(cfg, t.path); err != nil {
			return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
		}
		return agent.ToolExecResult{Success: true, Output: fmt.Sprintf("updated %s", field)}, nil
	default:
		return agent.ToolExecResult{Success: false, Error: "unknown action"}, nil
	}
}

func tomlEncode(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// applyField updates a small set of well-known dotted fields. Arbitrary
// reflection-based field paths are deliberately not supported: the
// config schema is small and fixed, and an explicit switch keeps
// accidental/malicious field paths from reaching unintended struct
// fields.
func applyField(cfg *config.Config, field, value string) error {
	switch field {
	case "default.model":
		cfg.Default.Model = value
	case "default.provider":
		cfg.Default.Provider = value
	case "default.language":
		cfg.Default.Language = value
	case "security.autonomy":
		cfg.Security.Autonomy = value
	default:
		return fmt.Errorf("unsupported field %q", field)
	}
	return nil
}
