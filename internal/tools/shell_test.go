package tools

import (
	"testing"

	"github.com/yzzting/rrclaw/internal/agent"
)

// TestShellTool_PreValidate_SupervisedDoesNotConsultWhitelist exercises the
// real ShellTool.PreValidate (not a fake) under AutonomySupervised with a
// command absent from allowed_commands, per §4.1: in Supervised, user
// confirmation overrides the whitelist, so pre-validation must let the call
// through to the executor's confirmation gate rather than rejecting it.
func TestShellTool_PreValidate_SupervisedDoesNotConsultWhitelist(t *testing.T) {
	policy := agent.SecurityPolicy{
		Autonomy:        agent.AutonomySupervised,
		AllowedCommands: map[string]struct{}{"ls": {}},
	}
	tool := NewShellTool()

	reason, rejected := tool.PreValidate(map[string]any{"command": "cargo test"}, policy)
	if rejected {
		t.Fatalf("expected Supervised pre-validate to pass a non-whitelisted command through to confirmation, got rejected with reason %q", reason)
	}
}

func TestShellTool_PreValidate_FullConsultsWhitelist(t *testing.T) {
	policy := agent.SecurityPolicy{
		Autonomy:        agent.AutonomyFull,
		AllowedCommands: map[string]struct{}{"ls": {}},
	}
	tool := NewShellTool()

	_, rejected := tool.PreValidate(map[string]any{"command": "cargo test"}, policy)
	if !rejected {
		t.Fatalf("expected Full mode to reject a non-whitelisted command")
	}
}

func TestShellTool_PreValidate_ReadOnlyAlwaysRejects(t *testing.T) {
	policy := agent.SecurityPolicy{Autonomy: agent.AutonomyReadOnly}
	tool := NewShellTool()

	_, rejected := tool.PreValidate(map[string]any{"command": "ls"}, policy)
	if !rejected {
		t.Fatalf("expected ReadOnly mode to reject every shell command")
	}
}
