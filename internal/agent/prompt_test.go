package agent

import (
	"strings"
	"testing"
)

func TestAssemblePhase1_NoToolsOrMemory(t *testing.T) {
	a := NewPromptAssembler("")
	skills := []SkillMeta{{Name: "deploy", Description: "deploy things"}}
	prompt := a.AssemblePhase1(AutonomySupervised, skills)

	if !strings.Contains(prompt, "security-first AI assistant") {
		t.Fatalf("expected identity line, got %q", prompt)
	}
	if !strings.Contains(prompt, "deploy: deploy things") {
		t.Fatalf("expected skill catalog entry, got %q", prompt)
	}
	if strings.Contains(prompt, "## Tools") {
		t.Fatalf("phase 1 prompt must not include tool schemas")
	}
	if strings.Contains(prompt, "Memory Recall") {
		t.Fatalf("phase 1 prompt must not include memory")
	}
}

func TestAssemblePhase2_SegmentOrder(t *testing.T) {
	a := NewPromptAssembler("")
	prompt := a.AssemblePhase2(Phase2Input{
		Policy: SecurityPolicy{Autonomy: AutonomySupervised},
		Tools:  []ToolSpec{{Name: "shell", Description: "run commands"}},
		Skills: []SkillMeta{{Name: "deploy", Description: "deploy things"}},
		MemoryRecall: []MemoryRecallResult{{Key: "k1", Content: "remembered fact"}},
		RoutedSkillContent: "deploy instructions body",
	})

	order := []string{
		"security-first AI assistant",
		"## Tools",
		"## Skills",
		"## Security",
		"## Memory Recall",
		"## Active Skill Instructions",
		"## Environment",
		"## Decision Rules",
		"## Tool Result Format",
	}

	lastIdx := -1
	for _, marker := range order {
		idx := strings.Index(prompt, marker)
		if idx == -1 {
			t.Fatalf("expected prompt to contain %q", marker)
		}
		if idx <= lastIdx {
			t.Fatalf("segment %q out of order", marker)
		}
		lastIdx = idx
	}
}

func TestAssemblePhase2_SecurityRuleVariesByAutonomy(t *testing.T) {
	a := NewPromptAssembler("")

	roPrompt := a.AssemblePhase2(Phase2Input{Policy: SecurityPolicy{Autonomy: AutonomyReadOnly}})
	if !strings.Contains(roPrompt, "do not invoke tools") {
		t.Fatalf("expected read-only security rule, got %q", roPrompt)
	}

	fullPrompt := a.AssemblePhase2(Phase2Input{Policy: SecurityPolicy{Autonomy: AutonomyFull}})
	if !strings.Contains(fullPrompt, "stay within the whitelist") {
		t.Fatalf("expected full-autonomy security rule, got %q", fullPrompt)
	}
}
