package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yzzting/rrclaw/internal/agent"
)

func TestLoader_MergesBuiltinGlobalProject(t *testing.T) {
	globalDir := t.TempDir()
	projectDir := t.TempDir()

	writeSkill(t, globalDir, "deploy", "global deploy skill", "Global instructions")
	writeSkill(t, projectDir, "deploy", "project deploy skill", "Project instructions")
	writeSkill(t, globalDir, "backup", "backup skill", "Backup instructions")

	loader := NewLoader(globalDir, projectDir, []BuiltinSkill{
		{Name: "deploy", Description: "builtin deploy skill", Instructions: "Builtin instructions"},
	})

	registry := agent.NewSkillRegistry()
	if err := loader.LoadAll(registry); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	deploy, ok := registry.Get("deploy")
	if !ok {
		t.Fatalf("expected deploy skill merged")
	}
	if deploy.Description != "project deploy skill" {
		t.Fatalf("expected project tier to win, got %q (source=%s)", deploy.Description, deploy.Source)
	}

	content, ok := registry.Content("deploy")
	if !ok || content.Instructions != "Project instructions" {
		t.Fatalf("expected project L2 content to win, got %+v", content)
	}

	if _, ok := registry.Get("backup"); !ok {
		t.Fatalf("expected backup skill loaded from global tier")
	}
}

func writeSkill(t *testing.T, dir, name, description, body string) {
	t.Helper()
	content := "---\nname: " + name + "\ndescription: " + description + "\n---\n\n" + body
	if err := os.WriteFile(filepath.Join(dir, name+".md"), []byte(content), 0o644); err != nil {
		t.Fatalf("write skill file: %v", err)
	}
}
