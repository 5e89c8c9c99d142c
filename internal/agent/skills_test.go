package agent

import "testing"

func TestValidSkillName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"git-helper", true},
		{"a", true},
		{"Invalid-Upper", false},
		{"-leading-dash", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidSkillName(tt.name); got != tt.want {
			t.Errorf("ValidSkillName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSkillRegistry_MergePriority(t *testing.T) {
	r := NewSkillRegistry()
	r.Merge(SkillMeta{Name: "deploy", Description: "builtin deploy", Source: SkillBuiltin})
	r.Merge(SkillMeta{Name: "deploy", Description: "project deploy", Source: SkillProject})
	r.Merge(SkillMeta{Name: "deploy", Description: "global deploy", Source: SkillGlobal})

	got, ok := r.Get("deploy")
	if !ok {
		t.Fatalf("expected deploy skill present")
	}
	if got.Description != "project deploy" {
		t.Fatalf("expected highest-priority (project) source to win, got %q from %s", got.Description, got.Source)
	}
}

func TestSkillRegistry_L1CatalogSortedAndUnique(t *testing.T) {
	r := NewSkillRegistry()
	r.Merge(SkillMeta{Name: "zeta", Source: SkillBuiltin})
	r.Merge(SkillMeta{Name: "alpha", Source: SkillBuiltin})
	r.Merge(SkillMeta{Name: "alpha", Source: SkillGlobal})

	catalog := r.L1Catalog()
	if len(catalog) != 2 {
		t.Fatalf("expected 2 unique skills, got %d", len(catalog))
	}
	if catalog[0].Name != "alpha" || catalog[1].Name != "zeta" {
		t.Fatalf("expected sorted catalog, got %+v", catalog)
	}
}
