// Package skills loads SkillMeta/SkillContent from disk (builtin, global,
// and project directories) and merges them into an agent.SkillRegistry,
// grounded on the teacher's skill_creator_builtin.go frontmatter format
// (`---\nname: ...\ndescription: ...\n---\n\n{body}`) and its Registry
// (AddLoader/LoadAll/List/Get) pattern.
package skills

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yzzting/rrclaw/internal/agent"
)

// frontmatter mirrors the YAML header of a SKILL.md file.
type frontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// Loader loads skill definitions from the three tiers named in
// SPEC_FULL.md §4.8: built-in (compiled in), global ($HOME), and project
// (cwd), merging them into an agent.SkillRegistry with Project > Global >
// Builtin priority.
type Loader struct {
	globalDir  string
	projectDir string
	builtins   []BuiltinSkill
}

// BuiltinSkill is a skill compiled directly into the binary.
type BuiltinSkill struct {
	Name         string
	Description  string
	Tags         []string
	Instructions string
}

// NewLoader constructs a loader. globalDir is typically
// ~/.rrclaw/skills; projectDir is typically ./.rrclaw/skills.
func NewLoader(globalDir, projectDir string, builtins []BuiltinSkill) *Loader {
	return &Loader{globalDir: globalDir, projectDir: projectDir, builtins: builtins}
}

// LoadAll merges all three tiers into registry.
func (l *Loader) LoadAll(registry *agent.SkillRegistry) error {
	for _, b := range l.builtins {
		registry.Merge(agent.SkillMeta{Name: b.Name, Description: b.Description, Tags: b.Tags, Source: agent.SkillBuiltin})
		registry.SetContent(agent.SkillContent{
			Meta:         agent.SkillMeta{Name: b.Name, Description: b.Description, Tags: b.Tags, Source: agent.SkillBuiltin},
			Instructions: b.Instructions,
		})
	}

	if err := l.loadDir(l.globalDir, agent.SkillGlobal, registry); err != nil {
		return err
	}
	if err := l.loadDir(l.projectDir, agent.SkillProject, registry); err != nil {
		return err
	}
	return nil
}

func (l *Loader) loadDir(dir string, source agent.SkillSource, registry *agent.SkillRegistry) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		meta, body, ok := parseFrontmatter(string(content))
		if !ok || !agent.ValidSkillName(meta.Name) {
			continue
		}
		skillMeta := agent.SkillMeta{Name: meta.Name, Description: meta.Description, Tags: meta.Tags, Source: source}
		registry.Merge(skillMeta)
		registry.SetContent(agent.SkillContent{Meta: skillMeta, Instructions: body})
	}
	return nil
}

// parseFrontmatter splits a SKILL.md file into its YAML frontmatter and
// Markdown body: "---\n<yaml>\n---\n\n<body>".
func parseFrontmatter(raw string) (frontmatter, string, bool) {
	const delim = "---"
	if !strings.HasPrefix(raw, delim) {
		return frontmatter{}, "", false
	}
	rest := raw[len(delim):]
	end := strings.Index(rest, "\n"+delim)
	if end == -1 {
		return frontmatter{}, "", false
	}
	yamlPart := strings.TrimSpace(rest[:end])
	body := strings.TrimLeft(rest[end+len(delim)+1:], "\n")

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(yamlPart), &fm); err != nil {
		return frontmatter{}, "", false
	}
	return fm, strings.TrimSpace(body), true
}
