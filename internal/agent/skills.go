package agent

import (
	"regexp"
	"sort"
)

var skillNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidSkillName reports whether name satisfies the naming invariant:
// matches ^[a-z0-9][a-z0-9-]*$ and is at most 64 characters.
func ValidSkillName(name string) bool {
	return len(name) > 0 && len(name) <= 64 && skillNamePattern.MatchString(name)
}

// SkillRegistry holds the merged L1 skill catalog and provides lazy L2
// lookup. Loading from disk (builtin/global/project directories) is the
// responsibility of internal/skills; this type only implements the merge
// and lookup semantics the spec names as invariants.
type SkillRegistry struct {
	meta    map[string]SkillMeta
	content map[string]SkillContent
}

// NewSkillRegistry returns an empty registry.
func NewSkillRegistry() *SkillRegistry {
	return &SkillRegistry{
		meta:    make(map[string]SkillMeta),
		content: make(map[string]SkillContent),
	}
}

// Merge adds or replaces a skill's metadata. Skill names are unique after
// merge; a higher-priority source (Project > Global > Builtin) replaces a
// lower one already present under the same name.
func (r *SkillRegistry) Merge(m SkillMeta) {
	existing, ok := r.meta[m.Name]
	if !ok || m.Source.Priority() >= existing.Source.Priority() {
		r.meta[m.Name] = m
	}
}

// SetContent registers the L2 content for a previously merged skill name.
func (r *SkillRegistry) SetContent(c SkillContent) {
	r.content[c.Meta.Name] = c
}

// L1Catalog returns the merged metadata catalog sorted by name, suitable
// for both the Phase 1 and Phase 2 prompts.
func (r *SkillRegistry) L1Catalog() []SkillMeta {
	out := make([]SkillMeta, 0, len(r.meta))
	for _, m := range r.meta {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Content lazily returns the L2 content for name, if loaded.
func (r *SkillRegistry) Content(name string) (SkillContent, bool) {
	c, ok := r.content[name]
	return c, ok
}

// Get returns the L1 metadata for name.
func (r *SkillRegistry) Get(name string) (SkillMeta, bool) {
	m, ok := r.meta[name]
	return m, ok
}
