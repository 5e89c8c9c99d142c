package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Phase1Temperature is the fixed transport temperature for routing calls,
// chosen for determinism per §4.3.
const Phase1Temperature = 0.1

// PromptAssembler builds the two distinct system prompts per turn. It is
// grounded on the teacher's PromptComposer (prompt_layers.go) but replaces
// the teacher's free-priority layer list with the spec's fixed nine-segment
// Phase 2 order and a deliberately minimal Phase 1 prompt.
type PromptAssembler struct {
	identity string // optional user-supplied identity text, appended to segment 1
	now      func() time.Time
	cwd      func() string
}

// NewPromptAssembler constructs an assembler. identity may be empty.
func NewPromptAssembler(identity string) *PromptAssembler {
	return &PromptAssembler{
		identity: identity,
		now:      time.Now,
		cwd:      defaultCWD,
	}
}

func defaultCWD() string {
	wd, err := osGetwd()
	if err != nil {
		return "."
	}
	return wd
}

// AssemblePhase1 builds the routing prompt: identity line, brief autonomy
// statement, and the L1 skill catalog — nothing else.
func (p *PromptAssembler) AssemblePhase1(autonomy AutonomyLevel, skills []SkillMeta) string {
	var b strings.Builder
	b.WriteString("You are a security-first AI assistant.\n")
	b.WriteString(autonomyStatement(autonomy))
	b.WriteString("\n\n")

	if len(skills) > 0 {
		b.WriteString("Available skills:\n")
		for _, s := range skills {
			b.WriteString(fmt.Sprintf("- %s: %s\n", s.Name, s.Description))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func autonomyStatement(level AutonomyLevel) string {
	switch level {
	case AutonomyReadOnly:
		return "Autonomy: read-only. You may answer but cannot execute tools."
	case AutonomySupervised:
		return "Autonomy: supervised. Tool use is allowed but confirmed by the user."
	case AutonomyFull:
		return "Autonomy: full. Tool use is allowed within the configured whitelist."
	default:
		return "Autonomy: unknown."
	}
}

// Phase2Input carries the per-turn inputs the Phase 2 prompt is assembled
// from, beyond what the assembler already owns.
type Phase2Input struct {
	Policy             SecurityPolicy
	Tools              []ToolSpec
	Skills             []SkillMeta
	MemoryRecall       []MemoryRecallResult
	RoutedSkillContent string // concatenated L2 bodies for skills Phase 1 routed to
}

// AssemblePhase2 builds the execution prompt in the spec's fixed segment
// order. Each segment is emitted only if it has content, but the relative
// order is never reordered — unlike the teacher's priority-sorted layers,
// this is not resortable at runtime.
func (p *PromptAssembler) AssemblePhase2(in Phase2Input) string {
	var segments []string

	// 1. Identity + optional user-supplied identity text.
	identity := "You are a security-first AI assistant."
	if p.identity != "" {
		identity += "\n\n" + p.identity
	}
	segments = append(segments, identity)

	// 2. Full tool schemas.
	if len(in.Tools) > 0 {
		segments = append(segments, p.toolSchemasSegment(in.Tools))
	}

	// 3. Skill catalog L1.
	if len(in.Skills) > 0 {
		segments = append(segments, p.skillCatalogSegment(in.Skills))
	}

	// 4. Security rules contextual to current autonomy.
	segments = append(segments, p.securityRulesSegment(in.Policy.Autonomy))

	// 5. Memory recall snippets.
	if len(in.MemoryRecall) > 0 {
		segments = append(segments, p.memoryRecallSegment(in.MemoryRecall))
	}

	// 6. Already-routed skill L2 bodies.
	if in.RoutedSkillContent != "" {
		segments = append(segments, "## Active Skill Instructions\n\n"+in.RoutedSkillContent)
	}

	// 7. Environment: cwd, current time.
	segments = append(segments, p.environmentSegment())

	// 8. Decision rules.
	segments = append(segments, decisionRulesSegment)

	// 9. Tool-result format addendum.
	segments = append(segments, toolResultFormatSegment)

	return strings.Join(segments, "\n\n")
}

func (p *PromptAssembler) toolSchemasSegment(tools []ToolSpec) string {
	var b strings.Builder
	b.WriteString("## Tools\n\n")
	for _, t := range tools {
		b.WriteString(fmt.Sprintf("### %s\n%s\n", t.Name, t.Description))
		if t.Parameters != nil {
			if data, err := json.Marshal(t.Parameters); err == nil {
				b.WriteString("Parameters: ")
				b.Write(data)
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *PromptAssembler) skillCatalogSegment(skills []SkillMeta) string {
	var b strings.Builder
	b.WriteString("## Skills\n\nRequest a skill by name via the skill tool if one matches the task.\n\n")
	for _, s := range skills {
		b.WriteString(fmt.Sprintf("- %s: %s\n", s.Name, s.Description))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *PromptAssembler) securityRulesSegment(level AutonomyLevel) string {
	var rule string
	switch level {
	case AutonomyReadOnly:
		rule = "do not invoke tools"
	case AutonomySupervised:
		rule = "invoke tools directly — the system displays a confirmation prompt automatically"
	case AutonomyFull:
		rule = "invoke tools autonomously, but stay within the whitelist"
	default:
		rule = "do not invoke tools"
	}
	return fmt.Sprintf("## Security\n\nCurrent autonomy: %s. You should %s.", level, rule)
}

func (p *PromptAssembler) memoryRecallSegment(results []MemoryRecallResult) string {
	var b strings.Builder
	b.WriteString("## Memory Recall\n\n")
	for _, r := range results {
		b.WriteString(fmt.Sprintf("- [%s] %s\n", r.Key, r.Content))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *PromptAssembler) environmentSegment() string {
	return fmt.Sprintf("## Environment\n\ncwd: %s\ntime: %s", p.cwd(), p.now().Format(time.RFC3339))
}

const decisionRulesSegment = `## Decision Rules

Look up before acting; if unknown, ask. Announce intent before tool use.
On failure, reflect before retry, and after the second failure ask the user.
Reply in the user's language.`

const toolResultFormatSegment = `## Tool Result Format

Tool results are folded into the conversation as plain text: successful
output verbatim, "[failed] {error}" with any partial output appended,
"[error] {reason}" for rejected or erroring calls.`
