package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Loop is the fixpoint that runs Phase 1 routing, then iterates Phase 2
// (LLM call -> execute tool calls -> fold results) up to MaxIterations
// turns. It manages conversation history and reasoning-content carryover.
// Grounded on the teacher's AgentRun (pkg/goclaw/copilot/agent.go), replacing
// the teacher's unbounded-turns/soft-limit design with the spec's hard
// 10-iteration bound and explicit Phase 1/Phase 2 split.
type Loop struct {
	provider  Provider
	executor  *ToolExecutor
	assembler *PromptAssembler
	skills    *SkillRegistry
	memory    Memory
	policy    *PolicyEvaluator
	model     string

	history *History
	logger  *slog.Logger
}

// NewLoop constructs an Agent Loop for a single conversation/session.
// History is owned exclusively by this Loop instance; it is never shared
// across turns or agent instances.
func NewLoop(provider Provider, executor *ToolExecutor, assembler *PromptAssembler, skills *SkillRegistry, memory Memory, policy *PolicyEvaluator, model string, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		provider:  provider,
		executor:  executor,
		assembler: assembler,
		skills:    skills,
		memory:    memory,
		policy:    policy,
		model:     model,
		history:   NewHistory(),
		logger:    logger.With("component", "agent_loop"),
	}
}

// History exposes the loop's retained conversation history.
func (l *Loop) History() *History {
	return l.history
}

// Process drives a single user message to completion, per §4.5. sink may be
// nil to run without streaming (ChatWithTools is used instead).
func (l *Loop) Process(ctx context.Context, userMessage string, sink chan<- StreamEvent) (string, error) {
	l.history.Append(NewChatMessage("user", userMessage))
	l.history.ClearPriorReasoning()

	routed := l.phase1(ctx, userMessage)

	var routedSkillContent string
	switch routed.Kind {
	case RouteSkills:
		var parts []string
		for _, name := range routed.SkillNames {
			if content, ok := l.skills.Content(name); ok {
				parts = append(parts, content.Instructions)
			}
		}
		routedSkillContent = strings.Join(parts, "\n\n")
	case RouteNeedClarification:
		l.history.Append(NewChatMessage("assistant", routed.Clarification))
		return routed.Clarification, nil
	case RouteDirect:
		routedSkillContent = ""
	}

	var memoryRecall []MemoryRecallResult
	if l.memory != nil {
		if hits, err := l.memory.Recall(ctx, userMessage, 5); err == nil {
			memoryRecall = hits
		}
	}

	for iter := 1; iter <= MaxIterations; iter++ {
		prompt := l.assembler.AssemblePhase2(Phase2Input{
			Policy:             l.policy.Policy(),
			Tools:              l.executor.Tools(),
			Skills:             l.skills.L1Catalog(),
			MemoryRecall:       memoryRecall,
			RoutedSkillContent: routedSkillContent,
		})

		response, err := l.callProvider(ctx, prompt, sink)
		if err != nil {
			return "", fmt.Errorf("LLM call failed (iteration %d): %w", iter, err)
		}

		if len(response.ToolCalls) == 0 {
			l.history.Append(NewChatMessage("assistant", response.Text))
			if l.memory != nil {
				_ = l.memory.Store(ctx, summaryKey(userMessage), response.Text, "turn_summary")
			}
			return response.Text, nil
		}

		l.history.Append(NewAssistantWithToolCalls(response.Text, response.Reasoning, response.ToolCalls))

		// Sequential, order-preserving execution.
		results := l.executor.Execute(ctx, response.ToolCalls)
		l.history.Append(results...)
	}

	l.history.Append(NewChatMessage("assistant", ErrIterationLimit))
	return ErrIterationLimit, nil
}

func (l *Loop) callProvider(ctx context.Context, prompt string, sink chan<- StreamEvent) (ChatResponse, error) {
	tools := l.executor.Tools()
	if sink != nil {
		return l.provider.ChatStream(ctx, prompt, l.history.Entries(), tools, l.model, 0.7, sink)
	}
	return l.provider.ChatWithTools(ctx, prompt, l.history.Entries(), tools, l.model, 0.7)
}

// phase1 runs the routing pass. Any error or unparseable response degrades
// to Direct silently — routing never blocks the user.
func (l *Loop) phase1(ctx context.Context, userMessage string) RouteResult {
	prompt := l.assembler.AssemblePhase1(l.policy.Policy().Autonomy, l.skills.L1Catalog())

	resp, err := l.provider.ChatWithTools(ctx, prompt, l.history.Entries(), nil, l.model, Phase1Temperature)
	if err != nil {
		l.logger.Warn("phase 1 routing call failed, degrading to direct", "error", err)
		return RouteResult{Kind: RouteDirect}
	}

	route, ok := parsePhase1Response(resp.Text)
	if !ok {
		l.logger.Debug("phase 1 response unparseable, degrading to direct", "text", truncatePreview(resp.Text, 120))
		return RouteResult{Kind: RouteDirect}
	}
	return route
}

// parsePhase1Response parses the routing decision out of the Phase 1
// completion text. Recognized forms (one per line, case-insensitive
// keyword):
//
//	DIRECT
//	SKILLS: name1, name2
//	CLARIFY: question text
func parsePhase1Response(text string) (RouteResult, bool) {
	trimmed := strings.TrimSpace(text)
	upper := strings.ToUpper(trimmed)

	switch {
	case strings.HasPrefix(upper, "DIRECT"):
		return RouteResult{Kind: RouteDirect}, true
	case strings.HasPrefix(upper, "SKILLS:"):
		rest := trimmed[len("SKILLS:"):]
		var names []string
		for _, n := range strings.Split(rest, ",") {
			n = strings.TrimSpace(n)
			if n != "" {
				names = append(names, n)
			}
		}
		if len(names) == 0 {
			return RouteResult{}, false
		}
		return RouteResult{Kind: RouteSkills, SkillNames: names}, true
	case strings.HasPrefix(upper, "CLARIFY:"):
		question := strings.TrimSpace(trimmed[len("CLARIFY:"):])
		if question == "" {
			return RouteResult{}, false
		}
		return RouteResult{Kind: RouteNeedClarification, Clarification: question}, true
	default:
		return RouteResult{}, false
	}
}

func summaryKey(userMessage string) string {
	return "turn:" + truncatePreview(userMessage, 40)
}
