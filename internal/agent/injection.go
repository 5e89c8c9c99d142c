package agent

import "strings"

// externalDataTools is the set of tool names whose output originates
// outside the agent's trust boundary and therefore passes through the
// Injection Inspector. Internal tools (memory recall, skill loading,
// self-info, config editing, routine management) bypass inspection.
var externalDataTools = map[string]struct{}{
	"shell":        {},
	"file_read":    {},
	"file_write":   {},
	"git":          {},
	"http_request": {},
}

// IsExternalDataTool reports whether toolName's output should be inspected.
// Any MCP-bridged tool (name prefixed "mcp_") is also external-data.
func IsExternalDataTool(toolName string) bool {
	if strings.HasPrefix(toolName, "mcp_") {
		return true
	}
	_, ok := externalDataTools[toolName]
	return ok
}

// blockPhrases are case-insensitive high-risk instruction strings that
// trigger the Block verdict.
var blockPhrases = []string{
	"ignore previous instructions",
	"ignore all previous instructions",
	"disregard the above",
	"disregard previous instructions",
	"system prompt is",
	"you are now",
}

const blockedWarning = "[blocked: potential prompt injection detected — original output withheld]"

// InjectionInspector scans externally-sourced tool outputs for
// prompt-injection signals and classifies them into block/review/warn.
type InjectionInspector struct{}

// NewInjectionInspector constructs an inspector. It is stateless.
func NewInjectionInspector() *InjectionInspector {
	return &InjectionInspector{}
}

// Inspect classifies text and returns the verdict to apply. Block dominates
// Review dominates Warn; a single inspection produces at most one verdict.
func (i *InjectionInspector) Inspect(text string) InjectionVerdict {
	if reason, ok := i.checkBlock(text); ok {
		return InjectionVerdict{
			Severity:  InjectionBlock,
			Reason:    reason,
			Sanitized: blockedWarning,
		}
	}

	if i.checkBlankLineDensity(text) {
		return InjectionVerdict{
			Severity:  InjectionReview,
			Reason:    "anomalous blank-line density",
			Sanitized: text,
		}
	}

	if reason, ok := i.checkControlChars(text); ok {
		return InjectionVerdict{
			Severity:  InjectionWarn,
			Reason:    reason,
			Sanitized: text,
		}
	}

	return InjectionVerdict{Severity: InjectionClean, Sanitized: text}
}

func (i *InjectionInspector) checkBlock(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, phrase := range blockPhrases {
		if strings.Contains(lower, phrase) {
			return "matched phrase: " + phrase, true
		}
	}
	return "", false
}

// checkBlankLineDensity reports true when the ratio of empty lines to total
// bytes exceeds 1 per 40 bytes — often signals padding used to hide
// instructions.
func (i *InjectionInspector) checkBlankLineDensity(text string) bool {
	if len(text) == 0 {
		return false
	}
	lines := strings.Split(text, "\n")
	blank := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			blank++
		}
	}
	return float64(blank) > float64(len(text))/40.0
}

// checkControlChars reports true if text contains unexpected control
// characters: NUL, VT, FF, or other non-whitespace C0 controls. Tab,
// newline, and carriage return are whitespace and excluded.
func (i *InjectionInspector) checkControlChars(text string) (string, bool) {
	for _, r := range text {
		switch r {
		case '\t', '\n', '\r':
			continue
		}
		if r < 0x20 {
			return "unexpected control character", true
		}
	}
	return "", false
}
