package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yzzting/rrclaw/internal/agent"
)

var httpParametersSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"method": map[string]any{"type": "string", "description": "HTTP method, defaults to GET"},
		"url":    map[string]any{"type": "string", "description": "absolute URL to request"},
		"body":   map[string]any{"type": "string", "description": "optional request body"},
	},
	"required": []string{"url"},
}

// HTTPRequestTool issues an outbound HTTP request, gated by a host
// allowlist read from the policy passed to each call rather than cached
// on the tool (see SecurityPolicy.HTTPAllowedHosts), so a config reload
// takes effect on the next request (SPEC_FULL.md §6).
type HTTPRequestTool struct {
	client *http.Client
}

func NewHTTPRequestTool() *HTTPRequestTool {
	return &HTTPRequestTool{client: &http.Client{Timeout: 30 * time.Second}}
}

func (t *HTTPRequestTool) Name() string        { return "http_request" }
func (t *HTTPRequestTool) Description() string { return "Issue an outbound HTTP request to an allowlisted host." }
func (t *HTTPRequestTool) ParametersSchema() map[string]any { return httpParametersSchema }

func (t *HTTPRequestTool) PreValidate(args map[string]any, policy agent.SecurityPolicy) (string, bool) {
	raw, _ := args["url"].(string)
	if raw == "" {
		return "url is required", true
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "url is not a valid absolute URL", true
	}
	if !hostAllowed(parsed.Hostname(), policy.HTTPAllowedHosts) {
		return fmt.Sprintf("host %q is not in the allowed hosts list", parsed.Hostname()), true
	}
	return "", false
}

func (t *HTTPRequestTool) Execute(ctx context.Context, args map[string]any, policy agent.SecurityPolicy) (agent.ToolExecResult, error) {
	raw, _ := args["url"].(string)
	method, _ := args["method"].(string)
	if method == "" {
		method = http.MethodGet
	}
	body, _ := args["body"].(string)

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return agent.ToolExecResult{Success: false, Error: "invalid url"}, nil
	}
	if !hostAllowed(parsed.Hostname(), policy.HTTPAllowedHosts) {
		return agent.ToolExecResult{Success: false, Error: fmt.Sprintf("host %q is not allowed", parsed.Hostname())}, nil
	}

	req, err := http.NewRequestWithContext(ctx, method, raw, strings.NewReader(body))
	if err != nil {
		return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return agent.ToolExecResult{Success: false, Error: err.Error()}, nil
	}

	if resp.StatusCode >= 400 {
		return agent.ToolExecResult{
			Success: false,
			Output:  string(respBody),
			Error:   fmt.Sprintf("http %d", resp.StatusCode),
		}, nil
	}
	return agent.ToolExecResult{Success: true, Output: string(respBody)}, nil
}

// hostAllowed reports whether host appears in allowed, or allowed contains
// the literal wildcard "*". An empty allowed list fails closed: no hosts
// are permitted until the allowlist is explicitly configured.
func hostAllowed(host string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, host) {
			return true
		}
	}
	return false
}
