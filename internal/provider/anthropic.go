package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/yzzting/rrclaw/internal/agent"
)

// AnthropicProvider implements agent.Provider over Claude models, grounded
// on haasonsaas-nexus's AnthropicProvider (SSE event-driven streaming:
// content_block_start/delta/stop, thinking blocks, tool_use accumulation).
type AnthropicProvider struct {
	client       anthropic.Client
	defaultModel string
	maxTokens    int64
	logger       *slog.Logger
}

// NewAnthropicProvider constructs a provider against baseURL (empty means
// the official Anthropic endpoint).
func NewAnthropicProvider(baseURL, apiKey, model string, logger *slog.Logger) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{
		client:       anthropic.NewClient(opts...),
		defaultModel: model,
		maxTokens:    4096,
		logger:       logger.With("component", "provider.anthropic"),
	}
}

// ChatWithTools issues a single non-streaming completion request by
// draining ChatStream without a sink.
func (p *AnthropicProvider) ChatWithTools(ctx context.Context, systemPrompt string, history []agent.ConversationMessage, tools []agent.ToolSpec, model string, temperature float64) (agent.ChatResponse, error) {
	return p.ChatStream(ctx, systemPrompt, history, tools, model, temperature, nil)
}

// ChatStream issues a streaming message request, emitting StreamEvents to
// sink (if non-nil), and returns the aggregated final response including
// any thinking/reasoning block, which must be preserved across turns per
// spec.md §6. model overrides the provider's configured default when
// non-empty.
func (p *AnthropicProvider) ChatStream(ctx context.Context, systemPrompt string, history []agent.ConversationMessage, tools []agent.ToolSpec, model string, temperature float64, sink chan<- agent.StreamEvent) (agent.ChatResponse, error) {
	messages := toAnthropicMessages(history)

	resolvedModel := model
	if resolvedModel == "" {
		resolvedModel = p.defaultModel
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(resolvedModel),
		Messages:    messages,
		MaxTokens:   p.maxTokens,
		Temperature: anthropic.Float(temperature),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	if len(tools) > 0 {
		toolParams, err := toAnthropicTools(tools)
		if err != nil {
			return agent.ChatResponse{}, err
		}
		params.Tools = toolParams
	}

	stream := p.client.Messages.NewStreaming(ctx, params)

	var (
		textBuilder      strings.Builder
		reasoningBuilder strings.Builder
		toolCalls        []agent.ToolCall
		currentToolID    string
		currentToolName  string
		currentToolInput strings.Builder
		inToolBlock      bool
	)

	for stream.Next() {
		event := stream.Current()
		switch event.Type {
		case "content_block_start":
			start := event.AsContentBlockStart()
			switch start.ContentBlock.Type {
			case "tool_use":
				toolUse := start.ContentBlock.AsToolUse()
				currentToolID = toolUse.ID
				currentToolName = toolUse.Name
				currentToolInput.Reset()
				inToolBlock = true
			}
		case "content_block_delta":
			delta := event.AsContentBlockDelta().Delta
			switch delta.Type {
			case "text_delta":
				if delta.Text != "" {
					textBuilder.WriteString(delta.Text)
					emit(sink, agent.StreamEvent{Kind: agent.StreamText, Token: delta.Text})
				}
			case "thinking_delta":
				if delta.Thinking != "" {
					reasoningBuilder.WriteString(delta.Thinking)
					emit(sink, agent.StreamEvent{Kind: agent.StreamThinking, Token: delta.Thinking})
				}
			case "input_json_delta":
				if delta.PartialJSON != "" {
					currentToolInput.WriteString(delta.PartialJSON)
					emit(sink, agent.StreamEvent{
						Kind:      agent.StreamToolCallDelta,
						Index:     len(toolCalls),
						DeltaID:   currentToolID,
						DeltaName: currentToolName,
						ArgsDelta: delta.PartialJSON,
					})
				}
			}
		case "content_block_stop":
			if inToolBlock {
				toolCalls = append(toolCalls, agent.ToolCall{
					ID:        currentToolID,
					Name:      currentToolName,
					Arguments: currentToolInput.String(),
				})
				inToolBlock = false
			}
		case "message_stop":
			resp := agent.ChatResponse{
				Text:      textBuilder.String(),
				Reasoning: reasoningBuilder.String(),
				ToolCalls: toolCalls,
			}
			emit(sink, agent.StreamEvent{Kind: agent.StreamDone, Response: &resp})
			return resp, nil
		}
	}
	if err := stream.Err(); err != nil {
		return agent.ChatResponse{}, fmt.Errorf("anthropic stream: %w", err)
	}

	resp := agent.ChatResponse{
		Text:      textBuilder.String(),
		Reasoning: reasoningBuilder.String(),
		ToolCalls: toolCalls,
	}
	return resp, nil
}

// toAnthropicMessages converts turn history into Claude-formatted
// messages. The system prompt is passed separately by the caller (Claude
// has no "system" role message), so a MessageChat with Role=="system" is
// skipped defensively rather than ever expected here.
func toAnthropicMessages(history []agent.ConversationMessage) []anthropic.MessageParam {
	var out []anthropic.MessageParam

	for _, m := range history {
		switch m.Kind {
		case agent.MessageChat:
			if m.Role == "system" {
				continue
			}
			if m.Role == "assistant" {
				out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
			} else {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
			}
		case agent.MessageAssistantWithToolCalls:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Text))
			}
			for _, tc := range m.ToolCalls {
				var input map[string]any
				_ = json.Unmarshal([]byte(tc.Arguments), &input)
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		case agent.MessageToolResult:
			out = append(out, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false),
			))
		}
	}
	return out
}

func toAnthropicTools(tools []agent.ToolSpec) ([]anthropic.ToolUnionParam, error) {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		var schema anthropic.ToolInputSchemaParam
		if len(t.Parameters) > 0 {
			raw, err := json.Marshal(t.Parameters)
			if err != nil {
				return nil, fmt.Errorf("marshaling schema for %s: %w", t.Name, err)
			}
			if err := json.Unmarshal(raw, &schema); err != nil {
				return nil, fmt.Errorf("invalid tool schema for %s: %w", t.Name, err)
			}
		}
		toolParam := anthropic.ToolUnionParamOfTool(schema, t.Name)
		if toolParam.OfTool != nil {
			toolParam.OfTool.Description = anthropic.String(t.Description)
		}
		out = append(out, toolParam)
	}
	return out, nil
}
