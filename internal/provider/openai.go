// Package provider implements agent.Provider over concrete LLM backends,
// grounded on the teacher's llm.go (LLMClient.Complete request/response
// shape, truncated error logging, Bearer-auth header) generalized from a
// raw OpenAI-compatible HTTP client to github.com/sashabaranov/go-openai
// and github.com/anthropics/anthropic-sdk-go.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yzzting/rrclaw/internal/agent"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
// (OpenAI itself, or a compatible proxy such as GLM's api.z.ai, matching
// the teacher's doc comment on llm.go).
type OpenAIProvider struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIProvider constructs a provider against baseURL (empty means
// the official OpenAI endpoint) using apiKey and model.
func NewOpenAIProvider(baseURL, apiKey, model string, logger *slog.Logger) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.With("component", "provider.openai"),
	}
}

// ChatWithTools issues a single non-streaming completion request. model
// overrides the provider's configured default when non-empty.
func (p *OpenAIProvider) ChatWithTools(ctx context.Context, systemPrompt string, history []agent.ConversationMessage, tools []agent.ToolSpec, model string, temperature float64) (agent.ChatResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.resolveModel(model),
		Messages:    toOpenAIMessages(systemPrompt, history),
		Temperature: float32(temperature),
		Tools:       toOpenAITools(tools),
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return agent.ChatResponse{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return agent.ChatResponse{}, fmt.Errorf("openai: no choices returned")
	}

	p.logger.Debug("chat completion done",
		"model", req.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	return fromOpenAIChoice(resp.Choices[0]), nil
}

// resolveModel returns override if set, else the provider's configured
// default model.
func (p *OpenAIProvider) resolveModel(override string) string {
	if override != "" {
		return override
	}
	return p.model
}

// ChatStream issues a streaming completion request, emitting StreamEvents
// to sink as tokens arrive, and returns the final aggregated response.
// reasoning_content must be preserved for round-tripping into the next
// turn, per spec.md §6.
func (p *OpenAIProvider) ChatStream(ctx context.Context, systemPrompt string, history []agent.ConversationMessage, tools []agent.ToolSpec, model string, temperature float64, sink chan<- agent.StreamEvent) (agent.ChatResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.resolveModel(model),
		Messages:    toOpenAIMessages(systemPrompt, history),
		Temperature: float32(temperature),
		Tools:       toOpenAITools(tools),
		Stream:      true,
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return agent.ChatResponse{}, fmt.Errorf("openai chat stream: %w", err)
	}
	defer stream.Close()

	var (
		textBuilder      strings.Builder
		reasoningBuilder strings.Builder
		toolCalls        []agent.ToolCall
	)

	for {
		chunk, err := stream.Recv()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return agent.ChatResponse{}, fmt.Errorf("openai stream recv: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			textBuilder.WriteString(choice.Delta.Content)
			emit(sink, agent.StreamEvent{Kind: agent.StreamText, Token: choice.Delta.Content})
		}
		if choice.Delta.ReasoningContent != "" {
			reasoningBuilder.WriteString(choice.Delta.ReasoningContent)
			emit(sink, agent.StreamEvent{Kind: agent.StreamThinking, Token: choice.Delta.ReasoningContent})
		}
		for _, tc := range choice.Delta.ToolCalls {
			toolCalls = mergeStreamedToolCall(toolCalls, tc)
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			emit(sink, agent.StreamEvent{
				Kind:      agent.StreamToolCallDelta,
				Index:     idx,
				DeltaID:   tc.ID,
				DeltaName: tc.Function.Name,
				ArgsDelta: tc.Function.Arguments,
			})
		}
	}

	resp := agent.ChatResponse{
		Text:      textBuilder.String(),
		Reasoning: reasoningBuilder.String(),
		ToolCalls: toolCalls,
	}
	emit(sink, agent.StreamEvent{Kind: agent.StreamDone, Response: &resp})
	return resp, nil
}

func emit(sink chan<- agent.StreamEvent, ev agent.StreamEvent) {
	if sink == nil {
		return
	}
	sink <- ev
}

// mergeStreamedToolCall accumulates a streamed tool-call delta (which
// arrives fragmented: index carries identity, Function.Arguments arrives
// incrementally) into the growing toolCalls slice.
func mergeStreamedToolCall(calls []agent.ToolCall, delta openai.ToolCall) []agent.ToolCall {
	idx := 0
	if delta.Index != nil {
		idx = *delta.Index
	}
	for len(calls) <= idx {
		calls = append(calls, agent.ToolCall{})
	}
	if delta.ID != "" {
		calls[idx].ID = delta.ID
	}
	if delta.Function.Name != "" {
		calls[idx].Name = delta.Function.Name
	}
	calls[idx].Arguments += delta.Function.Arguments
	return calls
}

func toOpenAIMessages(systemPrompt string, history []agent.ConversationMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if systemPrompt != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	for _, m := range history {
		switch m.Kind {
		case agent.MessageChat:
			out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Text})
		case agent.MessageAssistantWithToolCalls:
			msg := openai.ChatCompletionMessage{
				Role:             openai.ChatMessageRoleAssistant,
				Content:          m.Text,
				ReasoningContent: m.Reasoning,
			}
			for _, tc := range m.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			out = append(out, msg)
		case agent.MessageToolResult:
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    m.Content,
				ToolCallID: m.ToolCallID,
			})
		}
	}
	return out
}

func toOpenAITools(tools []agent.ToolSpec) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func fromOpenAIChoice(choice openai.ChatCompletionChoice) agent.ChatResponse {
	resp := agent.ChatResponse{
		Text:      choice.Message.Content,
		Reasoning: choice.Message.ReasoningContent,
	}
	for _, tc := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, agent.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return resp
}
