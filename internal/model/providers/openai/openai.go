package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/osanhueza/fleetdesk/internal/model/contract"

	"github.com/sashabaranov/go-openai"
)

// Provider speaks the OpenAI chat completions API. Mistral's endpoint is
// OpenAI-compatible, so the "mistral" provider type is this client with a
// different base URL.
type Provider struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string, timeout time.Duration) *Provider {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		baseURL = strings.TrimSuffix(baseURL, "/")
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	client := openai.NewClientWithConfig(cfg)
	return &Provider{client: client, model: model}
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest, onFragment contract.FragmentFunc) (*contract.CompletionResponse, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
			Name:    m.Name,
		})
	}

	var tools []openai.Tool
	for _, t := range req.Tools {
		params := t.Parameters
		if params == nil {
			params = map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			}
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		Tools:    tools,
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer stream.Close()

	var content strings.Builder
	var toolCall *contract.ToolCall
	var toolCallIndex *int

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("openai stream failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}

		delta := resp.Choices[0].Delta
		if delta.Content != "" {
			content.WriteString(delta.Content)
			if onFragment != nil {
				onFragment(delta.Content)
			}
		}

		// The argument payload arrives in pieces; only the first chunk
		// carries the call id and function name. With parallel tool calls
		// every chunk carries the call's index, so only chunks belonging to
		// the first call accumulate.
		for _, tc := range delta.ToolCalls {
			if toolCall == nil {
				toolCall = &contract.ToolCall{ID: tc.ID, Name: tc.Function.Name}
				toolCallIndex = tc.Index
				toolCall.Args += tc.Function.Arguments
				continue
			}
			if !sameCallIndex(toolCallIndex, tc.Index) {
				continue
			}
			if toolCall.Name == "" && tc.Function.Name != "" {
				toolCall.Name = tc.Function.Name
			}
			toolCall.Args += tc.Function.Arguments
		}
	}

	result := &contract.CompletionResponse{Content: content.String()}
	if toolCall != nil {
		if toolCall.ID == "" {
			toolCall.ID = "call_1"
		}
		result.ToolCall = toolCall
		result.Content = ""
	}

	return result, nil
}

// sameCallIndex matches streamed tool-call chunks to the call they belong
// to. Backends that never send an index stream a single call, so two nil
// indexes match.
func sameCallIndex(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
