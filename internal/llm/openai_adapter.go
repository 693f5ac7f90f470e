package llm

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/RomanUsername777/browseragent/internal/message"
)

// OpenAIAdapter implements ChatModel against any OpenAI-compatible chat
// completions endpoint (OpenAI itself, or a self-hosted gateway speaking
// the same wire format).
type OpenAIAdapter struct {
	client *openai.Client
	model  string
}

// NewOpenAIAdapter builds an adapter for the given model name. baseURL may
// be empty to use the default OpenAI endpoint, or set to point at a
// compatible gateway.
func NewOpenAIAdapter(apiKey, model, baseURL string) *OpenAIAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIAdapter{client: openai.NewClientWithConfig(cfg), model: model}
}

func (a *OpenAIAdapter) Name() string { return a.model }

func (a *OpenAIAdapter) Invoke(ctx context.Context, messages []message.Message, outputSchema []byte) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: toOpenAIMessages(messages),
	}

	if len(outputSchema) > 0 {
		var schema map[string]any
		if err := json.Unmarshal(outputSchema, &schema); err != nil {
			return Response{}, fmt.Errorf("llm: decode output schema: %w", err)
		}
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "step_decision",
				Schema: schema,
				Strict: true,
			},
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("llm: empty response")
	}

	choice := resp.Choices[0]
	out := Response{
		Completion: choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	if choice.Message.Refusal != "" {
		out.Refusal = choice.Message.Refusal
	}

	if len(outputSchema) > 0 && choice.Message.Content != "" {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(choice.Message.Content), &decoded); err == nil {
			out.Structured = decoded
		}
	}

	return out, nil
}

func toOpenAIMessages(msgs []message.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case message.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case message.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}

		if len(m.Images) == 0 {
			out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Text})
			continue
		}

		parts := make([]openai.ChatMessagePart, 0, len(m.Images)+1)
		if m.Text != "" {
			parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: m.Text})
		}
		for _, img := range m.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    img.URL,
					Detail: openai.ImageURLDetail(img.Detail),
				},
			})
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, MultiContent: parts})
	}
	return out
}
