package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// defaultMaxTokens bounds Anthropic responses when the caller does not set
// a limit; the Messages API requires an explicit value.
const defaultMaxTokens = 1024

// AnthropicProvider executes prompts against the Anthropic messages API.
type AnthropicProvider struct {
	client     anthropic.Client
	model      string
	configured bool
}

// NewAnthropicProvider creates an Anthropic-backed provider. An empty
// model falls back to DefaultAnthropicModel.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicProvider{
		client:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:      model,
		configured: apiKey != "",
	}
}

// Name returns "anthropic".
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable reports whether an API key was configured.
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	return p.configured
}

// Execute sends the prompt as a single-turn message. Recognized params:
// "system_prompt" (string), "temperature" (float64), "max_tokens" (int).
func (p *AnthropicProvider) Execute(ctx context.Context, prompt string, params map[string]interface{}) (interface{}, error) {
	maxTokens := int64(defaultMaxTokens)
	if mt, ok := params["max_tokens"].(int); ok && mt > 0 {
		maxTokens = int64(mt)
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if system, ok := params["system_prompt"].(string); ok && system != "" {
		req.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if temp, ok := params["temperature"].(float64); ok && temp > 0 {
		req.Temperature = anthropic.Float(temp)
	}

	response, err := p.client.Messages.New(ctx, req)
	if err != nil {
		return nil, NewError(p.Name(), err)
	}

	content := ""
	for _, block := range response.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += text.Text
		}
	}

	if content == "" {
		return nil, NewError(p.Name(), fmt.Errorf("empty response content"))
	}

	return content, nil
}
