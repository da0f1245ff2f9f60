package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider executes prompts against the OpenAI chat completions API.
type OpenAIProvider struct {
	client     openai.Client
	model      string
	configured bool
}

// NewOpenAIProvider creates an OpenAI-backed provider. An empty model
// falls back to DefaultOpenAIModel.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		model:      model,
		configured: apiKey != "",
	}
}

// Name returns "openai".
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable reports whether an API key was configured.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	return p.configured
}

// Execute sends the prompt as a single-turn chat completion. Recognized
// params: "system_prompt" (string), "temperature" (float64),
// "max_tokens" (int).
func (p *OpenAIProvider) Execute(ctx context.Context, prompt string, params map[string]interface{}) (interface{}, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}

	if system, ok := params["system_prompt"].(string); ok && system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	req := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	}

	if temp, ok := params["temperature"].(float64); ok && temp > 0 {
		req.Temperature = openai.Float(temp)
	}
	if maxTokens, ok := params["max_tokens"].(int); ok && maxTokens > 0 {
		req.MaxTokens = openai.Int(int64(maxTokens))
	}

	response, err := p.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return nil, NewError(p.Name(), err)
	}

	if len(response.Choices) == 0 {
		return nil, NewError(p.Name(), fmt.Errorf("no response choices returned"))
	}

	return response.Choices[0].Message.Content, nil
}
