package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Options carrega os parâmetros de amostragem de uma chamada ao motor.
// Cada orquestrador usa valores fixos próprios (conversa vs. extração).
type Options struct {
	Temperature     float32
	MaxOutputTokens int
}

// Client define a interface do motor de geração de texto. A instrução de
// sistema e o conteúdo vão separados; o motor devolve texto livre, sem
// nenhuma garantia de formato.
type Client interface {
	Generate(ctx context.Context, systemInstruction, contents string, opts Options) (string, error)
}

// OpenAIClient implementa Client contra uma API chat-completions compatível
// com OpenAI.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient constrói o cliente do motor. baseURL vazio usa o endpoint
// padrão da OpenAI.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, systemInstruction, contents string, opts Options) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: contents},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: resposta vazia do motor")
	}
	return resp.Choices[0].Message.Content, nil
}
