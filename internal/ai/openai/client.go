// Package openai is a content generator for any OpenAI compatible chat completion API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"

	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 2
	defaultTemperature = 0.4
)

// Config describes the endpoint. Only APIKey is required.
type Config struct {
	BaseURL     string        `mapstructure:"base-url"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"-"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max-retries"`
	Temperature float64       `mapstructure:"temperature"`
}

// Generator sends chat completions to an OpenAI compatible endpoint.
type Generator struct {
	client      openaigo.Client
	model       string
	temperature float64
}

func NewGenerator(cfg Config, httpClient *http.Client) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = defaultMaxRetries
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	client := openaigo.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(retries),
		option.WithRequestTimeout(timeout),
	)

	return &Generator{client: client, model: model, temperature: temperature}, nil
}

// GenerateContent sends the system and user messages and returns the first choice.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if g == nil {
		return "", errors.New("openai generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]openaigo.ChatCompletionMessageParamUnion, 0, 2)
	if system = strings.TrimSpace(system); system != "" {
		messages = append(messages, openaigo.SystemMessage(system))
	}
	messages = append(messages, openaigo.UserMessage(message))

	resp, err := g.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model:       openaigo.ChatModel(g.model),
		Messages:    messages,
		Temperature: openaigo.Float(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
