package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Failure classes surfaced to the orchestrator. The orchestrator never
// retries; it maps these onto the HTTP error taxonomy.
var (
	ErrGatewayUnreachable = errors.New("llm gateway unreachable")
	ErrInvalidCredential  = errors.New("llm gateway rejected credential")
	ErrGatewayError       = errors.New("llm gateway error")
)

type Config struct {
	BaseURL  string
	APIKey   string
	Model    string
	Referrer string
	Title    string
}

// GatewayClient issues single-turn chat completions against an
// OpenAI-compatible endpoint (OpenRouter in production).
type GatewayClient struct {
	client *openai.Client
	model  string
}

type headerTransport struct {
	rt      http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cl := req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			cl.Header.Add(k, v)
		}
	}
	return t.rt.RoundTrip(cl)
}

func NewGatewayClient(cfg Config) *GatewayClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	// OpenRouter attribution headers.
	if cfg.Referrer != "" || cfg.Title != "" {
		h := http.Header{}
		if cfg.Referrer != "" {
			h.Set("HTTP-Referer", cfg.Referrer)
		}
		if cfg.Title != "" {
			h.Set("X-Title", cfg.Title)
		}
		clientCfg.HTTPClient = &http.Client{
			Transport: headerTransport{rt: http.DefaultTransport, headers: h},
		}
	}
	return &GatewayClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Complete sends one user-role message and returns the first choice's
// content. A single attempt is made per call.
func (c *GatewayClient) Complete(ctx context.Context, message string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrGatewayError)
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		}
		return fmt.Errorf("%w: %v", ErrGatewayError, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		}
		return fmt.Errorf("%w: %v", ErrGatewayError, err)
	}
	return fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
}
