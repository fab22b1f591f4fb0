package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"docclassifier/internal/core/domain"
	"docclassifier/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// WithExecutor routes completions through the retry/breaker executor.
func (c *Client) WithExecutor(executor *resilience.Executor) *Client {
	c.executor = executor
	return c
}

// Answerer produces answers about a single document over the chat
// completions API.
type Answerer struct {
	client *Client
}

func NewAnswerer(client *Client) *Answerer {
	return &Answerer{client: client}
}

func (a *Answerer) AskAboutDocument(ctx context.Context, question, documentText, documentType string) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: buildQASystemPrompt(documentType)},
		{Role: "user", Content: buildQAUserPrompt(question, documentText, documentType)},
	}
	return a.client.complete(ctx, messages, "qa")
}

func (a *Answerer) ChatAboutDocument(ctx context.Context, message, documentText, documentType string, history []domain.ChatMessage) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: buildChatSystemPrompt(documentType)},
		{Role: "user", Content: buildChatContextPrompt(documentText, documentType)},
	}
	for _, h := range trimHistory(history) {
		role := h.Role
		if role != "user" && role != "assistant" {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: h.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	return a.client.complete(ctx, messages, "chat")
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) complete(ctx context.Context, messages []chatMessage, operation string) (string, error) {
	request := map[string]any{
		"model":    c.model,
		"messages": messages,
	}

	var response struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/chat/completions", request, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "openai."+operation, call, ClassifyError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", WrapTemporaryIfNeeded("openai "+operation, err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openai %s: empty choices", operation)
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
