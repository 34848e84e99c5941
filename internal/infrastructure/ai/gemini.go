// Package ai talks to hosted text generation models.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/royale/pos/internal/application/advisor"
	"github.com/royale/pos/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type disabledError struct{}

func (disabledError) Error() string  { return "ai: no API key configured" }
func (disabledError) Disabled() bool { return true }

// ErrDisabled is returned by a client built without an API key
var ErrDisabled error = disabledError{}

// ErrRequestFailed wraps transport failures and API error responses
var ErrRequestFailed = errors.New("ai: request failed")

// ErrEmptyPrompt is returned when a prompt carries no messages
var ErrEmptyPrompt = errors.New("ai: prompt has no messages")

// GeminiClient implements advisor.TextGenerator on the Gemini API.
// Advice is a single generateContent call with thinking disabled; chat
// replays the history into a chat session and sends the last message.
type GeminiClient struct {
	client      *genai.Client
	adviceModel string
	chatModel   string
	httpClient  *http.Client
	logger      *zap.Logger
}

var _ advisor.TextGenerator = (*GeminiClient)(nil)

// GeminiOption configures a GeminiClient
type GeminiOption func(*GeminiClient)

// WithHTTPClient replaces the HTTP client, e.g. for instrumentation
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *GeminiClient) {
		g.httpClient = c
	}
}

// NewGeminiClient creates a client from the advisor configuration. A
// missing API key yields a client whose every call fails with ErrDisabled.
func NewGeminiClient(ctx context.Context, cfg *config.AdvisorConfig, logger *zap.Logger, opts ...GeminiOption) (*GeminiClient, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	g := &GeminiClient{
		adviceModel: cfg.AdviceModel,
		chatModel:   cfg.ChatModel,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger.Named("gemini"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if cfg.APIKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ai: failed to create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Enabled reports whether an API key is configured
func (g *GeminiClient) Enabled() bool {
	return g.client != nil
}

// Generate implements advisor.TextGenerator.
func (g *GeminiClient) Generate(ctx context.Context, prompt advisor.Prompt) (string, error) {
	if !g.Enabled() {
		return "", ErrDisabled
	}
	if len(prompt.Messages) == 0 {
		return "", ErrEmptyPrompt
	}

	model := g.chatModel
	genCfg := &genai.GenerateContentConfig{}
	if prompt.Purpose == advisor.PurposeAdvice {
		model = g.adviceModel
		genCfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)}
	}
	if prompt.SystemInstruction != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(prompt.SystemInstruction, genai.RoleUser)
	}

	start := time.Now()
	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if prompt.Purpose == advisor.PurposeAdvice {
		resp, err = g.client.Models.GenerateContent(ctx, model, toContents(prompt.Messages), genCfg)
	} else {
		resp, err = g.chat(ctx, model, genCfg, prompt.Messages)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("ai: %s: %w", model, ctxErr)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrRequestFailed, model, err)
	}

	g.logger.Debug("Generated content",
		zap.String("model", model),
		zap.String("purpose", string(prompt.Purpose)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("candidates", len(resp.Candidates)),
	)
	return resp.Text(), nil
}

func (g *GeminiClient) chat(ctx context.Context, model string, genCfg *genai.GenerateContentConfig, messages []advisor.ChatMessage) (*genai.GenerateContentResponse, error) {
	last := messages[len(messages)-1]
	session, err := g.client.Chats.Create(ctx, model, genCfg, toContents(messages[:len(messages)-1]))
	if err != nil {
		return nil, err
	}
	return session.SendMessage(ctx, genai.Part{Text: last.Text})
}

func toContents(messages []advisor.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		if m.Role == advisor.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	return contents
}
