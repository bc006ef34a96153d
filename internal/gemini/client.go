// Package gemini wraps the Google Gemini SDK for the ask extension.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/smc242/digtbot/internal/config"
)

// Client generates chat replies.
type Client interface {
	// Reply answers a single question. The reply is plain text suitable
	// for a Discord message.
	Reply(ctx context.Context, question string) (string, error)
}

type sdkClient struct {
	genaiClient *genai.Client
	logger      *slog.Logger
	model       string
	instruction string
	timeout     time.Duration
	maxRetries  int
}

// Safety filtering is left to Discord's own moderation; the API defaults
// block too aggressively for a gaming community's banter.
var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

// NewClient creates a Gemini-backed Client from the given configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Token == "" {
		return nil, errors.New("gemini token is empty")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Token,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &sdkClient{
		genaiClient: gi,
		logger:      logger.With("component", "gemini_client"),
		model:       cfg.Model,
		instruction: cfg.Instruction,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
	}, nil
}

func (c *sdkClient) Reply(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(question, genai.RoleUser)}
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: c.instruction}}},
		SafetySettings:    safetySettings,
	}

	resp, err := c.generateWithRetries(ctx, contents, genCfg)
	if err != nil {
		return "", err
	}
	return c.extractText(resp)
}

// generateWithRetries retries transient server errors (500/503) with a short
// backoff; everything else fails immediately.
func (c *sdkClient) generateWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for attempt := 0; ; attempt++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, c.model, contents, cfg)
		if err == nil {
			return resp, nil
		}

		var apiErr *genai.APIError
		retriable := errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503)
		if !retriable || attempt >= c.maxRetries {
			return nil, fmt.Errorf("gemini request failed: %w", err)
		}

		c.logger.WarnContext(ctx, "Retrying Gemini request after server error",
			"attempt", attempt+1, "code", apiErr.Code)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}
}

func (c *sdkClient) extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("empty response from gemini")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}
