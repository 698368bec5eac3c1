package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicTranslator implements RemoteTranslator using Claude.
type AnthropicTranslator struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropicTranslator(apiKey, model string, reqOpts ...option.RequestOption) (*AnthropicTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaudeHaiku4_5
	}

	opts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, reqOpts...)
	return &AnthropicTranslator{
		client: anthropic.NewClient(opts...),
		model:  m,
	}, nil
}

func (t *AnthropicTranslator) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	message, err := t.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     t.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: instructionFor(sourceLang, targetLang)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	if message == nil || len(message.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("no text in Anthropic response")
	}
	return out, nil
}
