package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAITranslator implements RemoteTranslator using Chat Completions.
type OpenAITranslator struct {
	client openai.Client
	model  string
}

func NewOpenAITranslator(apiKey, model string, reqOpts ...option.RequestOption) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = "gpt-5-mini"
	}

	opts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, reqOpts...)
	return &OpenAITranslator{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (t *OpenAITranslator) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	completion, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instructionFor(sourceLang, targetLang)),
			openai.UserMessage(text),
		},
		Model: t.model,
	})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	out := strings.TrimSpace(completion.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("no text in OpenAI response")
	}
	return out, nil
}
