package translate

import (
	"context"
	"fmt"
)

// RemoteTranslator sends one text plus a language-pair-specific instruction
// to a remote general-purpose text service and returns the translated text.
type RemoteTranslator interface {
	TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Provider selects the remote text service backing the fallback path.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// NewRemoteTranslator creates the fallback translator for the provider.
func NewRemoteTranslator(ctx context.Context, provider Provider, apiKey, model string) (RemoteTranslator, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAITranslator(apiKey, model)
	case ProviderAnthropic:
		return NewAnthropicTranslator(apiKey, model)
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}
