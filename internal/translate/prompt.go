package translate

import (
	"fmt"

	"subburn/internal/lang"
)

// instructionFor builds the language-pair-specific system instruction for the
// remote text service. Arabic sources get an enriched prompt; the remote
// service is the preferred path for ar->en and benefits from it.
func instructionFor(sourceLang, targetLang string) string {
	if lang.Normalize(sourceLang) == "ar" {
		return "You are an expert Arabic translator. Translate the following text to " +
			lang.DisplayName(targetLang) + ", maintaining proper context and nuance. " +
			"Preserve any technical terms, names, and numbers exactly as they appear. " +
			"Provide a natural, fluent translation that captures the original meaning accurately."
	}
	return fmt.Sprintf(
		"Translate the following text from %s to %s. Maintain exact meaning, preserve numbers and proper nouns. Reply with the translation only.",
		lang.DisplayName(sourceLang),
		lang.DisplayName(targetLang),
	)
}
