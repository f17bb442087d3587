package translator

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Delimiter separates text segments inside one batched prompt. The model
// must echo it back unchanged; the segment count check depends on it.
const Delimiter = "|||"

// DefaultSystemPrompt is written to the prompt file when none exists, so
// users can inspect and tune it between runs.
const DefaultSystemPrompt = `You are a professional translator for business documents.

Rules:
- Translate every segment accurately and naturally.
- Segments are separated by "|||". Return exactly the same number of segments, separated by "|||", in the same order.
- Never merge, split, drop or reorder segments.
- Keep numbers, dates, product names, file names, URLs and placeholders unchanged.
- Match the register of workplace documents: clear and concise.
- Return only the translated segments. No explanations, no quotes, no numbering.`

// LoadSystemPrompt reads the system prompt from the given file. A missing
// file is recreated with the default content rather than treated as an
// error, so a deleted prompt file heals itself on the next run.
func LoadSystemPrompt(path string, log *zap.Logger) string {
	data, err := os.ReadFile(path)
	if err == nil && strings.TrimSpace(string(data)) != "" {
		return string(data)
	}

	if os.IsNotExist(err) {
		if writeErr := os.WriteFile(path, []byte(DefaultSystemPrompt), 0o644); writeErr != nil {
			log.Warn("could not create system prompt file",
				zap.String("path", path),
				zap.Error(writeErr))
		} else {
			log.Info("created default system prompt file", zap.String("path", path))
		}
	} else if err != nil {
		log.Warn("could not read system prompt file, using built-in default",
			zap.String("path", path),
			zap.Error(err))
	}

	return DefaultSystemPrompt
}

// LanguageName resolves a BCP 47 code like "ja" or "vi" to its English
// display name for use in the instruction prompt.
func LanguageName(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("unknown target language %q: %w", code, err)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return "", fmt.Errorf("unknown target language %q", code)
	}
	return name, nil
}

// userPrompt builds the per-batch instruction around the joined segments.
func userPrompt(languageName, joined string) string {
	return fmt.Sprintf(
		"Translate the following text to %s, keeping segments separated by %q:\n\n%s",
		languageName, Delimiter, joined)
}
