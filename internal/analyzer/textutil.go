package analyzer

import (
	"regexp"
	"strings"

	"github.com/todmy/botcheck/pkg/models"
)

var (
	// Tokens are maximal runs of word characters plus Japanese script
	// (Hiragana, Katakana, CJK ideographs).
	tokenRE = regexp.MustCompile(`[\w\x{3040}-\x{30FF}\x{4E00}-\x{9FFF}]+`)

	// Sentence terminators, ASCII and full-width.
	sentenceSplitRE = regexp.MustCompile(`[。！？.!?]+`)

	emojiRE = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}]`)

	japaneseScriptRE = regexp.MustCompile(`[\x{3040}-\x{30FF}\x{4E00}-\x{9FFF}]`)
)

// extractContents returns the trimmed content of each message whose length
// exceeds minLength, in input order, without deduplication.
func extractContents(messages []models.Message, minLength int) []string {
	contents := make([]string, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content != "" && len([]rune(content)) > minLength {
			contents = append(contents, content)
		}
	}
	return contents
}

// tokenize splits text into lowercase tokens.
func tokenize(text string) []string {
	matches := tokenRE.FindAllString(text, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, strings.ToLower(m))
	}
	return tokens
}

// splitSentences splits text on sentence terminators, discarding empties.
func splitSentences(text string) []string {
	parts := sentenceSplitRE.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// countEmoji counts emoji-range code points in text.
func countEmoji(text string) int {
	return len(emojiRE.FindAllString(text, -1))
}

// japaneseRatio returns the fraction of tokens containing Japanese script.
func japaneseRatio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, tok := range tokens {
		if japaneseScriptRE.MatchString(tok) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}
