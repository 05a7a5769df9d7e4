package analyzer

import (
	"regexp"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/todmy/botcheck/pkg/models"
)

// Canned courtesy and closing formulas, Japanese and English.
var templatePhrases = []string{
	"ご質問ありがとうございます",
	"お問い合わせありがとうございます",
	"承知しました",
	"ご不明点があれば",
	"Let me know if you have any questions",
	"Thank you for your message",
}

var (
	politeEndRE = regexp.MustCompile(`(です|ます|でした|ません|でしょう|ください)$`)

	terminalPunctRE = regexp.MustCompile(`[。！？.!?]$`)
)

var courtesyMarkers = []string{
	"thank you", "please", "regards", "kindly",
}

// StyleAnalyzer scores how template-like the writing is: low vocabulary
// diversity, uniform sentence lengths, canned phrases, rigid emoji habits,
// unwavering politeness and perfect punctuation.
type StyleAnalyzer struct{}

// NewStyleAnalyzer creates a new StyleAnalyzer.
func NewStyleAnalyzer() *StyleAnalyzer {
	return &StyleAnalyzer{}
}

// Analyze returns the style axis score. Weights: ttr 0.25, sentence
// variance 0.20, template 0.20, emoji 0.15, politeness 0.10,
// punctuation 0.10.
func (a *StyleAnalyzer) Analyze(messages []models.Message) AxisResult {
	contents := extractContents(messages, 0)

	details := map[string]float64{}
	if len(contents) < 3 {
		return AxisResult{Score: neutralScore, Details: details}
	}

	ttrScore := a.vocabularyDiversityScore(contents)
	varianceScore := a.sentenceVarianceScore(contents)
	templateScore := a.templatePhraseScore(contents)
	emojiScore := a.emojiPatternScore(contents)
	politenessScore := a.politenessConsistencyScore(contents)
	punctuationScore := a.punctuationScore(contents)

	score := clamp(ttrScore*0.25 + varianceScore*0.20 + templateScore*0.20 +
		emojiScore*0.15 + politenessScore*0.10 + punctuationScore*0.10)

	details["vocabulary_diversity"] = round2(ttrScore)
	details["sentence_length_variance"] = round2(varianceScore)
	details["template_phrases"] = round2(templateScore)
	details["emoji_pattern"] = round2(emojiScore)
	details["politeness_consistency"] = round2(politenessScore)
	details["punctuation"] = round2(punctuationScore)

	return AxisResult{Score: score, Details: details}
}

// vocabularyDiversityScore inverts the type-token ratio: a narrow
// vocabulary reads as canned output.
func (a *StyleAnalyzer) vocabularyDiversityScore(contents []string) float64 {
	var tokens []string
	for _, content := range contents {
		tokens = append(tokens, tokenize(content)...)
	}

	if len(tokens) < 20 {
		return neutralScore
	}

	unique := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		unique[tok] = struct{}{}
	}
	ttr := float64(len(unique)) / float64(len(tokens))

	normalized := ttr / 0.6
	if normalized > 1 {
		normalized = 1
	}
	return clamp((1 - normalized) * 100)
}

// sentenceVarianceScore scores the coefficient of variation of sentence
// token counts; uniform lengths are template-like.
func (a *StyleAnalyzer) sentenceVarianceScore(contents []string) float64 {
	var lengths []float64
	for _, content := range contents {
		for _, sentence := range splitSentences(content) {
			lengths = append(lengths, float64(len(tokenize(sentence))))
		}
	}

	if len(lengths) < 8 {
		return neutralScore
	}

	cv, ok := coefficientOfVariation(lengths)
	if !ok {
		return neutralScore
	}
	if cv > 1.2 {
		cv = 1.2
	}
	return clamp(100 * (1 - cv/1.2))
}

// templatePhraseScore is the fraction of messages containing a canned phrase.
func (a *StyleAnalyzer) templatePhraseScore(contents []string) float64 {
	if len(contents) == 0 {
		return neutralScore
	}

	hits := 0
	for _, content := range contents {
		for _, phrase := range templatePhrases {
			if strings.Contains(content, phrase) {
				hits++
				break
			}
		}
	}

	ratio := float64(hits) / float64(len(contents))
	return clamp(ratio * 100)
}

// emojiPatternScore scores uniformity of per-message emoji usage. Total
// absence is a weak bot-leaning baseline rather than a human signal.
func (a *StyleAnalyzer) emojiPatternScore(contents []string) float64 {
	if len(contents) < 5 {
		return 45.0
	}

	var nonZero []float64
	for _, content := range contents {
		if n := countEmoji(content); n > 0 {
			nonZero = append(nonZero, float64(n))
		}
	}

	if len(nonZero) == 0 {
		return 55.0
	}

	mean := stat.Mean(nonZero, nil)
	std := 0.0
	if len(nonZero) > 1 {
		std = popStdDev(nonZero)
	}

	ratio := std / (mean + 1e-6)
	if ratio > 1 {
		ratio = 1
	}
	return clamp(100 * (1 - ratio))
}

// politenessConsistencyScore checks how uniformly sentences carry courtesy
// markers (polite Japanese endings or English courtesy phrases). Near-total
// consistency is bot-like; mixed registers are human-typical.
func (a *StyleAnalyzer) politenessConsistencyScore(contents []string) float64 {
	var sentences []string
	for _, content := range contents {
		sentences = append(sentences, splitSentences(content)...)
	}
	if len(sentences) < 5 {
		return 45.0
	}

	hits := 0
	for _, sentence := range sentences {
		if politeEndRE.MatchString(sentence) || containsCourtesy(sentence) {
			hits++
		}
	}

	ratio := float64(hits) / float64(len(sentences))
	switch {
	case ratio > 0.8:
		return clamp(70 + (ratio-0.8)*150)
	case ratio > 0.4:
		return 45.0
	default:
		return 25.0
	}
}

// punctuationScore checks terminal punctuation habits per message. Perfect
// punctuation on every message is bot-like; a mixed habit is human-typical.
func (a *StyleAnalyzer) punctuationScore(contents []string) float64 {
	if len(contents) < 5 {
		return 45.0
	}

	hits := 0
	for _, content := range contents {
		if terminalPunctRE.MatchString(content) {
			hits++
		}
	}
	ratio := float64(hits) / float64(len(contents))

	switch {
	case ratio == 1:
		return 85.0
	case ratio >= 0.8:
		return 65.0
	case ratio > 0.2:
		return 25.0
	default:
		return 40.0 // uniform absence, weak signal
	}
}

func containsCourtesy(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, marker := range courtesyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
