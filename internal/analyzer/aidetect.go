package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/todmy/botcheck/pkg/models"
)

var (
	connectiveRE = regexp.MustCompile(`また|さらに|そして|しかし|そのため|なお|一方で|Moreover|Additionally|Therefore|Furthermore`)
)

// TextScorer is an optional external model collaborator. Implementations
// return a bot-likelihood score in [0,100] for the given contents.
type TextScorer interface {
	ScoreText(ctx context.Context, contents []string) (float64, error)
}

// AIDetectorConfig configures the AIDetector.
type AIDetectorConfig struct {
	// Scorer is an optional external model. When nil the detector runs on
	// heuristics alone.
	Scorer TextScorer
	// ExternalWeight is the share of the external score in the final blend.
	ExternalWeight float64
}

// DefaultAIDetectorConfig returns the default configuration.
func DefaultAIDetectorConfig() AIDetectorConfig {
	return AIDetectorConfig{
		ExternalWeight: 0.30,
	}
}

// AIDetector scores how machine-generated the text reads: predictable
// vocabulary, uniform discourse markers, repeated n-grams, uniform sentence
// lengths.
type AIDetector struct {
	config AIDetectorConfig
}

// NewAIDetector creates a new AIDetector.
func NewAIDetector(config AIDetectorConfig) *AIDetector {
	if config.ExternalWeight <= 0 || config.ExternalWeight >= 1 {
		config.ExternalWeight = DefaultAIDetectorConfig().ExternalWeight
	}
	return &AIDetector{config: config}
}

// Analyze returns the AI axis score. Heuristic weights: perplexity 0.35,
// language pattern 0.25, repetition 0.15, sentence uniformity 0.15,
// duplication 0.10. A configured external scorer is mixed in at
// ExternalWeight; scorer failure degrades to the heuristic blend alone.
func (d *AIDetector) Analyze(ctx context.Context, messages []models.Message) AxisResult {
	contents := extractContents(messages, 0)

	details := map[string]float64{}
	if len(contents) < 3 {
		return AxisResult{Score: neutralScore, Details: details}
	}

	perplexityScore := d.pseudoPerplexityScore(contents)
	languageScore := d.languagePatternScore(contents)
	repetitionScore := d.repetitionScore(contents)
	uniformityScore := d.sentenceUniformityScore(contents)
	duplicationScore := d.duplicationScore(contents)

	score := clamp(perplexityScore*0.35 + languageScore*0.25 +
		repetitionScore*0.15 + uniformityScore*0.15 + duplicationScore*0.10)

	details["perplexity"] = round2(perplexityScore)
	details["language_pattern"] = round2(languageScore)
	details["repetition"] = round2(repetitionScore)
	details["sentence_uniformity"] = round2(uniformityScore)
	details["ngram_duplication"] = round2(duplicationScore)

	if d.config.Scorer != nil {
		if external, err := d.config.Scorer.ScoreText(ctx, contents); err == nil {
			external = clamp(external)
			w := d.config.ExternalWeight
			score = clamp(score*(1-w) + external*w)
			details["external_model"] = round2(external)
		}
	}

	return AxisResult{Score: score, Details: details}
}

// pseudoPerplexityScore measures the entropy deficit of the token-frequency
// distribution. A highly predictable vocabulary scores high.
func (d *AIDetector) pseudoPerplexityScore(contents []string) float64 {
	var tokens []string
	for _, content := range contents {
		tokens = append(tokens, tokenize(content)...)
	}

	if len(tokens) < 30 {
		return neutralScore
	}

	counts := make(map[string]int)
	for _, tok := range tokens {
		counts[tok]++
	}

	distinct := len(counts)
	if distinct < 2 {
		distinct = 2
	}
	freqs := make([]float64, 0, len(counts))
	for _, c := range counts {
		freqs = append(freqs, float64(c))
	}

	predictability := 1 - normalizedEntropy(freqs, distinct)
	return clamp(predictability * 100)
}

// languagePatternScore measures discourse-marker density for the dominant
// script: polite-ending consistency for Japanese, courtesy-marker
// consistency for Latin text, plus connective density for both.
func (d *AIDetector) languagePatternScore(contents []string) float64 {
	var sentences []string
	var tokens []string
	for _, content := range contents {
		sentences = append(sentences, splitSentences(content)...)
		tokens = append(tokens, tokenize(content)...)
	}

	if len(sentences) < 5 {
		return 45.0
	}

	japanese := japaneseRatio(tokens) >= 0.5

	markerHits := 0
	for _, sentence := range sentences {
		if japanese {
			if politeEndRE.MatchString(sentence) {
				markerHits++
			}
		} else if containsCourtesy(sentence) {
			markerHits++
		}
	}
	markerRatio := float64(markerHits) / float64(len(sentences))

	connectiveHits := 0
	for _, content := range contents {
		connectiveHits += len(connectiveRE.FindAllString(content, -1))
	}
	avgConnectives := float64(connectiveHits) / float64(len(sentences))

	markerComponent := (markerRatio - 0.4) / 0.5
	if markerComponent < 0 {
		markerComponent = 0
	}
	if markerComponent > 1 {
		markerComponent = 1
	}

	connectiveComponent := avgConnectives / 0.35
	if connectiveComponent > 1 {
		connectiveComponent = 1
	}

	return clamp(markerComponent*60 + connectiveComponent*40)
}

// repetitionScore is the share of trigrams occurring at least three times,
// saturating once that share passes 0.15.
func (d *AIDetector) repetitionScore(contents []string) float64 {
	if len(contents) < 5 {
		return 45.0
	}

	tokens := tokenize(strings.Join(contents, "\n"))
	if len(tokens) < 20 {
		return 45.0
	}

	counts := trigramCounts(tokens)
	if len(counts) == 0 {
		return 45.0
	}

	repeated := 0
	for _, c := range counts {
		if c >= 3 {
			repeated++
		}
	}

	ratio := float64(repeated) / float64(len(counts))
	if ratio > 0.15 {
		ratio = 0.15
	}
	return clamp(ratio / 0.15 * 100)
}

// sentenceUniformityScore scores low coefficient of variation of sentence
// lengths, a hallmark of generated text.
func (d *AIDetector) sentenceUniformityScore(contents []string) float64 {
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

	switch {
	case cv < 0.25:
		return 85.0
	case cv < 0.6:
		return clamp(85 - (cv-0.25)/0.35*55)
	default:
		return 20.0
	}
}

// duplicationScore is the fraction of distinct trigrams that occur more
// than once. Below 0.05 is a strong human signal.
func (d *AIDetector) duplicationScore(contents []string) float64 {
	tokens := tokenize(strings.Join(contents, "\n"))
	if len(tokens) < 20 {
		return 45.0
	}

	counts := trigramCounts(tokens)
	if len(counts) == 0 {
		return 45.0
	}

	duplicated := 0
	for _, c := range counts {
		if c >= 2 {
			duplicated++
		}
	}
	ratio := float64(duplicated) / float64(len(counts))

	switch {
	case ratio < 0.05:
		return 10.0
	case ratio <= 0.15:
		return clamp(10 + (ratio-0.05)/0.10*70)
	default:
		return 85.0
	}
}

func trigramCounts(tokens []string) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+3 <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+3], " ")]++
	}
	return counts
}
