package analyzer

import (
	"strings"

	"github.com/todmy/botcheck/pkg/models"
)

// BehaviorAnalyzer scores interaction habits: who gets mentioned, where the
// account posts, whether it ever edits or reacts, and whether it behaves
// identically across channels.
type BehaviorAnalyzer struct{}

// NewBehaviorAnalyzer creates a new BehaviorAnalyzer.
func NewBehaviorAnalyzer() *BehaviorAnalyzer {
	return &BehaviorAnalyzer{}
}

// Analyze returns the behavior axis score. Weights: mention 0.20,
// channel 0.20, edit 0.15, reaction 0.15, context 0.15, consistency 0.15.
func (a *BehaviorAnalyzer) Analyze(messages []models.Message) AxisResult {
	details := map[string]float64{}
	if len(messages) < 5 {
		return AxisResult{Score: neutralScore, Details: details}
	}

	mentionScore := a.mentionConcentrationScore(messages)
	channelScore := a.channelUsageScore(messages)
	editScore := a.editFrequencyScore(messages)
	reactionScore := a.reactionUsageScore(messages)
	contextScore := a.conversationContextScore(messages)
	consistencyScore := a.crossChannelConsistencyScore(messages)

	score := clamp(mentionScore*0.20 + channelScore*0.20 + editScore*0.15 +
		reactionScore*0.15 + contextScore*0.15 + consistencyScore*0.15)

	details["mention_concentration"] = round2(mentionScore)
	details["channel_usage"] = round2(channelScore)
	details["edit_frequency"] = round2(editScore)
	details["reaction_usage"] = round2(reactionScore)
	details["conversation_context"] = round2(contextScore)
	details["cross_channel_consistency"] = round2(consistencyScore)

	return AxisResult{Score: score, Details: details}
}

// mentionConcentrationScore measures how concentrated outgoing mentions are
// on a single target. No external references at all is atypical and leans
// bot rather than neutral.
func (a *BehaviorAnalyzer) mentionConcentrationScore(messages []models.Message) float64 {
	counts := make(map[string]int)
	total := 0
	for _, msg := range messages {
		for _, target := range msg.Mentions {
			if target == "" {
				continue
			}
			counts[target]++
			total++
		}
	}

	if total == 0 {
		return 60.0
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	share := float64(maxCount) / float64(total)

	switch {
	case share > 0.8:
		return clamp(80 + (share-0.8)*100)
	case share > 0.5:
		return clamp(40 + (share-0.5)*133.3)
	default:
		return clamp(share / 0.5 * 40)
	}
}

// channelUsageScore scores the entropy of the channel distribution.
// Concentrating in one or two channels is bot-like.
func (a *BehaviorAnalyzer) channelUsageScore(messages []models.Message) float64 {
	channelCounts := make(map[string]int)
	total := 0
	for _, msg := range messages {
		if msg.ChannelID == "" {
			continue
		}
		channelCounts[msg.ChannelID]++
		total++
	}

	if total < 5 {
		return neutralScore
	}
	if len(channelCounts) == 1 {
		return 75.0
	}

	counts := make([]float64, 0, len(channelCounts))
	for _, c := range channelCounts {
		counts = append(counts, float64(c))
	}

	normalized := normalizedEntropy(counts, len(channelCounts))
	return clamp((1 - normalized) * 100)
}

// editFrequencyScore scores the edited-message ratio. Zero edits is
// suspicious; the 5-20% human correction band scores lowest.
func (a *BehaviorAnalyzer) editFrequencyScore(messages []models.Message) float64 {
	edited := 0
	for _, msg := range messages {
		if msg.IsEdited {
			edited++
		}
	}
	ratio := float64(edited) / float64(len(messages))

	switch {
	case ratio == 0:
		return 75.0
	case ratio < 0.05:
		return clamp(75 - ratio/0.05*55)
	case ratio <= 0.20:
		return 20.0
	default:
		return 45.0
	}
}

// reactionUsageScore scores the share of messages with at least one
// reaction. A single emoji type used over and over is a pattern-poverty
// signal on top.
func (a *BehaviorAnalyzer) reactionUsageScore(messages []models.Message) float64 {
	reacted := 0
	emojiTypes := make(map[string]struct{})
	for _, msg := range messages {
		if len(msg.Reactions) == 0 {
			continue
		}
		reacted++
		for _, r := range msg.Reactions {
			if r.Emoji != "" {
				emojiTypes[r.Emoji] = struct{}{}
			}
		}
	}
	ratio := float64(reacted) / float64(len(messages))

	var score float64
	switch {
	case ratio == 0:
		score = 80.0
	case ratio < 0.05:
		score = clamp(80 - ratio/0.05*60)
	case ratio <= 0.5:
		score = 20.0
	default:
		score = 35.0
	}

	// Non-trivial reaction volume with a single emoji type everywhere.
	if reacted >= 5 && len(emojiTypes) <= 1 && score < 70 {
		score = 70.0
	}
	return score
}

// conversationContextScore detects canned replies, and context breaks where
// a canned reply immediately follows a question.
func (a *BehaviorAnalyzer) conversationContextScore(messages []models.Message) float64 {
	if len(messages) < 10 {
		return neutralScore
	}

	canned := 0
	breaks := 0
	for i, msg := range messages {
		if !isCannedReply(msg.Content) {
			continue
		}
		canned++
		if i > 0 && containsQuestion(messages[i-1].Content) {
			breaks++
		}
	}

	cannedRatio := float64(canned) / float64(len(messages))
	breakComponent := float64(breaks) / 3.0
	if breakComponent > 1 {
		breakComponent = 1
	}

	return clamp(cannedRatio*60 + breakComponent*40)
}

// crossChannelConsistencyScore compares per-channel content sets. The same
// canned behavior in every channel is bot-like.
func (a *BehaviorAnalyzer) crossChannelConsistencyScore(messages []models.Message) float64 {
	byChannel := make(map[string][]string)
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if msg.ChannelID == "" || content == "" {
			continue
		}
		byChannel[msg.ChannelID] = append(byChannel[msg.ChannelID], content)
	}

	var active [][]string
	for _, contents := range byChannel {
		if len(contents) >= 3 {
			active = append(active, contents)
		}
	}
	if len(active) < 2 {
		return neutralScore
	}

	var total float64
	pairs := 0
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			total += channelSimilarity(active[i], active[j])
			pairs++
		}
	}

	return clamp(total / float64(pairs) * 100)
}

// channelSimilarity combines average-length similarity with the exact-string
// overlap ratio of two channels' contents.
func channelSimilarity(a, b []string) float64 {
	avgA := averageLength(a)
	avgB := averageLength(b)
	maxAvg := avgA
	if avgB > maxAvg {
		maxAvg = avgB
	}

	lengthSim := 1.0
	if maxAvg > 0 {
		diff := avgA - avgB
		if diff < 0 {
			diff = -diff
		}
		lengthSim = 1 - diff/maxAvg
	}

	setA := toSet(a)
	setB := toSet(b)
	smaller := len(setA)
	if len(setB) < smaller {
		smaller = len(setB)
	}

	overlap := 0.0
	if smaller > 0 {
		shared := 0
		for s := range setA {
			if _, ok := setB[s]; ok {
				shared++
			}
		}
		overlap = float64(shared) / float64(smaller)
	}

	return lengthSim*0.4 + overlap*0.6
}

func averageLength(contents []string) float64 {
	if len(contents) == 0 {
		return 0
	}
	total := 0
	for _, c := range contents {
		total += len([]rune(c))
	}
	return float64(total) / float64(len(contents))
}

func toSet(contents []string) map[string]struct{} {
	set := make(map[string]struct{}, len(contents))
	for _, c := range contents {
		set[c] = struct{}{}
	}
	return set
}

func isCannedReply(content string) bool {
	for _, phrase := range templatePhrases {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}

func containsQuestion(content string) bool {
	return strings.Contains(content, "?") || strings.Contains(content, "？")
}
