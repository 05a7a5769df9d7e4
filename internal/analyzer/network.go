package analyzer

import (
	"github.com/todmy/botcheck/pkg/models"
)

// NetworkAnalyzer scores the mention graph around one target identity:
// reciprocity, balance of mentions sent and received, interaction breadth
// across channels, and isolation.
type NetworkAnalyzer struct {
	minMessages int
}

// NewNetworkAnalyzer creates a new NetworkAnalyzer.
func NewNetworkAnalyzer() *NetworkAnalyzer {
	return &NetworkAnalyzer{minMessages: 5}
}

// Analyze scores the network axis relative to targetUserID. An empty target
// falls back to the most frequent author in the batch. Weights:
// reciprocity 0.30, balance 0.25, channel relations 0.20, isolation 0.25.
func (a *NetworkAnalyzer) Analyze(messages []models.Message, targetUserID string) AxisResult {
	details := map[string]float64{}
	if len(messages) < a.minMessages {
		return AxisResult{Score: neutralScore, Details: details}
	}

	if targetUserID == "" {
		targetUserID = InferTargetUser(messages)
	}
	if targetUserID == "" {
		return AxisResult{Score: neutralScore, Details: details}
	}

	reciprocityScore := a.reciprocityScore(messages, targetUserID)
	balanceScore := a.mentionBalanceScore(messages, targetUserID)
	channelScore := a.channelRelationsScore(messages, targetUserID)
	isolationScore := a.isolationScore(messages, targetUserID)

	score := clamp(reciprocityScore*0.30 + balanceScore*0.25 +
		channelScore*0.20 + isolationScore*0.25)

	details["reciprocity"] = round2(reciprocityScore)
	details["mention_balance"] = round2(balanceScore)
	details["channel_relations"] = round2(channelScore)
	details["isolation"] = round2(isolationScore)

	return AxisResult{Score: score, Details: details}
}

// reciprocityScore compares who the target mentions against who mentions
// the target back. Mutual contacts are a human signal.
func (a *NetworkAnalyzer) reciprocityScore(messages []models.Message, target string) float64 {
	sentTo := make(map[string]struct{})
	receivedFrom := make(map[string]struct{})

	for _, msg := range messages {
		if len(msg.Mentions) == 0 {
			continue
		}
		if msg.AuthorID == target {
			for _, mid := range msg.Mentions {
				if mid != "" {
					sentTo[mid] = struct{}{}
				}
			}
		} else if containsID(msg.Mentions, target) {
			if msg.AuthorID != "" {
				receivedFrom[msg.AuthorID] = struct{}{}
			}
		}
	}

	if len(sentTo) == 0 && len(receivedFrom) == 0 {
		return 60.0 // no mention activity at all
	}

	mutual := 0
	union := make(map[string]struct{}, len(sentTo)+len(receivedFrom))
	for id := range sentTo {
		union[id] = struct{}{}
		if _, ok := receivedFrom[id]; ok {
			mutual++
		}
	}
	for id := range receivedFrom {
		union[id] = struct{}{}
	}

	if len(union) == 0 {
		return 60.0
	}
	mutualRatio := float64(mutual) / float64(len(union))

	switch {
	case mutualRatio > 0.5:
		return clamp(10 + (1-mutualRatio)*40)
	case mutualRatio > 0.2:
		return 45.0
	default:
		return clamp(65 + (0.2-mutualRatio)*175)
	}
}

// mentionBalanceScore compares mention volume sent versus received.
// One-sided mentioning is bot-like.
func (a *NetworkAnalyzer) mentionBalanceScore(messages []models.Message, target string) float64 {
	sent := 0
	received := 0

	for _, msg := range messages {
		if len(msg.Mentions) == 0 {
			continue
		}
		if msg.AuthorID == target {
			sent += len(msg.Mentions)
		}
		if containsID(msg.Mentions, target) {
			received++
		}
	}

	if sent+received == 0 {
		return 55.0
	}
	if received == 0 && sent > 0 {
		return 80.0
	}
	if sent == 0 && received > 0 {
		return 65.0
	}

	minCount, maxCount := sent, received
	if minCount > maxCount {
		minCount, maxCount = maxCount, minCount
	}
	balance := float64(minCount) / float64(maxCount)

	if balance > 0.5 {
		return clamp(15 + (1-balance)*40)
	}
	return clamp(50 + (0.5-balance)*100)
}

// channelRelationsScore is the fraction of the target's active channels in
// which it also produces mentions.
func (a *NetworkAnalyzer) channelRelationsScore(messages []models.Message, target string) float64 {
	activeChannels := make(map[string]struct{})
	interactionChannels := make(map[string]struct{})

	for _, msg := range messages {
		if msg.AuthorID != target || msg.ChannelID == "" {
			continue
		}
		activeChannels[msg.ChannelID] = struct{}{}
		if len(msg.Mentions) > 0 {
			interactionChannels[msg.ChannelID] = struct{}{}
		}
	}

	if len(activeChannels) == 0 {
		return neutralScore
	}
	if len(activeChannels) == 1 {
		return 65.0
	}

	ratio := float64(len(interactionChannels)) / float64(len(activeChannels))
	if ratio > 0.5 {
		return clamp(15 + (1-ratio)*30)
	}
	return clamp(50 + (0.5-ratio)*60)
}

// isolationScore relates the number of distinct interaction partners to the
// target's own message volume. Full isolation is strongly bot-like.
func (a *NetworkAnalyzer) isolationScore(messages []models.Message, target string) float64 {
	interacted := make(map[string]struct{})
	targetMessages := 0

	for _, msg := range messages {
		if msg.AuthorID == target {
			targetMessages++
			for _, mid := range msg.Mentions {
				if mid != "" {
					interacted[mid] = struct{}{}
				}
			}
		} else if containsID(msg.Mentions, target) {
			if msg.AuthorID != "" {
				interacted[msg.AuthorID] = struct{}{}
			}
		}
	}

	if targetMessages == 0 {
		return neutralScore
	}
	if len(interacted) == 0 {
		return 85.0
	}

	density := float64(len(interacted)) / float64(targetMessages)
	switch {
	case density > 0.3:
		return 15.0
	case density > 0.1:
		return 35.0
	default:
		return clamp(60 + (0.1-density)*250)
	}
}

// InferTargetUser returns the most frequent author in the batch.
func InferTargetUser(messages []models.Message) string {
	counts := make(map[string]int)
	for _, msg := range messages {
		if msg.AuthorID != "" {
			counts[msg.AuthorID]++
		}
	}

	best := ""
	bestCount := 0
	for id, c := range counts {
		if c > bestCount {
			best, bestCount = id, c
		}
	}
	return best
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
