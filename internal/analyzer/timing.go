package analyzer

import (
	"sort"
	"time"

	"github.com/todmy/botcheck/pkg/models"
)

// AxisResult is the output of one scoring axis: a [0,100] score plus its
// sub-component breakdown for explainability.
type AxisResult struct {
	Score   float64
	Details map[string]float64
}

const neutralScore = 50.0

// TimingAnalyzer scores how regular an account's posting rhythm is.
// Constant intervals, instant replies and uniform around-the-clock activity
// all push the score up.
type TimingAnalyzer struct{}

// NewTimingAnalyzer creates a new TimingAnalyzer.
func NewTimingAnalyzer() *TimingAnalyzer {
	return &TimingAnalyzer{}
}

// Analyze returns the timing axis score for a batch of messages.
func (a *TimingAnalyzer) Analyze(messages []models.Message) AxisResult {
	intervalScore := a.intervalRegularityScore(messages)
	replyScore := a.replySpeedScore(messages)
	hoursScore := a.activityHoursScore(messages)

	score := clamp(intervalScore*0.45 + replyScore*0.30 + hoursScore*0.25)

	return AxisResult{
		Score: score,
		Details: map[string]float64{
			"interval_regularity": round2(intervalScore),
			"reply_speed":         round2(replyScore),
			"activity_hours":      round2(hoursScore),
		},
	}
}

// intervalRegularityScore maps the coefficient of variation of consecutive
// posting gaps onto [0,100]; low variability reads as automation.
func (a *TimingAnalyzer) intervalRegularityScore(messages []models.Message) float64 {
	timestamps := extractTimestamps(messages)
	if len(timestamps) < 3 {
		return neutralScore
	}

	var intervals []float64
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i] - timestamps[i-1]
		if gap > 0 {
			intervals = append(intervals, float64(gap))
		}
	}
	if len(intervals) < 2 {
		return neutralScore
	}

	cv, ok := coefficientOfVariation(intervals)
	if !ok {
		return neutralScore
	}

	if cv > 1.5 {
		cv = 1.5
	}
	return clamp(100 * (1 - cv/1.5))
}

// replySpeedScore averages reply latencies. An explicit delay field wins;
// otherwise the gap to the preceding message stands in for it.
func (a *TimingAnalyzer) replySpeedScore(messages []models.Message) float64 {
	var delays []float64

	for i, msg := range messages {
		if !msg.IsReply {
			continue
		}

		if msg.ReplyDelaySeconds != nil && *msg.ReplyDelaySeconds >= 0 {
			delays = append(delays, *msg.ReplyDelaySeconds)
			continue
		}

		if i > 0 && msg.CreatedAt != nil && messages[i-1].CreatedAt != nil {
			delta := float64(*msg.CreatedAt - *messages[i-1].CreatedAt)
			if delta >= 0 {
				delays = append(delays, delta)
			}
		}
	}

	if len(delays) == 0 {
		return 45.0 // no reply evidence
	}

	var sum float64
	for _, d := range delays {
		sum += d
	}
	avg := sum / float64(len(delays))

	switch {
	case avg <= 5:
		return 95.0
	case avg >= 120:
		return 15.0
	default:
		return clamp(95.0 - (avg-5)/115*80.0)
	}
}

// activityHoursScore buckets timestamps by UTC hour-of-day and scores the
// normalized entropy of the distribution. Humans cluster their activity;
// a uniform 24h spread is suspicious.
func (a *TimingAnalyzer) activityHoursScore(messages []models.Message) float64 {
	timestamps := extractTimestamps(messages)
	if len(timestamps) < 10 {
		return neutralScore
	}

	hourCounts := make(map[int]int)
	for _, ts := range timestamps {
		hour := time.Unix(ts, 0).UTC().Hour()
		hourCounts[hour]++
	}

	counts := make([]float64, 0, len(hourCounts))
	for _, c := range hourCounts {
		counts = append(counts, float64(c))
	}

	return clamp(normalizedEntropy(counts, 24) * 100)
}

// extractTimestamps collects the present timestamps, sorted ascending.
func extractTimestamps(messages []models.Message) []int64 {
	timestamps := make([]int64, 0, len(messages))
	for _, msg := range messages {
		if msg.CreatedAt != nil {
			timestamps = append(timestamps, *msg.CreatedAt)
		}
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	return timestamps
}
