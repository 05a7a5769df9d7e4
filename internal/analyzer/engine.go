package analyzer

import (
	"context"
	"time"

	"github.com/todmy/botcheck/pkg/models"
)

// Axis names recognized by the engine.
const (
	AxisTiming   = "timing"
	AxisStyle    = "style"
	AxisBehavior = "behavior"
	AxisAI       = "ai"
	AxisProfile  = "profile"
	AxisNetwork  = "network"
)

// Weights maps axis names to non-negative weights. Weights are normalized
// before use; they are never persisted by the engine.
type Weights map[string]float64

// DefaultWeights returns the default axis weighting.
func DefaultWeights() Weights {
	return Weights{
		AxisTiming:   0.20,
		AxisStyle:    0.20,
		AxisBehavior: 0.20,
		AxisAI:       0.15,
		AxisProfile:  0.15,
		AxisNetwork:  0.10,
	}
}

// normalizeWeights merges recognized non-negative entries over the defaults
// and renormalizes to sum 1. A non-positive sum reverts to the defaults.
func normalizeWeights(w Weights) Weights {
	merged := DefaultWeights()
	for axis, value := range w {
		if _, recognized := merged[axis]; recognized && value >= 0 {
			merged[axis] = value
		}
	}

	var sum float64
	for _, v := range merged {
		sum += v
	}
	if sum <= 0 {
		merged = DefaultWeights()
		sum = 0
		for _, v := range merged {
			sum += v
		}
	}

	for axis := range merged {
		merged[axis] /= sum
	}
	return merged
}

// EngineConfig configures the analysis engine.
type EngineConfig struct {
	// Scorer is an optional external model for the AI axis.
	Scorer TextScorer
}

// Engine runs all six analyzers and combines their sub-scores into one
// composite bot-likelihood result. It holds no mutable state; one instance
// is safe for concurrent use.
type Engine struct {
	timing   *TimingAnalyzer
	style    *StyleAnalyzer
	behavior *BehaviorAnalyzer
	ai       *AIDetector
	profile  *ProfileAnalyzer
	network  *NetworkAnalyzer
	now      func() time.Time
}

// NewEngine creates a new analysis engine.
func NewEngine(config EngineConfig) *Engine {
	aiConfig := DefaultAIDetectorConfig()
	aiConfig.Scorer = config.Scorer

	return &Engine{
		timing:   NewTimingAnalyzer(),
		style:    NewStyleAnalyzer(),
		behavior: NewBehaviorAnalyzer(),
		ai:       NewAIDetector(aiConfig),
		profile:  NewProfileAnalyzer(),
		network:  NewNetworkAnalyzer(),
		now:      time.Now,
	}
}

// Analyze scores a message batch with optional profile metadata and weight
// overrides. It never fails on sparse data: a message missing a field only
// degrades the affected sub-score to its neutral default.
func (e *Engine) Analyze(ctx context.Context, messages []models.Message, profile *models.Profile, weights Weights) *models.AnalysisResult {
	if len(messages) == 0 {
		return e.emptyResult()
	}

	timing := e.timing.Analyze(messages)
	style := e.style.Analyze(messages)
	behavior := e.behavior.Analyze(messages)
	ai := e.ai.Analyze(ctx, messages)
	profileResult := e.profile.Analyze(profile)
	network := e.network.Analyze(messages, "")

	w := normalizeWeights(weights)
	total := clamp(timing.Score*w[AxisTiming] +
		style.Score*w[AxisStyle] +
		behavior.Score*w[AxisBehavior] +
		ai.Score*w[AxisAI] +
		profileResult.Score*w[AxisProfile] +
		network.Score*w[AxisNetwork])

	timestamps := extractTimestamps(messages)
	periodHours := 0.0
	if len(timestamps) >= 2 {
		periodHours = float64(timestamps[len(timestamps)-1]-timestamps[0]) / 3600
	}

	return &models.AnalysisResult{
		TotalScore:    round2(total),
		TimingScore:   round2(timing.Score),
		StyleScore:    round2(style.Score),
		BehaviorScore: round2(behavior.Score),
		AIScore:       round2(ai.Score),
		ProfileScore:  round2(profileResult.Score),
		NetworkScore:  round2(network.Score),
		Confidence:    round2(Confidence(len(messages))),
		MessageCount:  len(messages),
		UserID:        firstAuthorID(messages),
		AnalyzedAt:    e.now(),
		PeriodHours:   round2(periodHours),
		Details: map[string]map[string]float64{
			AxisTiming:   timing.Details,
			AxisStyle:    style.Details,
			AxisBehavior: behavior.Details,
			AxisAI:       ai.Details,
			AxisProfile:  profileResult.Details,
			AxisNetwork:  network.Details,
		},
	}
}

// Confidence maps sample size onto [0,100]: 80% at 20 messages, 90% at 50,
// saturating at 100 messages. Non-decreasing in the count.
func Confidence(messageCount int) float64 {
	n := float64(messageCount)
	switch {
	case messageCount <= 0:
		return 0
	case messageCount >= 100:
		return 100
	case messageCount >= 50:
		return 90 + (n-50)*0.2
	case messageCount >= 20:
		return 80 + (n-20)*(10.0/30.0)
	default:
		return n * 4
	}
}

// emptyResult is the documented zero-message contract: every axis neutral,
// zero confidence.
func (e *Engine) emptyResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		TotalScore:    neutralScore,
		TimingScore:   neutralScore,
		StyleScore:    neutralScore,
		BehaviorScore: neutralScore,
		AIScore:       neutralScore,
		ProfileScore:  neutralScore,
		NetworkScore:  neutralScore,
		Confidence:    0,
		MessageCount:  0,
		AnalyzedAt:    e.now(),
		Details:       map[string]map[string]float64{},
	}
}

func firstAuthorID(messages []models.Message) string {
	for _, msg := range messages {
		if msg.AuthorID != "" {
			return msg.AuthorID
		}
	}
	return ""
}
