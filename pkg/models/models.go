package models

import (
	"time"
)

// Message is a single collected chat message. Messages are produced by an
// external collector, consumed read-only by the analyzers, and discarded
// after scoring.
type Message struct {
	Content           string     `json:"content"`
	CreatedAt         *int64     `json:"created_at,omitempty"` // unix seconds
	AuthorID          string     `json:"author_id,omitempty"`
	ChannelID         string     `json:"channel_id,omitempty"`
	Mentions          []string   `json:"mentions,omitempty"`
	Reactions         []Reaction `json:"reactions,omitempty"`
	IsReply           bool       `json:"is_reply,omitempty"`
	ReplyDelaySeconds *float64   `json:"reply_delay_seconds,omitempty"`
	IsEdited          bool       `json:"is_edited,omitempty"`
}

// Reaction is a single reaction event attached to a message.
type Reaction struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count,omitempty"`
}

// Profile holds optional account metadata supplied once per analysis call.
type Profile struct {
	CreatedAt     *int64 `json:"created_at,omitempty"` // unix seconds
	Avatar        string `json:"avatar,omitempty"`
	Username      string `json:"username,omitempty"`
	Status        string `json:"status,omitempty"`
	HasActivities bool   `json:"has_activities,omitempty"`
	CustomStatus  string `json:"custom_status,omitempty"`
}

// Empty reports whether the profile carries no usable signal.
func (p *Profile) Empty() bool {
	if p == nil {
		return true
	}
	return p.CreatedAt == nil && p.Avatar == "" && p.Username == "" &&
		p.Status == "" && !p.HasActivities && p.CustomStatus == ""
}

// AnalysisResult is the composite output of one engine call. It is created
// fresh per call and never mutated afterwards; ownership passes to the caller.
type AnalysisResult struct {
	TotalScore    float64                       `json:"total_score"`
	TimingScore   float64                       `json:"timing_score"`
	StyleScore    float64                       `json:"style_score"`
	BehaviorScore float64                       `json:"behavior_score"`
	AIScore       float64                       `json:"ai_score"`
	ProfileScore  float64                       `json:"profile_score"`
	NetworkScore  float64                       `json:"network_score"`
	Confidence    float64                       `json:"confidence"`
	MessageCount  int                           `json:"message_count"`
	UserID        string                        `json:"user_id,omitempty"`
	AnalyzedAt    time.Time                     `json:"analyzed_at"`
	PeriodHours   float64                       `json:"analysis_period_hours"`
	Details       map[string]map[string]float64 `json:"details,omitempty"`
}

// Score is one persisted row of the append-only score history.
type Score struct {
	ID            string    `json:"id"`
	GuildID       string    `json:"guild_id"`
	UserID        string    `json:"user_id"`
	TotalScore    float64   `json:"total_score"`
	TimingScore   float64   `json:"timing_score"`
	StyleScore    float64   `json:"style_score"`
	BehaviorScore float64   `json:"behavior_score"`
	AIScore       float64   `json:"ai_score"`
	ProfileScore  float64   `json:"profile_score"`
	NetworkScore  float64   `json:"network_score"`
	Confidence    float64   `json:"confidence"`
	SampleSize    int       `json:"sample_size"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}

// SuspiciousUser is one entry of the stats leaderboard, ranked by latest
// total score.
type SuspiciousUser struct {
	UserID     string    `json:"user_id"`
	GuildID    string    `json:"guild_id"`
	Score      float64   `json:"score"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Stats summarizes the whole score history.
type Stats struct {
	TotalUsers    int              `json:"total_users"`
	TotalAnalyses int              `json:"total_analyses"`
	AverageScore  *float64         `json:"avg_score"`
	TopSuspicious []SuspiciousUser `json:"top_suspicious"`
}
