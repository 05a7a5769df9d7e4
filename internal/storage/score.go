package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/todmy/botcheck/pkg/models"
)

// ScoreRepository defines the append-only score history store.
type ScoreRepository interface {
	Create(ctx context.Context, score *models.Score) error
	LatestByUser(ctx context.Context, userID string) (*models.Score, error)
	HistoryByUser(ctx context.Context, userID string, limit int) ([]*models.Score, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// PostgresScoreRepository implements ScoreRepository using PostgreSQL.
type PostgresScoreRepository struct {
	db *sql.DB
}

// NewPostgresScoreRepository creates a new PostgresScoreRepository.
func NewPostgresScoreRepository(db *sql.DB) *PostgresScoreRepository {
	return &PostgresScoreRepository{db: db}
}

// Create appends a score row. Rows are never updated or deleted.
func (r *PostgresScoreRepository) Create(ctx context.Context, score *models.Score) error {
	if score.ID == "" {
		score.ID = uuid.New().String()
	}
	if score.AnalyzedAt.IsZero() {
		score.AnalyzedAt = time.Now()
	}

	query := `
		INSERT INTO scores (id, guild_id, user_id, total_score, timing_score, style_score,
			behavior_score, ai_score, profile_score, network_score, confidence, sample_size, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		score.ID,
		score.GuildID,
		score.UserID,
		score.TotalScore,
		score.TimingScore,
		score.StyleScore,
		score.BehaviorScore,
		score.AIScore,
		score.ProfileScore,
		score.NetworkScore,
		score.Confidence,
		score.SampleSize,
		score.AnalyzedAt,
	)

	return err
}

const scoreColumns = `id, guild_id, user_id, total_score, timing_score, style_score,
	behavior_score, ai_score, profile_score, network_score, confidence, sample_size, analyzed_at`

// LatestByUser returns the most recent score for a user, or nil if the user
// has never been analyzed.
func (r *PostgresScoreRepository) LatestByUser(ctx context.Context, userID string) (*models.Score, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM scores
		WHERE user_id = $1
		ORDER BY analyzed_at DESC
		LIMIT 1
	`

	score, err := scanScore(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return score, nil
}

// HistoryByUser returns up to limit recent scores, newest first.
func (r *PostgresScoreRepository) HistoryByUser(ctx context.Context, userID string, limit int) ([]*models.Score, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := `
		SELECT ` + scoreColumns + `
		FROM scores
		WHERE user_id = $1
		ORDER BY analyzed_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*models.Score
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return scores, nil
}

// Stats aggregates the whole history: distinct users, row count, average
// score and the top-10 suspicious users by their latest score.
func (r *PostgresScoreRepository) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}

	query := `
		SELECT COUNT(DISTINCT user_id), COUNT(*), AVG(total_score)
		FROM scores
	`

	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query).Scan(&stats.TotalUsers, &stats.TotalAnalyses, &avg)
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		rounded := avg.Float64
		stats.AverageScore = &rounded
	}

	topQuery := `
		SELECT s.user_id, s.guild_id, s.total_score, s.analyzed_at
		FROM scores s
		INNER JOIN (
			SELECT user_id, MAX(analyzed_at) AS latest
			FROM scores
			GROUP BY user_id
		) l ON s.user_id = l.user_id AND s.analyzed_at = l.latest
		ORDER BY s.total_score DESC
		LIMIT 10
	`

	rows, err := r.db.QueryContext(ctx, topQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.SuspiciousUser
		if err := rows.Scan(&entry.UserID, &entry.GuildID, &entry.Score, &entry.AnalyzedAt); err != nil {
			return nil, err
		}
		stats.TopSuspicious = append(stats.TopSuspicious, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScore(row rowScanner) (*models.Score, error) {
	score := &models.Score{}
	err := row.Scan(
		&score.ID,
		&score.GuildID,
		&score.UserID,
		&score.TotalScore,
		&score.TimingScore,
		&score.StyleScore,
		&score.BehaviorScore,
		&score.AIScore,
		&score.ProfileScore,
		&score.NetworkScore,
		&score.Confidence,
		&score.SampleSize,
		&score.AnalyzedAt,
	)
	if err != nil {
		return nil, err
	}
	return score, nil
}
