package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresRepository implements OperatorRepository using PostgreSQL
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new operator into the database
func (r *PostgresRepository) Create(ctx context.Context, operator *Operator) error {
	operator.ID = uuid.New().String()

	query := `
		INSERT INTO operators (id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		operator.ID,
		operator.Username,
		operator.PasswordHash,
		operator.CreatedAt,
		operator.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}

	return nil
}

// GetByID retrieves an operator by their ID
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Operator, error) {
	query := `
		SELECT id, username, password_hash, created_at, updated_at
		FROM operators
		WHERE id = $1
	`

	operator := &Operator{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&operator.ID,
		&operator.Username,
		&operator.PasswordHash,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to get operator by ID: %w", err)
	}

	return operator, nil
}

// GetByUsername retrieves an operator by their username
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Operator, error) {
	query := `
		SELECT id, username, password_hash, created_at, updated_at
		FROM operators
		WHERE username = $1
	`

	operator := &Operator{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&operator.ID,
		&operator.Username,
		&operator.PasswordHash,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to get operator by username: %w", err)
	}

	return operator, nil
}
