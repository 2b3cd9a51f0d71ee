package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/dashboard-auth/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByEmail returns nil, nil when no user has the given email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id::text, COALESCE(name, ''), email, password_hash,
		       COALESCE(federated_id, ''), COALESCE(avatar_url, ''), created_at, updated_at
		FROM users
		WHERE email = $1
		LIMIT 1;
	`
	row := r.db.QueryRow(ctx, query, email)

	var user domain.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.FederatedID, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, federated_id, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.FederatedID, user.AvatarURL, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return autherror.ErrEmailAlreadyInUse
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE email = $1
	`, email, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return autherror.ErrEmailNotFound
	}
	return nil
}

// LinkFederatedIdentity overwrites the provider subject and avatar on every
// federated login so the stored picture follows the provider.
func (r *PostgresRepository) LinkFederatedIdentity(ctx context.Context, userID, federatedID, avatarURL string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET federated_id = $2, avatar_url = NULLIF($3, ''), updated_at = now()
		WHERE id = $1
	`, userID, federatedID, avatarURL)
	return err
}

func (r *PostgresRepository) RecordLoginAttempt(ctx context.Context, email, ip string, outcome domain.LoginOutcome) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO login_attempts (id, email, ip_address, outcome, attempted_at)
		VALUES (gen_random_uuid(), $1, $2, $3, now())
	`, email, ip, string(outcome))
	return err
}
