package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"roster/internal/identity"
	"roster/internal/platform/postgres"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
	txcontext "roster/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const identityColumns = `id, email, password_hash, confirmed, banned, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, i *identity.Identity) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO identities (`+identityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(i.ID), i.Email, string(i.PasswordHash), i.Confirmed, i.Banned, i.CreatedAt, i.UpdatedAt)
	if _, ok := postgres.UniqueViolation(err); ok {
		return fmt.Errorf("insert identity: %w", sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, i *identity.Identity) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE identities
		SET email = $2, password_hash = $3, confirmed = $4, banned = $5, updated_at = $6
		WHERE id = $1
	`, uuid.UUID(i.ID), i.Email, string(i.PasswordHash), i.Confirmed, i.Banned, i.UpdatedAt)
	if _, ok := postgres.UniqueViolation(err); ok {
		return fmt.Errorf("update identity: %w", sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `DELETE FROM identities WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*identity.Identity, error) {
	return s.findOne(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	return s.findOne(ctx, `SELECT `+identityColumns+` FROM identities WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*identity.Identity, error) {
	var (
		i    identity.Identity
		uid  uuid.UUID
		hash string
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, arg).
		Scan(&uid, &i.Email, &hash, &i.Confirmed, &i.Banned, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	i.ID = id.UserID(uid)
	i.PasswordHash = []byte(hash)
	return &i, nil
}
