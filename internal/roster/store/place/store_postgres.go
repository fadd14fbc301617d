package place

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"roster/internal/platform/postgres"
	"roster/internal/roster/models"
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

func (s *PostgresStore) Create(ctx context.Context, name string) (*models.Place, error) {
	p := models.Place{Name: strings.TrimSpace(name)}
	var pid int64
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`INSERT INTO places (name) VALUES ($1) RETURNING id`, p.Name).Scan(&pid)
	if _, ok := postgres.UniqueViolation(err); ok {
		return nil, fmt.Errorf("create place: %w", sentinel.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create place: %w", err)
	}
	p.ID = id.PlaceID(pid)
	return &p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Place, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `SELECT id, name FROM places ORDER BY lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	defer rows.Close()

	out := []models.Place{}
	for rows.Next() {
		var (
			p   models.Place
			pid int64
		)
		if err := rows.Scan(&pid, &p.Name); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		p.ID = id.PlaceID(pid)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, placeID id.PlaceID) (*models.Place, error) {
	var (
		p   models.Place
		pid int64
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name FROM places WHERE id = $1`, int64(placeID)).Scan(&pid, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find place: %w", err)
	}
	p.ID = id.PlaceID(pid)
	return &p, nil
}
