package role

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roster/internal/roster/models"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
	txcontext "roster/pkg/platform/tx"
)

// PostgresStore reads and renames roles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Role, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `SELECT id, code, name FROM roles ORDER BY lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var out []models.Role
	for rows.Next() {
		var (
			r    models.Role
			rid  int64
			code string
		)
		if err := rows.Scan(&rid, &code, &r.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		r.ID = id.RoleID(rid)
		r.Code = models.RoleCode(code)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, roleID id.RoleID) (*models.Role, error) {
	return s.findOne(ctx, `SELECT id, code, name FROM roles WHERE id = $1`, int64(roleID))
}

func (s *PostgresStore) FindByCode(ctx context.Context, code models.RoleCode) (*models.Role, error) {
	return s.findOne(ctx, `SELECT id, code, name FROM roles WHERE code = $1`, string(code))
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.Role, error) {
	var (
		r    models.Role
		rid  int64
		code string
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, arg).Scan(&rid, &code, &r.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find role: %w", err)
	}
	r.ID = id.RoleID(rid)
	r.Code = models.RoleCode(code)
	return &r, nil
}

func (s *PostgresStore) Update(ctx context.Context, r *models.Role) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `UPDATE roles SET name = $2 WHERE id = $1`, int64(r.ID), r.Name)
	if err != nil {
		return fmt.Errorf("rename role: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
