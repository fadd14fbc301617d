package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"roster/internal/platform/postgres"
	"roster/internal/roster/models"
	"roster/internal/roster/store/nationalid"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
	txcontext "roster/pkg/platform/tx"
)

// PostgresStore persists profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const profileColumns = `user_id, email, given_names, family_names, phone, dpi, birth_date,
	sex, role_id, place_id, active, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *models.Profile) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)
		if err := nationalid.Claim(ctx, exec, p.DPI, models.DPIOwnerProfile, p.ID.String()); err != nil {
			return err
		}
		_, err := exec.ExecContext(ctx, `
			INSERT INTO profiles (`+profileColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, uuid.UUID(p.ID), p.Email, p.GivenNames, p.FamilyNames, p.Phone.String(), p.DPI.String(),
			p.BirthDate, string(p.Sex), int64(p.RoleID), int64(p.PlaceID), p.Active, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return translateWriteError("insert profile", err)
		}
		return nil
	})
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Profile) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)

		var oldDPI string
		err := exec.QueryRowContext(ctx, `SELECT dpi FROM profiles WHERE user_id = $1 FOR UPDATE`, uuid.UUID(p.ID)).Scan(&oldDPI)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock profile: %w", err)
		}
		if err := nationalid.Move(ctx, exec, id.DPI(oldDPI), p.DPI, models.DPIOwnerProfile, p.ID.String()); err != nil {
			return err
		}

		_, err = exec.ExecContext(ctx, `
			UPDATE profiles
			SET email = $2, given_names = $3, family_names = $4, phone = $5, dpi = $6,
			    birth_date = $7, sex = $8, role_id = $9, place_id = $10, active = $11, updated_at = $12
			WHERE user_id = $1
		`, uuid.UUID(p.ID), p.Email, p.GivenNames, p.FamilyNames, p.Phone.String(), p.DPI.String(),
			p.BirthDate, string(p.Sex), int64(p.RoleID), int64(p.PlaceID), p.Active, p.UpdatedAt)
		if err != nil {
			return translateWriteError("update profile", err)
		}
		return nil
	})
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, uuid.UUID(userID))
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	var args []any
	if f.RoleID != nil {
		query += ` WHERE role_id = $1`
		args = append(args, int64(*f.RoleID))
	}
	query += ` ORDER BY lower(family_names), lower(given_names)`

	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string, exclude *id.UserID) (bool, error) {
	return s.exists(ctx, `lower(email) = lower($1)`, strings.TrimSpace(email), exclude)
}

func (s *PostgresStore) ExistsByDPI(ctx context.Context, dpi id.DPI, exclude *id.UserID) (bool, error) {
	return s.exists(ctx, `dpi = $1`, dpi.String(), exclude)
}

func (s *PostgresStore) exists(ctx context.Context, cond string, arg any, exclude *id.UserID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM profiles WHERE ` + cond
	args := []any{arg}
	if exclude != nil {
		query += ` AND user_id <> $2`
		args = append(args, uuid.UUID(*exclude))
	}
	query += `)`

	var found bool
	if err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("check profile: %w", err)
	}
	return found, nil
}

// DeleteIfNoDependents removes the profile in one statement that refuses to
// run while an affiliate references it. sentinel.ErrInUse reports the refusal.
func (s *PostgresStore) DeleteIfNoDependents(ctx context.Context, userID id.UserID) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)

		var dpi string
		err := exec.QueryRowContext(ctx, `
			DELETE FROM profiles
			WHERE user_id = $1
			  AND NOT EXISTS (SELECT 1 FROM affiliates WHERE leader_id = $1)
			RETURNING dpi
		`, uuid.UUID(userID)).Scan(&dpi)
		if _, ok := postgres.ForeignKeyViolation(err); ok {
			return sentinel.ErrInUse
		}
		if errors.Is(err, sql.ErrNoRows) {
			var present bool
			if err := exec.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1)`, uuid.UUID(userID)).Scan(&present); err != nil {
				return fmt.Errorf("check profile: %w", err)
			}
			if present {
				return sentinel.ErrInUse
			}
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		return nationalid.Release(ctx, exec, id.DPI(dpi), models.DPIOwnerProfile, userID.String())
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*models.Profile, error) {
	var (
		p       models.Profile
		uid     uuid.UUID
		phone   string
		dpi     string
		sex     string
		roleID  int64
		placeID int64
	)
	if err := row.Scan(&uid, &p.Email, &p.GivenNames, &p.FamilyNames, &phone, &dpi, &p.BirthDate,
		&sex, &roleID, &placeID, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.UserID(uid)
	p.Phone = id.Phone(strings.TrimSpace(phone))
	p.DPI = id.DPI(strings.TrimSpace(dpi))
	p.Sex = models.Sex(strings.TrimSpace(sex))
	p.RoleID = id.RoleID(roleID)
	p.PlaceID = id.PlaceID(placeID)
	return &p, nil
}

func translateWriteError(op string, err error) error {
	if constraint, ok := postgres.UniqueViolation(err); ok {
		switch constraint {
		case "profiles_email_key":
			return &models.DuplicateError{Field: "email", Owner: models.DPIOwnerProfile, Err: err}
		case "profiles_dpi_key":
			return &models.DuplicateError{Field: "dpi", Owner: models.DPIOwnerProfile, Err: err}
		case "profiles_pkey":
			return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
		}
		return &models.DuplicateError{Field: "dpi", Owner: models.DPIOwnerProfile, Err: err}
	}
	if _, ok := postgres.ForeignKeyViolation(err); ok {
		return fmt.Errorf("%s: referenced role or place: %w", op, sentinel.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
