package affiliate

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

// PostgresStore persists affiliates in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed affiliate store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const affiliateColumns = `id, given_names, family_names, phone, dpi, birth_date, sex,
	leader_id, place_id, created_at, updated_at`

const affiliateOrder = ` ORDER BY lower(family_names), lower(given_names), dpi`

func (s *PostgresStore) Create(ctx context.Context, a *models.Affiliate) error {
	if a.LeaderID != nil && uuidEqual(*a.LeaderID, a.ID) {
		return sentinel.ErrInvalidState
	}
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)
		if err := nationalid.Claim(ctx, exec, a.DPI, models.DPIOwnerAffiliate, a.ID.String()); err != nil {
			return err
		}
		_, err := exec.ExecContext(ctx, `
			INSERT INTO affiliates (`+affiliateColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, uuid.UUID(a.ID), a.GivenNames, a.FamilyNames, nullPhone(a.Phone), a.DPI.String(),
			a.BirthDate, string(a.Sex), nullLeader(a.LeaderID), int64(a.PlaceID), a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return translateWriteError("insert affiliate", err)
		}
		return nil
	})
}

func (s *PostgresStore) Update(ctx context.Context, a *models.Affiliate) error {
	if a.LeaderID != nil && uuidEqual(*a.LeaderID, a.ID) {
		return sentinel.ErrInvalidState
	}
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)

		var oldDPI string
		err := exec.QueryRowContext(ctx, `SELECT dpi FROM affiliates WHERE id = $1 FOR UPDATE`, uuid.UUID(a.ID)).Scan(&oldDPI)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock affiliate: %w", err)
		}
		if err := nationalid.Move(ctx, exec, id.DPI(strings.TrimSpace(oldDPI)), a.DPI, models.DPIOwnerAffiliate, a.ID.String()); err != nil {
			return err
		}

		_, err = exec.ExecContext(ctx, `
			UPDATE affiliates
			SET given_names = $2, family_names = $3, phone = $4, dpi = $5, birth_date = $6,
			    sex = $7, leader_id = $8, place_id = $9, updated_at = $10
			WHERE id = $1
		`, uuid.UUID(a.ID), a.GivenNames, a.FamilyNames, nullPhone(a.Phone), a.DPI.String(),
			a.BirthDate, string(a.Sex), nullLeader(a.LeaderID), int64(a.PlaceID), a.UpdatedAt)
		if err != nil {
			return translateWriteError("update affiliate", err)
		}
		return nil
	})
}

func (s *PostgresStore) FindByID(ctx context.Context, affiliateID id.AffiliateID) (*models.Affiliate, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+affiliateColumns+` FROM affiliates WHERE id = $1`, uuid.UUID(affiliateID))
	a, err := scanAffiliate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find affiliate: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Affiliate, error) {
	return s.query(ctx, `SELECT `+affiliateColumns+` FROM affiliates`+affiliateOrder)
}

func (s *PostgresStore) ListByLeader(ctx context.Context, leaderID id.UserID) ([]models.Affiliate, error) {
	return s.query(ctx, `SELECT `+affiliateColumns+` FROM affiliates WHERE leader_id = $1`+affiliateOrder,
		uuid.UUID(leaderID))
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]models.Affiliate, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list affiliates: %w", err)
	}
	defer rows.Close()

	out := []models.Affiliate{}
	for rows.Next() {
		a, err := scanAffiliate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan affiliate: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate affiliates: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ExistsByDPI(ctx context.Context, dpi id.DPI, exclude *id.AffiliateID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM affiliates WHERE dpi = $1`
	args := []any{dpi.String()}
	if exclude != nil {
		query += ` AND id <> $2`
		args = append(args, uuid.UUID(*exclude))
	}
	query += `)`

	var found bool
	if err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("check affiliate dpi: %w", err)
	}
	return found, nil
}

func (s *PostgresStore) Delete(ctx context.Context, affiliateID id.AffiliateID) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)

		var dpi string
		err := exec.QueryRowContext(ctx, `DELETE FROM affiliates WHERE id = $1 RETURNING dpi`,
			uuid.UUID(affiliateID)).Scan(&dpi)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("delete affiliate: %w", err)
		}
		return nationalid.Release(ctx, exec, id.DPI(strings.TrimSpace(dpi)), models.DPIOwnerAffiliate, affiliateID.String())
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAffiliate(row scanner) (*models.Affiliate, error) {
	var (
		a       models.Affiliate
		aid     uuid.UUID
		phone   sql.NullString
		dpi     string
		sex     string
		leader  uuid.NullUUID
		placeID int64
	)
	if err := row.Scan(&aid, &a.GivenNames, &a.FamilyNames, &phone, &dpi, &a.BirthDate, &sex,
		&leader, &placeID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ID = id.AffiliateID(aid)
	if phone.Valid && strings.TrimSpace(phone.String) != "" {
		p := id.Phone(strings.TrimSpace(phone.String))
		a.Phone = &p
	}
	a.DPI = id.DPI(strings.TrimSpace(dpi))
	a.Sex = models.Sex(strings.TrimSpace(sex))
	if leader.Valid {
		l := id.UserID(leader.UUID)
		a.LeaderID = &l
	}
	a.PlaceID = id.PlaceID(placeID)
	return &a, nil
}

func nullPhone(p *id.Phone) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: p.String(), Valid: true}
}

func nullLeader(l *id.UserID) uuid.NullUUID {
	if l == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*l), Valid: true}
}

func translateWriteError(op string, err error) error {
	if constraint, ok := postgres.UniqueViolation(err); ok {
		if constraint == "affiliates_pkey" {
			return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
		}
		return &models.DuplicateError{Field: "dpi", Owner: models.DPIOwnerAffiliate, Err: err}
	}
	if constraint, ok := postgres.ForeignKeyViolation(err); ok {
		if constraint == "affiliates_leader_id_fkey" {
			return fmt.Errorf("%s: leader: %w", op, sentinel.ErrNotFound)
		}
		return fmt.Errorf("%s: referenced place: %w", op, sentinel.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
