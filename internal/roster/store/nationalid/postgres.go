// Package nationalid maintains the national_ids table that makes a DPI unique
// across profiles and affiliates in PostgreSQL.
package nationalid

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roster/internal/roster/models"
	id "roster/pkg/domain"
	"roster/pkg/platform/tx"
)

// Claim records dpi as held by (kind, ownerID) within the caller's
// transaction. A DPI already held by someone else yields *models.DuplicateError.
func Claim(ctx context.Context, exec tx.Executor, dpi id.DPI, kind models.DPIOwner, ownerID string) error {
	res, err := exec.ExecContext(ctx, `
		INSERT INTO national_ids (dpi, owner_kind, owner_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (dpi) DO NOTHING
	`, dpi.String(), string(kind), ownerID)
	if err != nil {
		return fmt.Errorf("claim dpi: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return nil
	}

	var curKind, curOwner string
	err = exec.QueryRowContext(ctx, `
		SELECT owner_kind, owner_id::text FROM national_ids WHERE dpi = $1
	`, dpi.String()).Scan(&curKind, &curOwner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("claim dpi: row vanished during claim")
	}
	if err != nil {
		return fmt.Errorf("read dpi owner: %w", err)
	}
	if curKind == string(kind) && curOwner == ownerID {
		return nil
	}
	return &models.DuplicateError{Field: "dpi", Owner: models.DPIOwner(curKind)}
}

// Release frees dpi if (kind, ownerID) holds it.
func Release(ctx context.Context, exec tx.Executor, dpi id.DPI, kind models.DPIOwner, ownerID string) error {
	_, err := exec.ExecContext(ctx, `
		DELETE FROM national_ids WHERE dpi = $1 AND owner_kind = $2 AND owner_id = $3
	`, dpi.String(), string(kind), ownerID)
	if err != nil {
		return fmt.Errorf("release dpi: %w", err)
	}
	return nil
}

// Move swaps the owner's claim from old to new.
func Move(ctx context.Context, exec tx.Executor, old, new id.DPI, kind models.DPIOwner, ownerID string) error {
	if old == new {
		return nil
	}
	if err := Claim(ctx, exec, new, kind, ownerID); err != nil {
		return err
	}
	return Release(ctx, exec, old, kind, ownerID)
}
