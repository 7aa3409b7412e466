package store

import (
	"context"
	"errors"
	"fmt"

	"franchise-backoffice/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FiscalYearStore implements core.FiscalYearStatusProvider off the
// fiscal_years table.
type FiscalYearStore struct {
	pool *pgxpool.Pool
}

func NewFiscalYearStore(pool *pgxpool.Pool) *FiscalYearStore {
	return &FiscalYearStore{pool: pool}
}

// FiscalYearStatus reports whether (centro, year) exists and is closed.
// A missing row is a valid answer, not an error: posting into a
// not-yet-created fiscal year is allowed, just flagged upstream.
func (s *FiscalYearStore) FiscalYearStatus(ctx context.Context, centroCode string, year int) (core.FiscalYearStatus, error) {
	var isClosed bool
	err := s.pool.QueryRow(ctx, `
		SELECT is_closed
		FROM fiscal_years
		WHERE centro_code = $1 AND year = $2`,
		centroCode, year,
	).Scan(&isClosed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.FiscalYearStatus{
				Exists:  false,
				Year:    year,
				Message: fmt.Sprintf("ejercicio %d del centro %s no creado", year, centroCode),
			}, nil
		}
		return core.FiscalYearStatus{}, fmt.Errorf("fiscal year status (%s, %d): %w", centroCode, year, err)
	}

	status := core.FiscalYearStatus{Exists: true, IsClosed: isClosed, Year: year}
	if isClosed {
		status.Message = fmt.Sprintf("el ejercicio fiscal %d del centro %s está cerrado", year, centroCode)
	}
	return status, nil
}
