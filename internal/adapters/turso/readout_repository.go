package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/bayesab/internal/domain"
	"github.com/emiliopalmerini/bayesab/internal/util"
)

type ReadoutRepository struct {
	db *sql.DB
}

func NewReadoutRepository(db *sql.DB) *ReadoutRepository {
	return &ReadoutRepository{db: db}
}

const readoutColumns = `id, name, control_trials, control_successes, experiment_trials,
	experiment_successes, min_lift, control_seed, experiment_seed, sample_size,
	probability, verdict, created_at`

func (r *ReadoutRepository) Create(ctx context.Context, ro *domain.Readout) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO readouts (`+readoutColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ro.ID,
		ro.Name,
		ro.Control.Trials,
		ro.Control.Successes,
		ro.Experiment.Trials,
		ro.Experiment.Successes,
		ro.MinLift,
		int64(ro.Seeds.Control),
		int64(ro.Seeds.Experiment),
		ro.SampleSize,
		ro.Probability,
		ro.Verdict.String(),
		ro.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create readout: %w", err)
	}
	return nil
}

func (r *ReadoutRepository) GetByID(ctx context.Context, id string) (*domain.Readout, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+readoutColumns+` FROM readouts WHERE id = ?`, id)
	ro, err := scanReadout(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get readout: %w", err)
	}
	return ro, nil
}

func (r *ReadoutRepository) List(ctx context.Context, limit int) ([]*domain.Readout, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+readoutColumns+` FROM readouts ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list readouts: %w", err)
	}
	defer rows.Close()

	var readouts []*domain.Readout
	for rows.Next() {
		ro, err := scanReadout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan readout: %w", err)
		}
		readouts = append(readouts, ro)
	}
	return readouts, rows.Err()
}

func (r *ReadoutRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM readouts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete readout: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReadout(s scanner) (*domain.Readout, error) {
	var (
		ro                 domain.Readout
		ctlSeed, expSeed   int64
		verdict, createdAt string
	)
	err := s.Scan(
		&ro.ID,
		&ro.Name,
		&ro.Control.Trials,
		&ro.Control.Successes,
		&ro.Experiment.Trials,
		&ro.Experiment.Successes,
		&ro.MinLift,
		&ctlSeed,
		&expSeed,
		&ro.SampleSize,
		&ro.Probability,
		&verdict,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	ro.Seeds = domain.Seeds{Control: uint64(ctlSeed), Experiment: uint64(expSeed)}
	ro.Verdict, err = domain.ParseVerdict(verdict)
	if err != nil {
		return nil, err
	}
	ro.CreatedAt = util.ParseTimeRFC3339(createdAt)
	return &ro, nil
}
