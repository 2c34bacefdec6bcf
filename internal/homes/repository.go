package homes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecohome_backend/platform/logger"
)

var ErrNotFound = errors.New("home not found")

// Repository persists homes, improvements and score history in Postgres.
type Repository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewRepository(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{pool: pool, log: log}
}

const homeColumns = `
	id, owner_id, address, postcode, lat, lon, total_floor_area_m2,
	baseline_efficiency, current_score, score_updated_at, created_at, updated_at
`

func scanHome(row pgx.Row) (HomeRecord, error) {
	var home HomeRecord
	err := row.Scan(
		&home.ID, &home.OwnerID, &home.Address, &home.Postcode,
		&home.Lat, &home.Lon, &home.TotalFloorAreaM2,
		&home.BaselineEfficiency, &home.CurrentScore, &home.ScoreUpdatedAt,
		&home.CreatedAt, &home.UpdatedAt,
	)
	return home, err
}

// CreateHome inserts a claimed home together with its initial score history
// entry, atomically.
func (r *Repository) CreateHome(ctx context.Context, home HomeRecord, history ScoreHistoryEntry) (HomeRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return HomeRecord{}, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	created, err := scanHome(tx.QueryRow(ctx, `
		INSERT INTO homes (
			id, owner_id, address, postcode, lat, lon, total_floor_area_m2,
			baseline_efficiency, current_score, score_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		RETURNING `+homeColumns,
		home.ID, home.OwnerID, home.Address, home.Postcode,
		home.Lat, home.Lon, home.TotalFloorAreaM2,
		home.BaselineEfficiency, home.CurrentScore,
	))
	if err != nil {
		r.log.DatabaseError("insert home", err)
		return HomeRecord{}, fmt.Errorf("insert home: %w", err)
	}

	if err := insertHistory(ctx, tx, history); err != nil {
		return HomeRecord{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return HomeRecord{}, fmt.Errorf("commit claim tx: %w", err)
	}
	return created, nil
}

// GetHome fetches a home by ID. Returns ErrNotFound when it does not exist.
func (r *Repository) GetHome(ctx context.Context, id uuid.UUID) (HomeRecord, error) {
	home, err := scanHome(r.pool.QueryRow(ctx, `
		SELECT `+homeColumns+`
		FROM homes
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return HomeRecord{}, ErrNotFound
	}
	if err != nil {
		r.log.DatabaseError("get home", err)
		return HomeRecord{}, fmt.Errorf("get home: %w", err)
	}
	return home, nil
}

// InsertImprovement writes an improvement and appends the matching history
// entry in one transaction. The home's mutable score column is left alone:
// only a recalculation persists a new current score. Improvements are
// immutable: there is deliberately no update or delete.
func (r *Repository) InsertImprovement(ctx context.Context, improvement Improvement, history ScoreHistoryEntry) (Improvement, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Improvement{}, fmt.Errorf("begin improvement tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO improvements (
			id, home_id, logged_by, category, cost, grant_used, grant_amount,
			estimated_annual_savings, before_score, after_score, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`,
		improvement.ID, improvement.HomeID, improvement.LoggedBy,
		improvement.Category, improvement.Cost, improvement.GrantUsed,
		improvement.GrantAmount, improvement.EstimatedAnnualSavings,
		improvement.BeforeScore, improvement.AfterScore, improvement.CompletedAt,
	).Scan(&improvement.CreatedAt)
	if err != nil {
		r.log.DatabaseError("insert improvement", err)
		return Improvement{}, fmt.Errorf("insert improvement: %w", err)
	}

	if err := insertHistory(ctx, tx, history); err != nil {
		return Improvement{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Improvement{}, fmt.Errorf("commit improvement tx: %w", err)
	}
	return improvement, nil
}

// ListImprovements returns a home's improvements, oldest first.
func (r *Repository) ListImprovements(ctx context.Context, homeID uuid.UUID) ([]Improvement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, home_id, logged_by, category, cost, grant_used, grant_amount,
		       estimated_annual_savings, before_score, after_score, completed_at, created_at
		FROM improvements
		WHERE home_id = $1
		ORDER BY created_at ASC, id ASC
	`, homeID)
	if err != nil {
		r.log.DatabaseError("list improvements", err)
		return nil, fmt.Errorf("list improvements: %w", err)
	}
	defer rows.Close()

	items := make([]Improvement, 0)
	for rows.Next() {
		var item Improvement
		if err := rows.Scan(
			&item.ID, &item.HomeID, &item.LoggedBy, &item.Category,
			&item.Cost, &item.GrantUsed, &item.GrantAmount,
			&item.EstimatedAnnualSavings, &item.BeforeScore, &item.AfterScore,
			&item.CompletedAt, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// RecordScore persists a recalculated score and appends its history entry
// atomically. Concurrent recalculations may race on the score column (last
// write wins) but every call appends its own history row.
func (r *Repository) RecordScore(ctx context.Context, homeID uuid.UUID, score float64, history ScoreHistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin recalculation tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := updateScore(ctx, tx, homeID, score); err != nil {
		return err
	}
	if err := insertHistory(ctx, tx, history); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.DatabaseError("commit recalculation", err)
		return fmt.Errorf("commit recalculation tx: %w", err)
	}
	return nil
}

// TouchScoreChecked records that a recalculation ran for the home, even when
// the score came out unchanged. Keeps the home out of the staleness sweep
// without touching the score or the audit trail.
func (r *Repository) TouchScoreChecked(ctx context.Context, homeID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE homes
		SET score_checked_at = now()
		WHERE id = $1
	`, homeID)
	if err != nil {
		r.log.DatabaseError("touch score checked", err)
		return fmt.Errorf("touch score checked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListScoreHistory returns a home's audit log, oldest first.
func (r *Repository) ListScoreHistory(ctx context.Context, homeID uuid.UUID) ([]ScoreHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, home_id, score, reason, detail, created_at
		FROM score_history
		WHERE home_id = $1
		ORDER BY created_at ASC, id ASC
	`, homeID)
	if err != nil {
		r.log.DatabaseError("list score history", err)
		return nil, fmt.Errorf("list score history: %w", err)
	}
	defer rows.Close()

	entries := make([]ScoreHistoryEntry, 0)
	for rows.Next() {
		var entry ScoreHistoryEntry
		var detail []byte
		if err := rows.Scan(&entry.ID, &entry.HomeID, &entry.Score, &entry.Reason, &detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &entry.Detail); err != nil {
				return nil, fmt.Errorf("decode history detail: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListStaleHomeIDs returns homes not recalculated since the cutoff, least
// recently checked first. Keyed on score_checked_at rather than
// score_updated_at: a recalculation that leaves the score unchanged still
// counts as a check, so homes whose score is already right leave the stale
// set instead of occupying it forever.
func (r *Repository) ListStaleHomeIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id
		FROM homes
		WHERE score_checked_at < $1
		ORDER BY score_checked_at ASC
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		r.log.DatabaseError("list stale homes", err)
		return nil, fmt.Errorf("list stale homes: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func updateScore(ctx context.Context, tx pgx.Tx, homeID uuid.UUID, score float64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE homes
		SET current_score = $2, score_updated_at = now(), score_checked_at = now(), updated_at = now()
		WHERE id = $1
	`, homeID, score)
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, entry ScoreHistoryEntry) error {
	var detail []byte
	if entry.Detail != nil {
		encoded, err := json.Marshal(entry.Detail)
		if err != nil {
			return fmt.Errorf("encode history detail: %w", err)
		}
		detail = encoded
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO score_history (id, home_id, score, reason, detail)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.HomeID, entry.Score, entry.Reason, detail)
	if err != nil {
		return fmt.Errorf("insert score history: %w", err)
	}
	return nil
}
