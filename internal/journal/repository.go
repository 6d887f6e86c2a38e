package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

// Repository defines activation persistence.
type Repository interface {
	Create(ctx context.Context, a *Activation) error
	Complete(ctx context.Context, a *Activation) error
	SetAudioError(ctx context.Context, id, msg string) error
	Get(ctx context.Context, id string) (*Activation, error)
	ListByProp(ctx context.Context, prop string, limit int) ([]Activation, error)
}

const activationColumns = `id, prop, device_id, mode, activation, triggered_at, settled_at,
			steps_sent, steps_failed, steps_skipped, clips, audio_duration_ms,
			audio_error, discarded, status`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts the row for a freshly admitted activation.
func (r *SQLiteRepository) Create(ctx context.Context, a *Activation) error {
	if a.Status == "" {
		a.Status = StatusRunning
	}

	query := `
		INSERT INTO activations (
			id, prop, device_id, mode, activation, triggered_at, status
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.Prop,
		a.DeviceID,
		a.Mode,
		a.Activation,
		a.TriggeredAt.UTC().Format(timeLayout),
		string(a.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting activation: %w", err)
	}
	return nil
}

// Complete records the outcome of a settled activation. An audio error
// already stored is kept when a carries none.
func (r *SQLiteRepository) Complete(ctx context.Context, a *Activation) error {
	query := `
		UPDATE activations SET
			settled_at = ?, steps_sent = ?, steps_failed = ?, steps_skipped = ?,
			clips = ?, audio_duration_ms = ?, audio_error = COALESCE(?, audio_error),
			discarded = ?, status = ?
		WHERE id = ?`

	var settled any
	if a.SettledAt != nil {
		settled = a.SettledAt.UTC().Format(timeLayout)
	}

	result, err := r.db.ExecContext(ctx, query,
		settled,
		a.StepsSent,
		a.StepsFailed,
		a.StepsSkipped,
		a.Clips,
		nullableInt64(a.AudioMS),
		nullableString(a.AudioError),
		a.Discarded,
		string(StatusCompleted),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("completing activation: %w", err)
	}
	return checkAffected(result)
}

// SetAudioError stores why an activation's sounds did not play.
func (r *SQLiteRepository) SetAudioError(ctx context.Context, id, msg string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE activations SET audio_error = ? WHERE id = ?`, msg, id)
	if err != nil {
		return fmt.Errorf("recording audio error: %w", err)
	}
	return checkAffected(result)
}

// Get retrieves one activation.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Activation, error) {
	query := `SELECT ` + activationColumns + ` FROM activations WHERE id = ?`

	a, err := scanActivation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActivationNotFound
		}
		return nil, fmt.Errorf("querying activation: %w", err)
	}
	return a, nil
}

// ListByProp returns a prop's most recent activations, newest first.
func (r *SQLiteRepository) ListByProp(ctx context.Context, prop string, limit int) ([]Activation, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT ` + activationColumns + `
		FROM activations
		WHERE prop = ?
		ORDER BY triggered_at DESC, activation DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, prop, limit)
	if err != nil {
		return nil, fmt.Errorf("querying activations: %w", err)
	}
	defer rows.Close()

	activations := []Activation{}
	for rows.Next() {
		a, scanErr := scanActivation(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning activation: %w", scanErr)
		}
		activations = append(activations, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activations: %w", err)
	}
	return activations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivation(scanner rowScanner) (*Activation, error) {
	var a Activation
	var triggeredAt, status string
	var settledAt, audioErr sql.NullString
	var audioMS sql.NullInt64

	err := scanner.Scan(
		&a.ID,
		&a.Prop,
		&a.DeviceID,
		&a.Mode,
		&a.Activation,
		&triggeredAt,
		&settledAt,
		&a.StepsSent,
		&a.StepsFailed,
		&a.StepsSkipped,
		&a.Clips,
		&audioMS,
		&audioErr,
		&a.Discarded,
		&status,
	)
	if err != nil {
		return nil, err
	}

	a.Status = Status(status)
	if t, parseErr := time.Parse(timeLayout, triggeredAt); parseErr == nil {
		a.TriggeredAt = t
	}
	if settledAt.Valid {
		if t, parseErr := time.Parse(timeLayout, settledAt.String); parseErr == nil {
			a.SettledAt = &t
		}
	}
	if audioMS.Valid {
		a.AudioMS = &audioMS.Int64
	}
	if audioErr.Valid {
		a.AudioError = &audioErr.String
	}
	return &a, nil
}

func checkAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrActivationNotFound
	}
	return nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
