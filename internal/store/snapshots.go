package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"taskwire/internal/codec"
	"taskwire/internal/models"
)

var (
	// ErrNotFound is returned when no snapshot exists for a task id.
	ErrNotFound = errors.New("task snapshot not found")
	// ErrMissingID is returned when a record without a positive id is stored.
	ErrMissingID = errors.New("task record has no id")
)

// PutResult reports what PutTask did with a record.
type PutResult string

const (
	PutCreated   PutResult = "created"
	PutUpdated   PutResult = "updated"
	PutUnchanged PutResult = "unchanged"
)

// Summary is the listing view of a stored snapshot.
type Summary struct {
	ID          int64     `json:"id" yaml:"id"`
	IncidentID  int64     `json:"inc_id" yaml:"inc_id"`
	Name        string    `json:"name" yaml:"name"`
	Status      string    `json:"status" yaml:"status"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	StoredAt    time.Time `json:"stored_at" yaml:"stored_at"`
}

// Revision is one recorded version of a task snapshot.
type Revision struct {
	Revision    string    `json:"revision" yaml:"revision"`
	TaskID      int64     `json:"task_id" yaml:"task_id"`
	Seq         int64     `json:"seq" yaml:"seq"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	StoredAt    time.Time `json:"stored_at" yaml:"stored_at"`
}

// ListFilter narrows ListTasks. Zero fields do not filter.
type ListFilter struct {
	IncidentID int64
	Status     models.TaskStatus
	Limit      int
}

type summaryRow struct {
	ID          int64  `db:"id"`
	IncidentID  int64  `db:"inc_id"`
	Name        string `db:"name"`
	Status      string `db:"status"`
	Fingerprint string `db:"fingerprint"`
	StoredAt    string `db:"stored_at"`
}

type revisionRow struct {
	Revision    string `db:"revision"`
	TaskID      int64  `db:"task_id"`
	Seq         int64  `db:"seq"`
	Fingerprint string `db:"fingerprint"`
	StoredAt    string `db:"stored_at"`
}

// Fingerprint returns the hex BLAKE2b-256 digest of canonical wire bytes.
func Fingerprint(wire []byte) string {
	sum := blake2b.Sum256(wire)
	return hex.EncodeToString(sum[:])
}

// PutTask stores the canonical wire form of rec. A record whose wire form is
// unchanged since the last put is not rewritten and gets no new revision.
func (s *Store) PutTask(ctx context.Context, rec *models.TaskRecord) (PutResult, error) {
	if rec == nil {
		return "", fmt.Errorf("task record is nil")
	}
	if rec.ID <= 0 {
		return "", ErrMissingID
	}

	wire, err := codec.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode task %d: %w", rec.ID, err)
	}
	fp := Fingerprint(wire)
	storedAt := formatTime(time.Now())

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin put: %w", err)
	}
	defer tx.Rollback()

	var result PutResult
	var existing string
	err = tx.GetContext(ctx, &existing, "SELECT fingerprint FROM task_snapshots WHERE id = ?", rec.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		result = PutCreated
		_, err = tx.ExecContext(ctx, `
INSERT INTO task_snapshots (id, inc_id, name, status, fingerprint, wire, stored_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.IncidentID, rec.Name, string(rec.Status), fp, string(wire), storedAt)
	case err != nil:
		return "", fmt.Errorf("lookup task %d: %w", rec.ID, err)
	case existing == fp:
		return PutUnchanged, nil
	default:
		result = PutUpdated
		_, err = tx.ExecContext(ctx, `
UPDATE task_snapshots
SET inc_id = ?, name = ?, status = ?, fingerprint = ?, wire = ?, stored_at = ?
WHERE id = ?`,
			rec.IncidentID, rec.Name, string(rec.Status), fp, string(wire), storedAt, rec.ID)
	}
	if err != nil {
		return "", fmt.Errorf("write task %d: %w", rec.ID, err)
	}

	var seq int64
	if err := tx.GetContext(ctx, &seq, "SELECT COALESCE(MAX(seq), 0) + 1 FROM task_revisions WHERE task_id = ?", rec.ID); err != nil {
		return "", fmt.Errorf("next revision for task %d: %w", rec.ID, err)
	}
	revision := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
INSERT INTO task_revisions (revision, task_id, seq, fingerprint, wire, stored_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		revision, rec.ID, seq, fp, string(wire), storedAt); err != nil {
		return "", fmt.Errorf("record revision for task %d: %w", rec.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit put: %w", err)
	}
	slog.Debug("stored task snapshot", "id", rec.ID, "result", result, "revision", revision, "seq", seq)
	return result, nil
}

// GetTask decodes the latest snapshot of a task.
func (s *Store) GetTask(ctx context.Context, id int64) (*models.TaskRecord, error) {
	var wire string
	err := s.db.GetContext(ctx, &wire, "SELECT wire FROM task_snapshots WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	rec, err := codec.Decode([]byte(wire))
	if err != nil {
		return rec, fmt.Errorf("decode stored task %d: %w", id, err)
	}
	return rec, nil
}

// ListTasks returns snapshot summaries ordered by task id.
func (s *Store) ListTasks(ctx context.Context, filter ListFilter) ([]Summary, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.IncidentID > 0 {
		conditions = append(conditions, "inc_id = ?")
		args = append(args, filter.IncidentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}

	var b strings.Builder
	b.WriteString("SELECT id, inc_id, name, status, fingerprint, stored_at FROM task_snapshots")
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString(" ORDER BY id")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	var rows []summaryRow
	if err := s.db.SelectContext(ctx, &rows, b.String(), args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		storedAt, err := parseTime(row.StoredAt)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", row.ID, err)
		}
		out = append(out, Summary{
			ID:          row.ID,
			IncidentID:  row.IncidentID,
			Name:        row.Name,
			Status:      row.Status,
			Fingerprint: row.Fingerprint,
			StoredAt:    storedAt,
		})
	}
	return out, nil
}

// DeleteTask removes a snapshot together with its revisions.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM task_revisions WHERE task_id = ?", id); err != nil {
		return fmt.Errorf("delete revisions of task %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM task_snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	slog.Debug("deleted task snapshot", "id", id)
	return nil
}

// ListRevisions returns the revisions of a task, newest first.
func (s *Store) ListRevisions(ctx context.Context, id int64) ([]Revision, error) {
	var rows []revisionRow
	err := s.db.SelectContext(ctx, &rows, `
SELECT revision, task_id, seq, fingerprint, stored_at
FROM task_revisions
WHERE task_id = ?
ORDER BY seq DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("list revisions of task %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	out := make([]Revision, 0, len(rows))
	for _, row := range rows {
		storedAt, err := parseTime(row.StoredAt)
		if err != nil {
			return nil, fmt.Errorf("revision %s: %w", row.Revision, err)
		}
		out = append(out, Revision{
			Revision:    row.Revision,
			TaskID:      row.TaskID,
			Seq:         row.Seq,
			Fingerprint: row.Fingerprint,
			StoredAt:    storedAt,
		})
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored_at %q: %w", raw, err)
	}
	return t.UTC(), nil
}
