package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/carbon-tracker/internal/database"
	"github.com/iliyamo/carbon-tracker/internal/model"
)

// EventRepo is the append-only usage log.  Rows are never updated; the only
// removal path is Clear.
type EventRepo struct {
	db      DBTX
	dialect database.Dialect
}

func NewEventRepo(db *database.DB) *EventRepo {
	return &EventRepo{db: db.DB, dialect: db.Dialect}
}

// Append inserts ev and fills in its ID.
func (r *EventRepo) Append(ctx context.Context, ev *model.Event) error {
	var uid sql.NullInt64
	if ev.AccountID != nil {
		uid = sql.NullInt64{Int64: int64(*ev.AccountID), Valid: true}
	}
	id, err := insertID(ctx, r.db, r.dialect,
		"INSERT INTO events (user_id, kind, detail, timestamp) VALUES (?, ?, ?, ?)",
		uid, ev.Kind, ev.Detail, model.FormatTimestamp(ev.Timestamp))
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("insert event: %w", err)
	}
	ev.ID = id
	return nil
}

// CountByKindPerAccount counts events of kind grouped by account.  Anonymous
// events are excluded and accounts with no such events do not appear.
func (r *EventRepo) CountByKindPerAccount(ctx context.Context, kind string) (map[uint64]int, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(
		"SELECT user_id, COUNT(*) FROM events WHERE kind = ? AND user_id IS NOT NULL GROUP BY user_id"), kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64]int)
	for rows.Next() {
		var (
			id uint64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Recent returns at most limit events, newest first.
func (r *EventRepo) Recent(ctx context.Context, limit int) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(
		"SELECT id, user_id, kind, detail, timestamp FROM events ORDER BY timestamp DESC, id DESC LIMIT ?"), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var (
			ev  model.Event
			uid sql.NullInt64
			ts  string
		)
		if err := rows.Scan(&ev.ID, &uid, &ev.Kind, &ev.Detail, &ts); err != nil {
			return nil, err
		}
		if uid.Valid {
			id := uint64(uid.Int64)
			ev.AccountID = &id
		}
		if t, err := model.ParseTimestamp(ts); err == nil {
			ev.Timestamp = t
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Clear deletes every event and returns how many rows were removed.
func (r *EventRepo) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
