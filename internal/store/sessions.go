package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/logger"
)

// SessionGateway persists curriculum snapshots and attempt history for one
// learner. Every Save appends a snapshot row; Load reads the newest, and
// only the newest retention rows per session are kept.
type SessionGateway struct {
	db        *sql.DB
	seq       *sequenceCounter
	user      string
	retention int
	log       *logger.Logger
}

// Load returns the latest snapshot for key, or nil if none exists.
func (g *SessionGateway) Load(ctx context.Context, key string) (*curriculum.Snapshot, error) {
	query, args := sqlite().Select("data").
		From(entsql.Table(SnapshotsTable.Name)).
		Where(entsql.EQ("session_key", key)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var raw []byte
	err := g.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot %q: %w", key, err)
	}

	var snap curriculum.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", key, err)
	}
	return &snap, nil
}

// Save stores snap as the newest snapshot for key and prunes older ones.
func (g *SessionGateway) Save(ctx context.Context, key string, snap curriculum.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	seq, err := g.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := sqlite().Insert(SnapshotsTable.Name).
		Columns("sequence", "timestamp", "session_key", "topic", "data").
		Values(seq, time.Now().UTC().UnixNano(), key, snap.Topic, string(data)).
		Query()
	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}

	if g.retention > 0 {
		if err := g.prune(ctx, key, g.retention); err != nil {
			g.log.Warn("prune snapshots", "session_key", key, "error", err)
		}
	}
	return nil
}

// prune deletes all but the keep most recent snapshots of key.
func (g *SessionGateway) prune(ctx context.Context, key string, keep int) error {
	query, args := sqlite().Select("sequence").
		From(entsql.Table(SnapshotsTable.Name)).
		Where(entsql.EQ("session_key", key)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Offset(keep - 1).
		Query()

	var threshold int64
	err := g.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep snapshots exist
	}
	if err != nil {
		return fmt.Errorf("find prune threshold: %w", err)
	}

	query, args = sqlite().Delete(SnapshotsTable.Name).
		Where(entsql.And(
			entsql.EQ("session_key", key),
			entsql.LT("sequence", threshold),
		)).
		Query()
	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// RecentAttempts returns up to limit of this learner's attempts on topic,
// most recent first.
func (g *SessionGateway) RecentAttempts(ctx context.Context, topic string, limit int) ([]curriculum.AttemptRecord, error) {
	sel := sqlite().Select("attempt_id", "timestamp", "session_key", "topic", "node_id", "outcome", "score").
		From(entsql.Table(AttemptsTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", g.user),
			entsql.EQ("topic", topic),
		)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []curriculum.AttemptRecord
	for rows.Next() {
		var rec curriculum.AttemptRecord
		var ts int64
		var outcome string
		if err := rows.Scan(&rec.ID, &ts, &rec.SessionKey, &rec.Topic, &rec.NodeID, &outcome, &rec.Score); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.Outcome = curriculum.AttemptOutcome(outcome)
		rec.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AppendAttempt records one attempt. A missing id or timestamp is filled in.
func (g *SessionGateway) AppendAttempt(ctx context.Context, rec curriculum.AttemptRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Outcome != curriculum.OutcomePass && rec.Outcome != curriculum.OutcomeFail {
		return fmt.Errorf("invalid attempt outcome %q", rec.Outcome)
	}
	seq, err := g.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := sqlite().Insert(AttemptsTable.Name).
		Columns("sequence", "timestamp", "attempt_id", "user_id", "session_key", "topic", "node_id", "outcome", "score").
		Values(seq, rec.Timestamp.UTC().UnixNano(), rec.ID, g.user, rec.SessionKey, rec.Topic, rec.NodeID, string(rec.Outcome), rec.Score).
		Query()
	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

// DeleteSession removes every snapshot and attempt stored under key.
// It reports whether anything was deleted.
func (g *SessionGateway) DeleteSession(ctx context.Context, key string) (bool, error) {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var total int64
	for _, table := range []string{SnapshotsTable.Name, AttemptsTable.Name} {
		query, args := sqlite().Delete(table).Where(entsql.EQ("session_key", key)).Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return false, fmt.Errorf("delete from %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return total > 0, nil
}

// ListSessions returns the learner's saved sessions, most recently updated
// first. Only keys of the form "<user>/<topic>" belong to the learner.
func (g *SessionGateway) ListSessions(ctx context.Context) ([]curriculum.SessionInfo, error) {
	query, args := sqlite().Select(
		"session_key",
		entsql.As(entsql.Max("topic"), "topic"),
		entsql.As(entsql.Max("timestamp"), "updated_at"),
	).
		From(entsql.Table(SnapshotsTable.Name)).
		Where(entsql.HasPrefix("session_key", g.user+"/")).
		GroupBy("session_key").
		OrderBy(entsql.Desc("updated_at")).
		Query()

	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []curriculum.SessionInfo
	for rows.Next() {
		var info curriculum.SessionInfo
		var ts int64
		if err := rows.Scan(&info.Key, &info.Topic, &ts); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.UpdatedAt = time.Unix(0, ts).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}
