package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/authgate/authgate/pkg/storage"
)

const (
	putSessionQuery = `
INSERT INTO authgate.session (
  id, subject, created_at
) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE
SET
  subject = EXCLUDED.subject,
  created_at = EXCLUDED.created_at
`

	getSessionQuery = `
SELECT
  id::text, subject::text, created_at
FROM authgate.session
WHERE id = $1
`

	deleteSessionQuery = `DELETE FROM authgate.session WHERE id = $1`
)

func (a *Adapter) PutSession(ctx context.Context, record storage.SessionRecord) error {
	if err := a.requirePreparedStatements(); err != nil {
		return err
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := a.stmts.putSession.ExecContext(
		ctx,
		record.ID,
		record.Subject,
		createdAt,
	)
	return err
}

func (a *Adapter) GetSession(ctx context.Context, id string) (storage.SessionRecord, error) {
	if err := a.requirePreparedStatements(); err != nil {
		return storage.SessionRecord{}, err
	}

	record, err := scanSession(a.stmts.getSession.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return storage.SessionRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.SessionRecord{}, err
	}
	return record, nil
}

func (a *Adapter) DeleteSession(ctx context.Context, id string) error {
	if err := a.requirePreparedStatements(); err != nil {
		return err
	}

	_, err := a.stmts.deleteSession.ExecContext(ctx, id)
	return err
}

func scanSession(s scanner) (storage.SessionRecord, error) {
	var (
		record    storage.SessionRecord
		createdAt time.Time
	)

	if err := s.Scan(&record.ID, &record.Subject, &createdAt); err != nil {
		return storage.SessionRecord{}, err
	}

	record.CreatedAt = createdAt.UTC()
	return record, nil
}
