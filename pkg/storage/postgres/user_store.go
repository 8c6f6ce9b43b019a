package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/authgate/authgate/pkg/storage"
)

const (
	putUserQuery = `
INSERT INTO authgate.app_user (
  id, date_added, email, password_hash, reset_token
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET
  date_modified = now(),
  email = EXCLUDED.email,
  password_hash = EXCLUDED.password_hash,
  reset_token = EXCLUDED.reset_token
`

	getUserQuery = `
SELECT
  id::text, date_added, date_modified, email, password_hash, reset_token
FROM authgate.app_user
WHERE id = $1
`

	getUserByEmailQuery = `
SELECT
  id::text, date_added, date_modified, email, password_hash, reset_token
FROM authgate.app_user
WHERE email = $1
`

	getUserByResetTokenQuery = `
SELECT
  id::text, date_added, date_modified, email, password_hash, reset_token
FROM authgate.app_user
WHERE reset_token = $1
`

	deleteUserQuery = `DELETE FROM authgate.app_user WHERE id = $1`
)

func (a *Adapter) PutUser(ctx context.Context, record storage.UserRecord) error {
	if err := a.requirePreparedStatements(); err != nil {
		return err
	}

	dateAdded := record.DateAdded
	if dateAdded.IsZero() {
		dateAdded = time.Now().UTC()
	}

	_, err := a.stmts.putUser.ExecContext(
		ctx,
		record.ID,
		dateAdded,
		record.Email,
		record.PasswordHash,
		record.ResetToken,
	)
	return err
}

func (a *Adapter) GetUser(ctx context.Context, id string) (storage.UserRecord, error) {
	if err := a.requirePreparedStatements(); err != nil {
		return storage.UserRecord{}, err
	}
	return a.queryUser(a.stmts.getUser.QueryRowContext(ctx, id))
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (storage.UserRecord, error) {
	if err := a.requirePreparedStatements(); err != nil {
		return storage.UserRecord{}, err
	}
	return a.queryUser(a.stmts.getUserByEmail.QueryRowContext(ctx, email))
}

func (a *Adapter) GetUserByResetToken(ctx context.Context, token string) (storage.UserRecord, error) {
	if err := a.requirePreparedStatements(); err != nil {
		return storage.UserRecord{}, err
	}
	if token == "" {
		return storage.UserRecord{}, storage.ErrNotFound
	}
	return a.queryUser(a.stmts.getUserByResetToken.QueryRowContext(ctx, token))
}

func (a *Adapter) DeleteUser(ctx context.Context, id string) error {
	if err := a.requirePreparedStatements(); err != nil {
		return err
	}

	_, err := a.stmts.deleteUser.ExecContext(ctx, id)
	return err
}

func (a *Adapter) queryUser(row scanner) (storage.UserRecord, error) {
	record, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.UserRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.UserRecord{}, err
	}
	return record, nil
}

func scanUser(s scanner) (storage.UserRecord, error) {
	var (
		record       storage.UserRecord
		dateAdded    time.Time
		dateModified sql.NullTime
		resetToken   sql.NullString
	)

	if err := s.Scan(
		&record.ID,
		&dateAdded,
		&dateModified,
		&record.Email,
		&record.PasswordHash,
		&resetToken,
	); err != nil {
		return storage.UserRecord{}, err
	}

	record.DateAdded = dateAdded.UTC()
	if dateModified.Valid {
		modified := dateModified.Time.UTC()
		record.DateModified = &modified
	}
	if resetToken.Valid {
		token := resetToken.String
		record.ResetToken = &token
	}

	return record, nil
}
