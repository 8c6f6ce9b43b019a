package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/authgate/authgate/pkg/storage"
)

type Adapter struct {
	db *sql.DB

	stmts preparedStatements
}

type preparedStatements struct {
	putSession    *sql.Stmt
	getSession    *sql.Stmt
	deleteSession *sql.Stmt

	putUser             *sql.Stmt
	getUser             *sql.Stmt
	getUserByEmail      *sql.Stmt
	getUserByResetToken *sql.Stmt
	deleteUser          *sql.Stmt
}

type prepareStatementSpec struct {
	label  string
	query  string
	assign func(*preparedStatements, *sql.Stmt)
}

var prepareStatementSpecs = []prepareStatementSpec{
	{
		label: "put session",
		query: putSessionQuery,
		assign: func(ps *preparedStatements, stmt *sql.Stmt) {
			ps.putSession = stmt
		},
	},
	{
		label: "get session",
		query: getSessionQuery,
		assign: func(ps *preparedStatements, stmt *sql.Stmt) {
			ps.getSession = stmt
		},
	},
	{
		label: "delete session",
		query: deleteSessionQuery,
		assign: func(ps *preparedStatements, stmt *sql.Stmt) {
			ps.deleteSession = stmt
		},
	},
	{
		label: "put user",
		query: putUserQuery,
		assign: func(ps *preparedStatements, stmt *sql.Stmt) {
			ps.putUser = stmt
		},
	},
	{
		label: "get user",
		query: getUserQuery,
		assign: func(ps *preparedStatements, stmt *sql.Stmt) {
			ps.getUser = stmt
		},
	},
	{
		label: "get user by email",
		query: getUserByEmailQuery,
		assign: func(ps *preparedStatements, stmt *sql.Stmt) {
			ps.getUserByEmail = stmt
		},
	},
	{
		label: "get user by reset token",
		query: getUserByResetTokenQuery,
		assign: func(ps *preparedStatements, stmt *sql.Stmt) {
			ps.getUserByResetToken = stmt
		},
	},
	{
		label: "delete user",
		query: deleteUserQuery,
		assign: func(ps *preparedStatements, stmt *sql.Stmt) {
			ps.deleteUser = stmt
		},
	},
}

var (
	ErrNilDB                 = errors.New("postgres adapter: db is nil")
	ErrAdapterNotInitialized = errors.New("postgres adapter: adapter not initialized")
)

var _ storage.SessionStore = (*Adapter)(nil)
var _ storage.UserStore = (*Adapter)(nil)

func NewAdapter(db *sql.DB) (*Adapter, error) {
	adapter := &Adapter{
		db: db,
	}

	if err := adapter.prepareStatements(); err != nil {
		_ = adapter.Close()
		return nil, err
	}

	return adapter, nil
}

func (a *Adapter) Close() error {
	if a == nil {
		return nil
	}

	return closeStatements(
		a.stmts.putSession,
		a.stmts.getSession,
		a.stmts.deleteSession,
		a.stmts.putUser,
		a.stmts.getUser,
		a.stmts.getUserByEmail,
		a.stmts.getUserByResetToken,
		a.stmts.deleteUser,
	)
}

func (a *Adapter) prepareStatements() (err error) {
	db, err := a.requireDB()
	if err != nil {
		return err
	}

	prepared := make([]*sql.Stmt, 0, len(prepareStatementSpecs))
	defer func() {
		if err != nil {
			_ = closeStatements(prepared...)
		}
	}()

	for _, spec := range prepareStatementSpecs {
		stmt, prepErr := db.Prepare(spec.query)
		if prepErr != nil {
			err = fmt.Errorf("postgres adapter: prepare %s statement: %w", spec.label, prepErr)
			return err
		}
		prepared = append(prepared, stmt)
		spec.assign(&a.stmts, stmt)
	}
	return nil
}

func (a *Adapter) requireDB() (*sql.DB, error) {
	if a == nil || a.db == nil {
		return nil, ErrNilDB
	}
	return a.db, nil
}

func (a *Adapter) requirePreparedStatements() error {
	if _, err := a.requireDB(); err != nil {
		return err
	}

	if a.stmts.putSession == nil || a.stmts.getSession == nil || a.stmts.deleteSession == nil {
		return ErrAdapterNotInitialized
	}
	if a.stmts.putUser == nil || a.stmts.getUser == nil || a.stmts.getUserByEmail == nil {
		return ErrAdapterNotInitialized
	}
	if a.stmts.getUserByResetToken == nil || a.stmts.deleteUser == nil {
		return ErrAdapterNotInitialized
	}
	return nil
}

func closeStatements(stmts ...*sql.Stmt) error {
	var errs []error

	for _, stmt := range stmts {
		if stmt == nil {
			continue
		}
		if err := stmt.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

type scanner interface {
	Scan(dest ...any) error
}
