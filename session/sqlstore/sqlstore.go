// Package sqlstore implements session.Session over an offline configuration
// store persisted in SQLite.
//
// Instances live in the objects table keyed by absolute path and attribute
// values are stored as JSON. Outside an edit each operation commits on its
// own; BeginEdit opens a transaction that Commit or Discard ends.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"
	"unicode/utf8"

	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/session"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS objects (
	path   TEXT PRIMARY KEY,
	parent TEXT NOT NULL,
	name   TEXT NOT NULL,
	type   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_objects_parent ON objects(parent);

CREATE TABLE IF NOT EXISTS attributes (
	path  TEXT NOT NULL,
	name  TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (path, name)
) WITHOUT ROWID;
`

// DefaultLockTimeout is how long a statement waits on a locked database.
const DefaultLockTimeout = 5 * time.Second

var (
	errNotCurrent = errors.New("path is not the current location")
	errNoSuchPath = errors.New("no such path")
	errExists     = errors.New("instance already exists")
	errNotEditing = errors.New("no edit in progress")
	errEditing    = errors.New("edit already in progress")
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a session.Session backed by SQLite.
type Store struct {
	db          *sql.DB
	tx          *sql.Tx
	current     string
	lockTimeout time.Duration
	logger      model.Logger
}

var _ session.Session = (*Store)(nil)
var _ session.Editor = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout sets the SQLite busy timeout.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// WithLogger sets the logger for store diagnostics.
func WithLogger(l model.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open opens (creating if needed) the store at dsn. Use ":memory:" for a
// throwaway store.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	s := &Store{current: "/", lockTimeout: DefaultLockTimeout}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = model.LoggerOrNop(s.logger)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// One connection keeps ":memory:" stores coherent and serializes edits.
	db.SetMaxOpenConns(1)

	pragma := fmt.Sprintf("PRAGMA busy_timeout = %d", s.lockTimeout.Milliseconds())
	if _, err := db.ExecContext(ctx, pragma); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO objects (path, parent, name, type) VALUES ('/', '', '', '')`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create root: %w", err)
	}
	s.db = db
	s.logger.Debug("opened configuration store", "dsn", dsn)
	return s, nil
}

func (s *Store) q() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Store) exists(ctx context.Context, p string) (bool, error) {
	var n int
	err := s.q().QueryRowContext(ctx, `SELECT COUNT(*) FROM objects WHERE path = ?`, p).Scan(&n)
	return n > 0, err
}

func (s *Store) requireCurrent(call session.Call, p string) error {
	if p != s.current {
		return session.Failure(call, fmt.Errorf("%w: current is %s", errNotCurrent, s.current))
	}
	return nil
}

func (s *Store) requireObject(ctx context.Context, call session.Call, p string) error {
	ok, err := s.exists(ctx, p)
	if err != nil {
		return session.Failure(call, err)
	}
	if !ok {
		return session.Failure(call, errNoSuchPath)
	}
	return nil
}

// Editing reports whether a transaction is open.
func (s *Store) Editing() bool { return s.tx != nil }

// Navigate makes p the current location. p must be an instance or a list
// path directly below one.
func (s *Store) Navigate(ctx context.Context, p string) error {
	p = session.Clean(p)
	call := session.Call{Op: session.OpNavigate, Path: p}
	ok, err := s.exists(ctx, p)
	if err == nil && !ok {
		ok, err = s.exists(ctx, path.Dir(p))
	}
	if err != nil {
		return session.Failure(call, err)
	}
	if !ok {
		return session.Failure(call, errNoSuchPath)
	}
	s.current = p
	return nil
}

// Current returns the current location.
func (s *Store) Current() string { return s.current }

// Create creates name under parentPath, which must be current.
func (s *Store) Create(ctx context.Context, name, adminType, parentPath string) error {
	parentPath = session.Clean(parentPath)
	call := session.Call{Op: session.OpCreate, Path: parentPath, Name: name, Type: adminType}
	if err := s.requireCurrent(call, parentPath); err != nil {
		return err
	}
	p := session.Join(parentPath, name)
	ok, err := s.exists(ctx, p)
	if err != nil {
		return session.Failure(call, err)
	}
	if ok {
		return session.Failure(call, errExists)
	}
	if _, err := s.q().ExecContext(ctx,
		`INSERT INTO objects (path, parent, name, type) VALUES (?, ?, ?, ?)`,
		p, parentPath, name, adminType); err != nil {
		return session.Failure(call, err)
	}
	return nil
}

// Delete removes name under parentPath, which must be current, with its
// descendants and their attributes.
func (s *Store) Delete(ctx context.Context, name, parentPath string) error {
	parentPath = session.Clean(parentPath)
	call := session.Call{Op: session.OpDelete, Path: parentPath, Name: name}
	if err := s.requireCurrent(call, parentPath); err != nil {
		return err
	}
	p := session.Join(parentPath, name)
	if err := s.requireObject(ctx, call, p); err != nil {
		return err
	}
	prefix := p + "/"
	n := utf8.RuneCountInString(prefix)
	for _, table := range []string{"attributes", "objects"} {
		stmt := fmt.Sprintf(`DELETE FROM %s WHERE path = ? OR substr(path, 1, ?) = ?`, table)
		if _, err := s.q().ExecContext(ctx, stmt, p, n, prefix); err != nil {
			return session.Failure(call, err)
		}
	}
	return nil
}

// ListInstances returns the instance names directly under p in creation order.
func (s *Store) ListInstances(ctx context.Context, p string) ([]string, error) {
	p = session.Clean(p)
	call := session.Call{Op: session.OpList, Path: p}
	rows, err := s.q().QueryContext(ctx,
		`SELECT name FROM objects WHERE parent = ? AND path != '/' ORDER BY rowid`, p)
	if err != nil {
		return nil, session.Failure(call, err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, session.Failure(call, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, session.Failure(call, err)
	}
	return names, nil
}

// AdminType returns the type instance p was created with.
func (s *Store) AdminType(ctx context.Context, p string) (string, error) {
	p = session.Clean(p)
	call := session.Call{Op: session.OpAdminType, Path: p}
	var typ string
	err := s.q().QueryRowContext(ctx, `SELECT type FROM objects WHERE path = ?`, p).Scan(&typ)
	if errors.Is(err, sql.ErrNoRows) {
		return "", session.Failure(call, errNoSuchPath)
	}
	if err != nil {
		return "", session.Failure(call, err)
	}
	return typ, nil
}

// GetAttribute returns attribute name of p, which must be current.
func (s *Store) GetAttribute(ctx context.Context, p, name string) (any, error) {
	p = session.Clean(p)
	call := session.Call{Op: session.OpGet, Path: p, Name: name}
	if err := s.requireCurrent(call, p); err != nil {
		return nil, err
	}
	if err := s.requireObject(ctx, call, p); err != nil {
		return nil, err
	}
	var raw string
	err := s.q().QueryRowContext(ctx,
		`SELECT value FROM attributes WHERE path = ? AND name = ?`, p, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, session.Failure(call, err)
	}
	v, err := decodeValue(raw)
	if err != nil {
		return nil, session.Failure(call, err)
	}
	return v, nil
}

// SetAttribute sets attribute name of p, which must be current. A nil value
// removes the stored row.
func (s *Store) SetAttribute(ctx context.Context, p, name string, value any) error {
	p = session.Clean(p)
	call := session.Call{Op: session.OpSet, Path: p, Name: name, Value: value}
	if err := s.requireCurrent(call, p); err != nil {
		return err
	}
	if err := s.requireObject(ctx, call, p); err != nil {
		return err
	}
	if value == nil {
		if _, err := s.q().ExecContext(ctx,
			`DELETE FROM attributes WHERE path = ? AND name = ?`, p, name); err != nil {
			return session.Failure(call, err)
		}
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return session.Failure(call, err)
	}
	if _, err := s.q().ExecContext(ctx,
		`INSERT OR REPLACE INTO attributes (path, name, value) VALUES (?, ?, ?)`,
		p, name, string(raw)); err != nil {
		return session.Failure(call, err)
	}
	return nil
}

// BeginEdit opens a transaction.
func (s *Store) BeginEdit(ctx context.Context) error {
	call := session.Call{Op: session.OpBeginEdit}
	if s.tx != nil {
		return session.Failure(call, errEditing)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return session.Failure(call, err)
	}
	s.tx = tx
	return nil
}

// Commit commits the open transaction.
func (s *Store) Commit(context.Context) error {
	call := session.Call{Op: session.OpCommit}
	if s.tx == nil {
		return session.Failure(call, errNotEditing)
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return session.Failure(call, err)
	}
	return nil
}

// Discard rolls back the open transaction.
func (s *Store) Discard(ctx context.Context) error {
	call := session.Call{Op: session.OpDiscard}
	if s.tx == nil {
		return session.Failure(call, errNotEditing)
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil {
		return session.Failure(call, err)
	}
	if ok, err := s.exists(ctx, s.current); err == nil && !ok {
		if ok, _ = s.exists(ctx, path.Dir(s.current)); !ok {
			s.current = "/"
		}
	}
	return nil
}

// Close rolls back any open transaction and closes the database.
func (s *Store) Close(context.Context) error {
	call := session.Call{Op: session.OpClose}
	var errs []error
	if s.tx != nil {
		errs = append(errs, s.tx.Rollback())
		s.tx = nil
	}
	errs = append(errs, s.db.Close())
	if err := errors.Join(errs...); err != nil {
		return session.Failure(call, err)
	}
	return nil
}

// decodeValue restores a stored JSON value, keeping mapping key order.
// Integral numbers come back as int64.
func decodeValue(raw string) (any, error) {
	doc, err := model.Parse([]byte(`{"v": ` + raw + `}`))
	if err != nil {
		return nil, fmt.Errorf("decode attribute value: %w", err)
	}
	v, _ := doc.Get("v")
	return normalize(v), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case uint64:
		return int64(t) //nolint:gosec // stored values originate from int64
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	case *model.Dict:
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			t.Set(k, normalize(val))
		}
		return t
	default:
		return v
	}
}
