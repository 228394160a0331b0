package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
  key        TEXT PRIMARY KEY,
  payload    BLOB NOT NULL,
  written_at INTEGER NOT NULL
);
`

const upsertEntry = `
INSERT INTO cache_entries (key, payload, written_at)
VALUES (:key, :payload, :written_at)
ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, written_at = excluded.written_at
`

type sqliteRow struct {
	Key       string `db:"key"`
	Payload   []byte `db:"payload"`
	WrittenAt int64  `db:"written_at"`
}

// SQLiteStore persists records in a single SQLite table.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create sqlite dir")
		}
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create sqlite schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Record, bool, error) {
	var row sqliteRow
	err := s.db.GetContext(ctx, &row, `SELECT key, payload, written_at FROM cache_entries WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, errors.Wrapf(err, "get %s", key)
	}
	rec, err := row.record()
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Set upserts the record in a single statement.
func (s *SQLiteStore) Set(ctx context.Context, rec Record) error {
	payload, err := EncodeRecord(rec)
	if err != nil {
		return errors.Wrapf(err, "encode %s", rec.Key)
	}
	_, err = s.db.NamedExecContext(ctx, upsertEntry, sqliteRow{
		Key:       rec.Key,
		Payload:   payload,
		WrittenAt: rec.WrittenAt.UnixNano(),
	})
	return errors.Wrapf(err, "upsert %s", rec.Key)
}

func (s *SQLiteStore) List(ctx context.Context, prefix string) ([]Record, error) {
	var rows []sqliteRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT key, payload, written_at FROM cache_entries WHERE key LIKE ? ESCAPE '\' ORDER BY key`,
		likePrefix(prefix))
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", prefix)
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (r sqliteRow) record() (Record, error) {
	rec, err := DecodeRecord(r.Payload)
	if err != nil {
		return Record{}, errors.Wrapf(err, "decode %s", r.Key)
	}
	rec.Key = r.Key
	rec.WrittenAt = time.Unix(0, r.WrittenAt).UTC()
	return rec, nil
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
