package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/store/migrations"
)

// sortableTime is fixed width so that text ordering matches time ordering.
const sortableTime = "2006-01-02T15:04:05.000000000Z"

type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore opens (or creates) the database file at path and applies
// the embedded schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// single connection: the name check and the insert must not interleave
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:   db,
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
	}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) migrate(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, encoding, metadata, created_at, updated_at
		FROM records
		ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, unavailable("list records", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list records", err)
	}
	return records, nil
}

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (model.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, encoding, metadata, created_at, updated_at
		FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, model.ErrNotFound
	}
	return rec, err
}

func (s *SQLiteStore) InsertRecord(ctx context.Context, name string, encoding []float64, metadata model.Metadata) (string, error) {
	name, err := validateInsert(name, encoding)
	if err != nil {
		return "", err
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", unavailable("begin insert", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE name = ?`, name).Scan(&exists); err != nil {
		return "", unavailable("check name", err)
	}
	if exists > 0 {
		return "", model.ErrDuplicateName
	}

	id := uuid.New().String()
	now := s.stamp()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (id, name, encoding, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, float64SliceToBytes(encoding), string(metaJSON), now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", model.ErrDuplicateName
		}
		return "", unavailable("insert record", err)
	}

	if err := insertEvent(ctx, tx, model.ActionRegistration, id, name, now, metaJSON); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", unavailable("commit insert", err)
	}
	return id, nil
}

func (s *SQLiteStore) DeleteRecord(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, unavailable("begin delete", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var name string
	err = tx.QueryRowContext(ctx, `SELECT name FROM records WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("find record", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
		return false, unavailable("delete record", err)
	}
	if err := insertEvent(ctx, tx, model.ActionDeletion, id, name, s.stamp(), []byte("{}")); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, unavailable("commit delete", err)
	}
	return true, nil
}

func (s *SQLiteStore) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, record_id, record_name, timestamp, details
		FROM events
		ORDER BY timestamp DESC, seq DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, unavailable("list events", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var (
			e       model.Event
			action  string
			ts      string
			details string
		)
		if err := rows.Scan(&e.ID, &action, &e.RecordID, &e.RecordName, &ts, &details); err != nil {
			return nil, unavailable("scan event", err)
		}
		e.Action = model.Action(action)
		if e.Timestamp, err = time.Parse(sortableTime, ts); err != nil {
			return nil, fmt.Errorf("parsing event timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
			return nil, fmt.Errorf("unmarshalling event details: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list events", err)
	}
	return events, nil
}

func (s *SQLiteStore) stamp() string {
	return s.now().UTC().Format(sortableTime)
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func insertEvent(ctx context.Context, tx *sql.Tx, action model.Action, recordID, name, ts string, details []byte) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO events (id, action, record_id, record_name, timestamp, details)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), string(action), recordID, name, ts, string(details))
	if err != nil {
		return unavailable("insert event", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (model.Record, error) {
	var (
		rec      model.Record
		encoding []byte
		meta     string
		created  string
		updated  string
	)
	if err := row.Scan(&rec.ID, &rec.Name, &encoding, &meta, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, unavailable("scan record", err)
	}

	var err error
	rec.Encoding = bytesToFloat64Slice(encoding)
	if err = json.Unmarshal([]byte(meta), &rec.Metadata); err != nil {
		return rec, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(sortableTime, created); err != nil {
		return rec, fmt.Errorf("parsing created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(sortableTime, updated); err != nil {
		return rec, fmt.Errorf("parsing updated_at: %w", err)
	}
	return rec, nil
}

func float64SliceToBytes(floats []float64) []byte {
	buf := make([]byte, len(floats)*8)
	for i, f := range floats {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func bytesToFloat64Slice(data []byte) []float64 {
	floats := make([]float64, len(data)/8)
	for i := range floats {
		floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return floats
}
