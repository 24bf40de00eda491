package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"indexo/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS index_files (
	id             TEXT PRIMARY KEY,
	project_id     TEXT NOT NULL DEFAULT '',
	figma_file_key TEXT NOT NULL DEFAULT '',
	file_name      TEXT NOT NULL DEFAULT '',
	index_data     TEXT NOT NULL,
	uploaded_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS index_files_uploaded_at ON index_files (uploaded_at DESC);
`

// SQLiteStore keeps index records in a single SQLite table
type SQLiteStore struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	log  *zap.Logger
	now  func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path. ":memory:" opens
// a private in-memory database.
func OpenSQLite(path string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		conn *sqlite.Conn
		err  error
	)
	if path == ":memory:" {
		conn, err = sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenMemory)
	} else {
		conn, err = sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	}
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Debug("Opened index database", zap.String("path", path))
	return &SQLiteStore{conn: conn, log: log, now: time.Now}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (models.IndexRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	var (
		rec   models.IndexRecord
		found bool
	)
	err := sqlitex.Execute(s.conn,
		`SELECT id, project_id, figma_file_key, file_name, index_data, uploaded_at FROM index_files WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				rec = scanRecord(stmt)
				found = true
				return nil
			},
		})
	if err != nil {
		return models.IndexRecord{}, fmt.Errorf("get index file %s: %w", id, err)
	}
	if !found {
		return models.IndexRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.IndexSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	summaries := make([]models.IndexSummary, 0)
	err := sqlitex.Execute(s.conn,
		`SELECT id, project_id, figma_file_key, file_name, index_data, uploaded_at FROM index_files ORDER BY uploaded_at DESC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				summaries = append(summaries, scanRecord(stmt).Summarize())
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("list index files: %w", err)
	}
	return summaries, nil
}

func (s *SQLiteStore) Put(ctx context.Context, upload models.Upload) (models.IndexRecord, error) {
	rec, err := newRecord(upload, s.now())
	if err != nil {
		return models.IndexRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	err = sqlitex.Execute(s.conn,
		`INSERT INTO index_files (id, project_id, figma_file_key, file_name, index_data, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{rec.ID, rec.ProjectID, rec.FigmaFileKey, rec.FileName, string(rec.IndexData), rec.UploadedAt.UnixNano()},
		})
	if err != nil {
		return models.IndexRecord{}, fmt.Errorf("insert index file: %w", err)
	}

	s.log.Info("Stored index file", zap.String("id", rec.ID), zap.String("file", rec.FileName))
	return rec, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

func scanRecord(stmt *sqlite.Stmt) models.IndexRecord {
	return models.IndexRecord{
		ID:           stmt.ColumnText(0),
		ProjectID:    stmt.ColumnText(1),
		FigmaFileKey: stmt.ColumnText(2),
		FileName:     stmt.ColumnText(3),
		IndexData:    json.RawMessage(stmt.ColumnText(4)),
		UploadedAt:   time.Unix(0, stmt.ColumnInt64(5)).UTC(),
	}
}
