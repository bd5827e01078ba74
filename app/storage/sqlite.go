package storage

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var _ Interface = &SQLiteChatStorage{}

type SQLiteChatStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteChatStorage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS messages (
            id INTEGER NOT NULL,
            session_id TEXT NOT NULL,
            role TEXT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (session_id, id)
        );
        CREATE INDEX IF NOT EXISTS idx_session_id ON messages (session_id);
    `)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteChatStorage{db: db}, nil
}

func (s *SQLiteChatStorage) SaveMessage(ctx context.Context, record Record) error {
	var lastID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) FROM messages WHERE session_id = ?`, record.SessionID,
	).Scan(&lastID)
	if err != nil && err != sql.ErrNoRows {
		log.Printf("⚠️ Error retrieving last ID for session %s: %v", record.SessionID, err)
		return err
	}

	record.ID = lastID + 1

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, role, content, created_at)
		 VALUES (?, ?, ?, ?, datetime(?))`,
		record.ID, record.SessionID, record.Role, record.Content, record.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		log.Printf("⚠️ Error saving message for session %s: %v", record.SessionID, err)
		return err
	}
	return nil
}

func (s *SQLiteChatStorage) GetHistoryBySessionID(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM messages
		 WHERE session_id = ?
		 ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var createdAt string
		if err = rows.Scan(&r.ID, &r.SessionID, &r.Role, &r.Content, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteChatStorage) ClearSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID)
	return err
}

func (s *SQLiteChatStorage) Close() error {
	return s.db.Close()
}
