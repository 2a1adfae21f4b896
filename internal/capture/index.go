package capture

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Index is a secondary sqlite index over captured sessions and
// packets. Writes go through a buffered single-writer goroutine so a
// bursty session never stalls on the database.
type Index struct {
	db *sql.DB

	ch   chan indexReq
	wg   sync.WaitGroup
	once sync.Once
}

type indexReqKind int

const (
	reqSession indexReqKind = iota + 1
	reqPacket
)

type indexReq struct {
	kind indexReqKind

	sessionID string
	startedAt time.Time
	protocol  int32

	packet Record
}

// SessionRow summarises one recorded session.
type SessionRow struct {
	ID        string
	StartedAt string
	Protocol  int32
	Packets   int64
}

func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("capture: empty index path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	idx := &Index{
		db: db,
		ch: make(chan indexReq, 8192),
	}
	idx.wg.Add(1)
	go func() {
		defer idx.wg.Done()
		idx.loop()
	}()
	return idx, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			protocol   INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS packets (
			session_id TEXT NOT NULL,
			ts         TEXT NOT NULL,
			direction  TEXT NOT NULL,
			opcode     INTEGER NOT NULL,
			name       TEXT NOT NULL,
			size       INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_packets_session ON packets(session_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (idx *Index) loop() {
	for req := range idx.ch {
		switch req.kind {
		case reqSession:
			_, _ = idx.db.Exec(
				`INSERT OR REPLACE INTO sessions (id, started_at, protocol) VALUES (?, ?, ?)`,
				req.sessionID, req.startedAt.Format(time.RFC3339Nano), req.protocol,
			)
		case reqPacket:
			p := req.packet
			_, _ = idx.db.Exec(
				`INSERT INTO packets (session_id, ts, direction, opcode, name, size) VALUES (?, ?, ?, ?, ?, ?)`,
				p.SessionID, p.TS.Format(time.RFC3339Nano), p.Direction, p.Opcode, p.Name, p.Size,
			)
		}
	}
}

func (idx *Index) RecordSession(id string, startedAt time.Time, proto int32) {
	idx.ch <- indexReq{kind: reqSession, sessionID: id, startedAt: startedAt, protocol: proto}
}

func (idx *Index) RecordPacket(rec Record) {
	// Drop rather than block when the writer falls behind.
	select {
	case idx.ch <- indexReq{kind: reqPacket, packet: rec}:
	default:
	}
}

// Close drains pending writes and closes the database.
func (idx *Index) Close() error {
	idx.once.Do(func() { close(idx.ch) })
	idx.wg.Wait()
	return idx.db.Close()
}

// Sessions lists recorded sessions with their packet counts, newest
// first.
func (idx *Index) Sessions() ([]SessionRow, error) {
	rows, err := idx.db.Query(`
		SELECT s.id, s.started_at, s.protocol, COUNT(p.session_id)
		FROM sessions s LEFT JOIN packets p ON p.session_id = s.id
		GROUP BY s.id ORDER BY s.started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Protocol, &r.Packets); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
