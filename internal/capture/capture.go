package capture

// Package capture provides SQLite-based persistence for received stream frames.
// The database is opened lazily and created on first use.
// If opening the DB or executing queries fails, the package falls back to in-memory storage.

import (
	"database/sql"
	"os"
	"sync"

	_ "github.com/glebarez/go-sqlite"

	"github.com/PetitePluie-255/Antigravity-Manager/internal/logger"
)

var (
	mu     sync.Mutex
	frames []Frame // in-memory fallback

	dbOnce  sync.Once
	db      *sql.DB
	initErr error
)

// initDB lazily opens the SQLite database and creates the frames table if it doesn't exist.
func initDB() {
	var err error
	dbPath := os.Getenv("CAPTURE_DB_PATH")
	if dbPath == "" {
		dbPath = "capture.db"
	}
	db, err = sql.Open("sqlite", "file:"+dbPath+"?_busy_timeout=10000&_fk=1")
	if err != nil {
		initErr = err
		logger.L.Warn("sqlite open failed; using in-memory capture", "error", err)
		return
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS frames (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT,
        seq INTEGER,
        payload TEXT,
        created_at DATETIME
    );`); err != nil {
		initErr = err
		logger.L.Warn("sqlite table creation failed; using in-memory capture", "error", err)
		return
	}
	logger.L.Info("sqlite capture DB initialized")
}

// Save persists a frame to the SQLite database when available and always keeps
// an in-memory copy as fallback.
func Save(f Frame) {
	dbOnce.Do(initDB)

	if initErr == nil && db != nil {
		_, err := db.Exec(`INSERT INTO frames (session_id, seq, payload, created_at) VALUES (?,?,?,?);`, f.SessionID, f.Seq, f.Payload, f.CreatedAt)
		if err != nil {
			logger.L.Error("failed to store frame in sqlite; falling back to memory", "error", err)
		}
	}

	mu.Lock()
	frames = append(frames, f)
	mu.Unlock()
}

// List returns all frames of a session in arrival order.
func List(sessionID string) []Frame {
	dbOnce.Do(initDB)
	var out []Frame
	if initErr == nil && db != nil {
		rows, err := db.Query(`SELECT id, session_id, seq, payload, created_at FROM frames WHERE session_id = ? ORDER BY seq ASC;`, sessionID)
		if err == nil {
			defer rows.Close()
			for rows.Next() {
				var f Frame
				if err := rows.Scan(&f.ID, &f.SessionID, &f.Seq, &f.Payload, &f.CreatedAt); err == nil {
					out = append(out, f)
				}
			}
			return out
		}
	}
	mu.Lock()
	for _, f := range frames {
		if f.SessionID == sessionID {
			out = append(out, f)
		}
	}
	mu.Unlock()
	return out
}
