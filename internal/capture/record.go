package capture

import "time"

// Frame is a single received stream payload persisted for later inspection.
type Frame struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
