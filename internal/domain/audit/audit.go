// Package audit describes the request audit trail: who called which
// mutating endpoint with what payload.
package audit

import (
	"context"
	"time"

	"backoffice/internal/core/id"
)

// Entry is one audited API request.
type Entry struct {
	ID         id.ID     `db:"id" json:"id"`
	UserID     *id.ID    `db:"user_id" json:"userId,omitempty"`
	Method     string    `db:"method" json:"method"`
	Endpoint   string    `db:"endpoint" json:"endpoint"`
	StatusCode int       `db:"status_code" json:"statusCode"`
	Payload    []byte    `db:"payload" json:"payload,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NewEntry stamps an entry with a fresh id and the current time.
func NewEntry(userID *id.ID, method, endpoint string, status int, payload []byte) Entry {
	return Entry{
		ID:         id.New(),
		UserID:     userID,
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: status,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}
}
