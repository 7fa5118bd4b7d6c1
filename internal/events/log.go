// Package events appends audit rows for catalog and submission mutations.
// Writes are best effort: a failed append never fails the request.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

const (
	TypeTestCreated       = "test.created"
	TypeSubmissionCreated = "submission.created"
)

type Event struct {
	Type string
	Key  string // natural key: test or submission ID
	Data any    // JSON-encoded payload
}

type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

func (l *Log) Append(ctx context.Context, e Event) {
	if l == nil || l.db == nil {
		return
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		log.Printf("event log: encode %s %s: %v", e.Type, e.Key, err)
		return
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, string(data), time.Now().Unix())
	if err != nil {
		log.Printf("event log: append %s %s: %v", e.Type, e.Key, err)
	}
}
