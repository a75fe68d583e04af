package entity

import "time"

type Reminder struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	DueAt     time.Time `json:"due_at"`
}
