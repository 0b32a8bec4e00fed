package models

import "time"

// Upload is a user-supplied dataset file kept as raw bytes.
type Upload struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Content   []byte    `json:"-"`
}
