// Package store persists transcripts. The log is append-only: records are
// inserted and listed, never updated or deleted.
package store

import (
	"context"
	"time"
)

// Record is one persisted transcript.
type Record struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Source    string    `gorm:"size:255;index" json:"-"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Date      string    `gorm:"size:100;not null" json:"date"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"-"`
}

func (Record) TableName() string { return "transcriptions" }

// Reader lists stored transcripts in insertion order.
type Reader interface {
	ListAll(ctx context.Context) ([]Record, error)
}

// Sink is the durable transcript log.
type Sink interface {
	Reader
	// Insert appends rec and returns it with ID and CreatedAt filled in.
	Insert(ctx context.Context, rec Record) (Record, error)
	Close() error
}
