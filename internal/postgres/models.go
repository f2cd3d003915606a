package postgres

import (
	"time"

	"github.com/uptrace/bun"
)

// An entity represents a stored record in the database.
type entity struct {
	bun.BaseModel `bun:"table:entities"`

	Seq       int64     `bun:",autoincrement,unique"`
	Kind      string    `bun:",pk"`
	ID        string    `bun:",pk"`
	Data      string    `bun:"type:jsonb,notnull"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:",nullzero"`
}
