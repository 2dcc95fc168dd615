package models

import "time"

// Bureau represents one of the work sites shifts are scheduled against.
type Bureau struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BureauBoth is the filter value requesting a schedule across every bureau.
const BureauBoth = "both"
