package domain

import "time"

// Tag is an operator-managed label. Names are unique; the automation engine
// may create tags it references but never renames or recolors them.
type Tag struct {
	ID        string
	Name      string
	Color     string
	CreatedAt time.Time
}
