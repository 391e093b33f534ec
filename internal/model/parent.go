package model

import "time"

// Parent owns zero or more students. Phone and email are unique across parents.
type Parent struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt *time.Time

	// Filled by detail queries only
	Students []*Student
}
