package model

import (
	"fmt"
	"time"
)

type Gender int

const (
	GenderMale   Gender = 0
	GenderFemale Gender = 1
	GenderOther  Gender = 2
)

// ParseGender converts a stored value into a Gender.
func ParseGender(v int) (Gender, error) {
	switch g := Gender(v); g {
	case GenderMale, GenderFemale, GenderOther:
		return g, nil
	}
	return 0, fmt.Errorf("unknown gender %d", v)
}

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	case GenderOther:
		return "other"
	}
	return fmt.Sprintf("Gender(%d)", int(g))
}

// Student belongs to exactly one parent. ParentID is set at creation and never changes.
type Student struct {
	ID           int64
	Name         string
	DateOfBirth  time.Time
	Gender       Gender
	CurrentGrade string
	ParentID     int64
	CreatedAt    time.Time
	UpdatedAt    *time.Time

	// Filled by detail queries only
	Parent        *Parent
	Registrations []*ClassRegistration
}
