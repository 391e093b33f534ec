package model

import (
	"fmt"
	"time"
)

type RegistrationStatus int

const (
	RegistrationCancelled RegistrationStatus = 0
	RegistrationActive    RegistrationStatus = 1
)

// ParseRegistrationStatus converts a stored value into a RegistrationStatus.
func ParseRegistrationStatus(v int) (RegistrationStatus, error) {
	switch s := RegistrationStatus(v); s {
	case RegistrationCancelled, RegistrationActive:
		return s, nil
	}
	return 0, fmt.Errorf("unknown registration status %d", v)
}

func (s RegistrationStatus) String() string {
	switch s {
	case RegistrationCancelled:
		return "CANCELLED"
	case RegistrationActive:
		return "ACTIVE"
	}
	return fmt.Sprintf("RegistrationStatus(%d)", int(s))
}

// ClassRegistration links a student to a class. It is only ever created by enrollment.
type ClassRegistration struct {
	ID           int64
	ClassID      int64
	StudentID    int64
	Status       RegistrationStatus
	RegisteredAt time.Time

	// Filled by detail queries only
	Class   *Class
	Student *Student
}

// IsActive reports whether the registration counts toward capacity and scheduling.
func (r *ClassRegistration) IsActive() bool {
	return r.Status == RegistrationActive
}
