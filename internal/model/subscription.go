package model

import (
	"fmt"
	"time"
)

type SubscriptionStatus int

const (
	SubscriptionExpired   SubscriptionStatus = 0
	SubscriptionActive    SubscriptionStatus = 1
	SubscriptionCompleted SubscriptionStatus = 2
)

// ParseSubscriptionStatus converts a stored value into a SubscriptionStatus.
func ParseSubscriptionStatus(v int) (SubscriptionStatus, error) {
	switch s := SubscriptionStatus(v); s {
	case SubscriptionExpired, SubscriptionActive, SubscriptionCompleted:
		return s, nil
	}
	return 0, fmt.Errorf("unknown subscription status %d", v)
}

func (s SubscriptionStatus) String() string {
	switch s {
	case SubscriptionExpired:
		return "EXPIRED"
	case SubscriptionActive:
		return "ACTIVE"
	case SubscriptionCompleted:
		return "COMPLETED"
	}
	return fmt.Sprintf("SubscriptionStatus(%d)", int(s))
}

// IsTerminal reports whether no further session use is possible.
func (s SubscriptionStatus) IsTerminal() bool {
	switch s {
	case SubscriptionExpired, SubscriptionCompleted:
		return true
	case SubscriptionActive:
		return false
	}
	return true
}

// Subscription is a prepaid package of sessions valid between StartDate and EndDate inclusive.
// Status is a cache of a derived value; see service.DeriveStatus.
type Subscription struct {
	ID            int64
	StudentID     int64
	PackageName   string
	StartDate     time.Time
	EndDate       time.Time
	TotalSessions int
	UsedSessions  int
	Status        SubscriptionStatus
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// RemainingSessions never goes below zero.
func (s *Subscription) RemainingSessions() int {
	if s.UsedSessions >= s.TotalSessions {
		return 0
	}
	return s.TotalSessions - s.UsedSessions
}

// HasValidDateRange reports whether EndDate is not before StartDate.
func (s *Subscription) HasValidDateRange() bool {
	return !DateOf(s.EndDate).Before(DateOf(s.StartDate))
}
