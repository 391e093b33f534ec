package service

import (
	"errors"
	"fmt"
)

// Kind tells the caller how a failed operation should be reported.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindValidation:
		return "Validation"
	case KindInternal:
		return "Internal"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a business failure. Reason is a stable machine-readable code,
// Message is the human-readable text shown to the user.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same kind and reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

func notFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Reason: entity, Message: entity + " not found"}
}

func conflict(reason, message string) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Message: message}
}

var (
	ErrParentNotFound       = notFound("Parent")
	ErrStudentNotFound      = notFound("Student")
	ErrClassNotFound        = notFound("Class")
	ErrSubscriptionNotFound = notFound("Subscription")

	// Регистрация
	ErrAlreadyRegistered       = conflict("AlreadyRegistered", "student is already registered in this class")
	ErrClassFull               = conflict("ClassFull", "class is full")
	ErrScheduleConflict        = conflict("ScheduleConflict", "schedule conflict with another class of the student")
	ErrInvalidTimeRange        = conflict("InvalidTimeRange", "end time must be after start time")
	ErrCapacityBelowEnrollment = conflict("CapacityBelowEnrollment", "max students is below the number of registered students")

	// Абонементы
	ErrInvalidDateRange              = conflict("InvalidDateRange", "end date must not be before start date")
	ErrSubscriptionExpired           = conflict("SubscriptionExpired", "subscription has expired")
	ErrSubscriptionNotActive         = conflict("SubscriptionNotActive", "subscription is not active")
	ErrSubscriptionSessionsExhausted = conflict("SubscriptionSessionsExhausted", "all sessions of the subscription are used")

	// Родители
	ErrDuplicateEmail  = conflict("DuplicateEmail", "a parent with this email already exists")
	ErrDuplicatePhone  = conflict("DuplicatePhone", "a parent with this phone already exists")
	ErrDuplicateParent = conflict("DuplicateParent", "a parent with this email or phone already exists")
)

// Validation builds a Validation error for malformed input.
func Validation(reason, message string) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Message: message}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
