package services

import (
	"errors"
	"fmt"
)

// Error classes. Every core operation returns either a success payload or a
// *LedgerError wrapping exactly one of these, so callers can switch on
// errors.Is without parsing messages.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPrecondition = errors.New("precondition failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)

type LedgerError struct {
	Err     error  // error class
	Message string // short human-readable message, safe to show to users
}

func (e *LedgerError) Error() string {
	return e.Message
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

func GiftNotFound(id string) *LedgerError {
	return &LedgerError{Err: ErrNotFound, Message: fmt.Sprintf("gift %s does not exist", id)}
}

func UserNotFound(id string) *LedgerError {
	return &LedgerError{Err: ErrNotFound, Message: fmt.Sprintf("user %s does not exist", id)}
}

func AlreadyCheckedIn() *LedgerError {
	return &LedgerError{Err: ErrConflict, Message: "already checked in today"}
}

func AlreadyHasAdmins() *LedgerError {
	return &LedgerError{Err: ErrConflict, Message: "this context already has an admin"}
}

func InsufficientStock() *LedgerError {
	return &LedgerError{Err: ErrPrecondition, Message: "not enough stock left"}
}

func InsufficientPoints(need, have int) *LedgerError {
	return &LedgerError{Err: ErrPrecondition, Message: fmt.Sprintf("not enough points: need %d, have %d", need, have)}
}

func InsufficientCodes() *LedgerError {
	return &LedgerError{Err: ErrPrecondition, Message: "no codes left for this gift"}
}

func OverPersonalLimit(limit int) *LedgerError {
	return &LedgerError{Err: ErrPrecondition, Message: fmt.Sprintf("personal redemption limit of %d reached", limit)}
}

func WrongGiftType(id string) *LedgerError {
	return &LedgerError{Err: ErrPrecondition, Message: fmt.Sprintf("gift %s is not code-backed", id)}
}

func DeliveryRequired() *LedgerError {
	return &LedgerError{Err: ErrPrecondition, Message: "private delivery failed, redemption aborted"}
}

func InvalidArgument(message string) *LedgerError {
	return &LedgerError{Err: ErrPrecondition, Message: message}
}

func NotAuthorized() *LedgerError {
	return &LedgerError{Err: ErrUnauthorized, Message: "admin rights required"}
}

func SaveFailed(err error) *LedgerError {
	return &LedgerError{Err: fmt.Errorf("%w: %v", ErrStorage, err), Message: "could not persist the change, nothing was applied"}
}
