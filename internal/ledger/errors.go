package ledger

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyClaimed      = errors.New("bonus already claimed")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrAlreadyProcessed    = errors.New("transaction already processed")
)
