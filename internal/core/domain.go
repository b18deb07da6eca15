package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Bill is a recurring monthly obligation. The ID is immutable once
	// assigned; DueDay is a nominal day of month and is not validated
	// against the length of any particular month.
	Bill struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		DueDay int    `json:"dueDay"`
		Amount Money  `json:"amount"`
		Notes  string `json:"notes"`
	}

	// PushToken is one client's opt-in for push delivery. Any token value
	// is accepted and stored; format eligibility is checked at send time.
	PushToken struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
)

var (
	ErrNotFound      = errors.New("bill not found")
	ErrDuplicateID   = errors.New("duplicate bill id")
	ErrEmptyName     = errors.New("empty bill name")
	ErrInvalidDueDay = errors.New("invalid due day")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMonth  = errors.New("invalid month key")
	ErrEmptyToken    = errors.New("empty push token")
)

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.DueDay < 1 || b.DueDay > 31 {
		return ErrInvalidDueDay
	}
	if b.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// monthKeyLayout is the YYYY-MM month key format used throughout.
const monthKeyLayout = "2006-01"

// MonthKey returns the zero-padded YYYY-MM key for the given instant.
func MonthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// ValidateMonthKey checks a caller-supplied month key.
func ValidateMonthKey(key string) error {
	if _, err := time.Parse(monthKeyLayout, key); err != nil {
		return ErrInvalidMonth
	}
	return nil
}
