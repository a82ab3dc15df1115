package model

import (
	"fmt"
	"time"
)

// Schedule is a tracked recurring item that the user has chosen to
// materialize from a detected pattern (or created by hand).
type Schedule struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	NextOccurrence time.Time
	ID             string
	Name           string
	CounterpartyID string
	AccountID      string
	Frequency      Frequency
	Amount         float64
	Active         bool
}

// Validate ensures the schedule has the fields required for tracking.
func (s *Schedule) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schedule name is required")
	}
	if s.CounterpartyID == "" {
		return fmt.Errorf("counterparty id is required")
	}
	if s.AccountID == "" {
		return fmt.Errorf("account id is required")
	}
	if _, err := ParseFrequency(string(s.Frequency)); err != nil {
		return err
	}
	return nil
}

// ScheduleKey identifies a tracked (counterparty, account) pair, used to
// de-duplicate detection results against existing schedules.
type ScheduleKey struct {
	ScheduleID     string
	CounterpartyID string
	AccountID      string
}
