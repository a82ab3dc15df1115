package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robertromore/budget-sub019/internal/common"
	"github.com/robertromore/budget-sub019/internal/model"
)

// CreateSchedule persists a new tracked schedule. An empty ID is assigned
// a generated UUID. A schedule already tracking the same (counterparty,
// account) pair is a duplicate.
func (s *SQLiteStorage) CreateSchedule(ctx context.Context, schedule *model.Schedule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSchedule(schedule); err != nil {
		return err
	}

	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules (
			id, name, counterparty_id, account_id, frequency,
			amount, next_occurrence, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, schedule.ID, schedule.Name, schedule.CounterpartyID, schedule.AccountID,
		string(schedule.Frequency), schedule.Amount, schedule.NextOccurrence,
		schedule.Active, schedule.CreatedAt, schedule.UpdatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("schedule for %s/%s: %w",
				schedule.CounterpartyID, schedule.AccountID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// GetSchedule retrieves a schedule by ID.
func (s *SQLiteStorage) GetSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, counterparty_id, account_id, frequency,
		       amount, next_occurrence, active, created_at, updated_at
		FROM schedules
		WHERE id = ?
	`, id)

	schedule, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return schedule, nil
}

// GetSchedules returns all schedules ordered by name.
func (s *SQLiteStorage) GetSchedules(ctx context.Context) ([]model.Schedule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, counterparty_id, account_id, frequency,
		       amount, next_occurrence, active, created_at, updated_at
		FROM schedules
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var schedules []model.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, *schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}
	return schedules, nil
}

// UpdateSchedule updates an existing schedule.
func (s *SQLiteStorage) UpdateSchedule(ctx context.Context, schedule *model.Schedule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSchedule(schedule); err != nil {
		return err
	}
	if err := validateString(schedule.ID, "schedule.ID"); err != nil {
		return err
	}

	schedule.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE schedules
		SET name = ?, counterparty_id = ?, account_id = ?, frequency = ?,
		    amount = ?, next_occurrence = ?, active = ?, updated_at = ?
		WHERE id = ?
	`, schedule.Name, schedule.CounterpartyID, schedule.AccountID,
		string(schedule.Frequency), schedule.Amount, schedule.NextOccurrence,
		schedule.Active, schedule.UpdatedAt, schedule.ID)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("schedule %s: %w", schedule.ID, common.ErrNotFound)
	}
	return nil
}

// DeleteSchedule removes a schedule.
func (s *SQLiteStorage) DeleteSchedule(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("schedule %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// GetScheduleKeys returns the tracked (counterparty, account) pairs for
// active schedules, optionally restricted to the given accounts.
func (s *SQLiteStorage) GetScheduleKeys(ctx context.Context, accountIDs []string) ([]model.ScheduleKey, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, counterparty_id, account_id
		FROM schedules
		WHERE active = 1`
	var args []any

	if len(accountIDs) > 0 {
		placeholders := strings.Repeat("?,", len(accountIDs))
		query += " AND account_id IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, id := range accountIDs {
			args = append(args, id)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []model.ScheduleKey
	for rows.Next() {
		var key model.ScheduleKey
		if err := rows.Scan(&key.ScheduleID, &key.CounterpartyID, &key.AccountID); err != nil {
			return nil, fmt.Errorf("failed to scan schedule key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule keys: %w", err)
	}
	return keys, nil
}

func scanSchedule(row rowScanner) (*model.Schedule, error) {
	var schedule model.Schedule
	var frequency string
	var next sql.NullTime

	err := row.Scan(
		&schedule.ID, &schedule.Name, &schedule.CounterpartyID, &schedule.AccountID,
		&frequency, &schedule.Amount, &next, &schedule.Active,
		&schedule.CreatedAt, &schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	schedule.Frequency = model.Frequency(frequency)
	if next.Valid {
		schedule.NextOccurrence = next.Time
	}
	return &schedule, nil
}
