// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"heritagepk/internal/models"
)

// TripStore manages trips and their ordered itinerary stops.
type TripStore struct {
	db *sql.DB
}

// NewTripStore returns a new TripStore.
func NewTripStore(db *sql.DB) *TripStore {
	return &TripStore{db: db}
}

const tripColumns = `id, owner_id, name, start_date, created_at, updated_at`

// Create inserts a new trip and returns it.
func (s *TripStore) Create(ctx context.Context, t *models.Trip) (*models.Trip, error) {
	result := &models.Trip{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO trips (owner_id, name, start_date)
		VALUES ($1, $2, $3)
		RETURNING `+tripColumns,
		t.OwnerID, t.Name, t.StartDate,
	).Scan(&result.ID, &result.OwnerID, &result.Name, &result.StartDate,
		&result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	return result, nil
}

// Get retrieves a trip with its stops ordered by (day, position).
// Returns nil if not found.
func (s *TripStore) Get(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	t := &models.Trip{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+tripColumns+` FROM trips WHERE id = $1
	`, id).Scan(&t.ID, &t.OwnerID, &t.Name, &t.StartDate, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ts.trip_id, ts.site_id, ts.day, ts.position, ts.note, st.name
		FROM trip_stops ts
		JOIN sites st ON st.id = ts.site_id
		WHERE ts.trip_id = $1
		ORDER BY ts.day, ts.position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get trip stops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stop models.TripStop
		err := rows.Scan(&stop.TripID, &stop.SiteID, &stop.Day, &stop.Position,
			&stop.Note, &stop.SiteName)
		if err != nil {
			return nil, fmt.Errorf("scan trip stop: %w", err)
		}
		t.Stops = append(t.Stops, stop)
	}
	return t, rows.Err()
}

// ListByOwner returns a user's trips, newest first.
func (s *TripStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Trip, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tripColumns+` FROM trips WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var items []models.Trip
	for rows.Next() {
		var t models.Trip
		err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.StartDate, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// ReplaceStops swaps a trip's itinerary for the given set, renumbering
// positions contiguously from 0 within each day, in one transaction.
func (s *TripStore) ReplaceStops(ctx context.Context, tripID uuid.UUID, stops []models.TripStop) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace stops: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trip_stops WHERE trip_id = $1`, tripID); err != nil {
		return fmt.Errorf("replace stops: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trip_stops (trip_id, site_id, day, position, note)
		VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return fmt.Errorf("replace stops: prepare: %w", err)
	}
	defer stmt.Close()

	positions := make(map[int]int) // day → next position
	for _, stop := range stops {
		pos := positions[stop.Day]
		positions[stop.Day] = pos + 1
		if _, err := stmt.ExecContext(ctx, tripID, stop.SiteID, stop.Day, pos, stop.Note); err != nil {
			return fmt.Errorf("replace stops: insert day %d pos %d: %w", stop.Day, pos, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE trips SET updated_at = NOW() WHERE id = $1`, tripID); err != nil {
		return fmt.Errorf("replace stops: touch trip: %w", err)
	}

	return tx.Commit()
}

// Delete removes a trip; its stops cascade.
func (s *TripStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return nil
}
