package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/model"
	"github.com/tasnim/travelmate/internal/repository"
)

// compile-time check that *ItineraryRepo implements repository.ItineraryRepository
var _ repository.ItineraryRepository = (*ItineraryRepo)(nil)

const itineraryColumns = `id, user_id, destination, start_date, end_date,
	accommodation, activities, created_at, updated_at`

// Create inserts a new itinerary, generating the id and timestamps.
// Date validation (start <= end) happens in the service layer before this
// is reached.
func (r *ItineraryRepo) Create(ctx context.Context, itin *model.Itinerary) error {
	now := time.Now().UTC()
	itin.ID = xid.New().String()
	itin.CreatedAt = now
	itin.UpdatedAt = now

	activities, err := encodeTags(itin.Activities)
	if err != nil {
		return err
	}

	_, err = r.db.conn.ExecContext(ctx,
		`INSERT INTO itineraries (`+itineraryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		itin.ID,
		itin.UserID,
		itin.Destination,
		itin.StartDate,
		itin.EndDate,
		itin.Accommodation,
		activities,
		itin.CreatedAt,
		itin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting itinerary for user %s: %w", itin.UserID, err)
	}

	return nil
}

// GetOwned fetches an itinerary scoped to its owner. The WHERE clause joins
// id AND user_id, so a record that exists but belongs to someone else is
// indistinguishable from one that doesn't exist — both return the same
// NotFound.
func (r *ItineraryRepo) GetOwned(ctx context.Context, ownerID, id string) (*model.Itinerary, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+itineraryColumns+` FROM itineraries WHERE id = ? AND user_id = ?`,
		id, ownerID)
	itin, err := scanItinerary(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("itinerary", id)
		}
		return nil, fmt.Errorf("sqlite: getting itinerary %s: %w", id, err)
	}
	return itin, nil
}

// ListByOwner returns all of one user's itineraries, newest trip first.
func (r *ItineraryRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Itinerary, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+itineraryColumns+` FROM itineraries
		 WHERE user_id = ? ORDER BY start_date DESC, id`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing itineraries for user %s: %w", ownerID, err)
	}
	defer rows.Close()

	var itins []model.Itinerary
	for rows.Next() {
		itin, err := scanItinerary(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning itinerary: %w", err)
		}
		itins = append(itins, *itin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating itineraries: %w", err)
	}
	return itins, nil
}

// Update writes back a full itinerary record. The caller (service layer)
// fetched it through GetOwned and merged the partial update, so ownership is
// already established.
func (r *ItineraryRepo) Update(ctx context.Context, itin *model.Itinerary) error {
	itin.UpdatedAt = time.Now().UTC()

	activities, err := encodeTags(itin.Activities)
	if err != nil {
		return err
	}

	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE itineraries SET destination = ?, start_date = ?, end_date = ?,
		 accommodation = ?, activities = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		itin.Destination,
		itin.StartDate,
		itin.EndDate,
		itin.Accommodation,
		activities,
		itin.UpdatedAt,
		itin.ID,
		itin.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating itinerary %s: %w", itin.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("itinerary", itin.ID)
	}
	return nil
}

// Delete removes an itinerary, owner-scoped exactly like GetOwned.
func (r *ItineraryRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM itineraries WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting itinerary %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("itinerary", id)
	}
	return nil
}

// FindMatches runs the discovery query: other users' itineraries at the
// destination whose closed date interval intersects the query window.
//
// Overlap predicate for closed intervals:
//
//	itinerary.start_date <= query.end AND itinerary.end_date >= query.start
//
// Destination comparison is case-insensitive equality. The owner's public
// fields ride along via the JOIN; HasConnected stays false here — the
// service fills it from the message ledger in one batched query.
func (r *ItineraryRepo) FindMatches(ctx context.Context, requesterID, destination string, start, end time.Time) ([]model.TravelMatch, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT i.user_id, u.name, u.status, u.profile_pic_url,
		        i.destination, i.start_date, i.end_date
		 FROM itineraries i
		 JOIN users u ON u.id = i.user_id
		 WHERE i.user_id != ?
		   AND LOWER(i.destination) = LOWER(?)
		   AND i.start_date <= ?
		   AND i.end_date >= ?
		 ORDER BY i.start_date, i.id`,
		requesterID, destination, end, start)
	if err != nil {
		return nil, fmt.Errorf("sqlite: finding matches for %q: %w", destination, err)
	}
	defer rows.Close()

	var matches []model.TravelMatch
	for rows.Next() {
		var m model.TravelMatch
		err := rows.Scan(
			&m.UserID,
			&m.UserName,
			&m.UserStatus,
			&m.ProfilePicURL,
			&m.Destination,
			&m.StartDate,
			&m.EndDate,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning travel match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating travel matches: %w", err)
	}
	return matches, nil
}

func scanItinerary(s scanner) (*model.Itinerary, error) {
	var (
		itin       model.Itinerary
		activities string
	)
	err := s.Scan(
		&itin.ID,
		&itin.UserID,
		&itin.Destination,
		&itin.StartDate,
		&itin.EndDate,
		&itin.Accommodation,
		&activities,
		&itin.CreatedAt,
		&itin.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	itin.Activities, err = decodeTags(activities)
	if err != nil {
		return nil, err
	}
	return &itin, nil
}
