package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/model"
	"github.com/tasnim/travelmate/internal/repository"
)

// date parses a YYYY-MM-DD string the way the service layer does.
func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// createTestItinerary creates an itinerary and fails the test on error.
func createTestItinerary(t *testing.T, db *DB, ownerID, destination, start, end string) *model.Itinerary {
	t.Helper()
	itin := &model.Itinerary{
		UserID:      ownerID,
		Destination: destination,
		StartDate:   date(t, start),
		EndDate:     date(t, end),
	}
	if err := db.Itineraries().Create(context.Background(), itin); err != nil {
		t.Fatalf("failed to create test itinerary: %v", err)
	}
	return itin
}

// =========================================================================
// CRUD TESTS
// =========================================================================

func TestItineraryCreateAndGetOwned(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "o@example.com", "Omar", "Cairo", model.StatusTravelling)

	itin := &model.Itinerary{
		UserID:        owner.ID,
		Destination:   "Lisbon",
		StartDate:     date(t, "2025-07-01"),
		EndDate:       date(t, "2025-07-14"),
		Accommodation: "hostel near Alfama",
		Activities:    []string{"surfing", "tram 28"},
	}
	if err := db.Itineraries().Create(context.Background(), itin); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if itin.ID == "" {
		t.Fatal("Create() did not set itin.ID")
	}

	got, err := db.Itineraries().GetOwned(context.Background(), owner.ID, itin.ID)
	if err != nil {
		t.Fatalf("GetOwned() error = %v", err)
	}
	if got.Destination != "Lisbon" || got.Accommodation != "hostel near Alfama" {
		t.Errorf("GetOwned() = %+v, want fields round-tripped", got)
	}
	if len(got.Activities) != 2 {
		t.Errorf("Activities = %v, want 2 entries", got.Activities)
	}
	if !got.StartDate.Equal(date(t, "2025-07-01")) || !got.EndDate.Equal(date(t, "2025-07-14")) {
		t.Errorf("dates = %v..%v, want 2025-07-01..2025-07-14", got.StartDate, got.EndDate)
	}
}

func TestGetOwned_WrongOwnerLooksLikeMissing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "o@example.com", "Omar", "Cairo", model.StatusTravelling)
	intruder := createTestUser(t, db, "i@example.com", "Iris", "Cairo", model.StatusTravelling)
	itin := createTestItinerary(t, db, owner.ID, "Lisbon", "2025-07-01", "2025-07-14")

	wrongOwnerErr := func() error {
		_, err := db.Itineraries().GetOwned(ctx, intruder.ID, itin.ID)
		return err
	}()
	missingErr := func() error {
		_, err := db.Itineraries().GetOwned(ctx, intruder.ID, "does-not-exist")
		return err
	}()

	// Both must be ErrNotFound — a non-owner cannot distinguish "exists but
	// not mine" from "doesn't exist".
	if !errors.Is(wrongOwnerErr, apperror.ErrNotFound) {
		t.Errorf("wrong-owner error = %v, want ErrNotFound", wrongOwnerErr)
	}
	if !errors.Is(missingErr, apperror.ErrNotFound) {
		t.Errorf("missing-id error = %v, want ErrNotFound", missingErr)
	}
}

func TestItineraryListByOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "o@example.com", "Omar", "Cairo", model.StatusTravelling)
	other := createTestUser(t, db, "x@example.com", "Xena", "Cairo", model.StatusTravelling)
	createTestItinerary(t, db, owner.ID, "Lisbon", "2025-07-01", "2025-07-14")
	createTestItinerary(t, db, owner.ID, "Madrid", "2025-09-01", "2025-09-05")
	createTestItinerary(t, db, other.ID, "Lisbon", "2025-07-01", "2025-07-14")

	itins, err := db.Itineraries().ListByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(itins) != 2 {
		t.Fatalf("ListByOwner() returned %d, want 2 (owner-scoped)", len(itins))
	}
	// Newest trip first.
	if itins[0].Destination != "Madrid" {
		t.Errorf("ListByOwner() order = [%s, %s], want Madrid first", itins[0].Destination, itins[1].Destination)
	}
}

func TestItineraryUpdateAndDelete_OwnerScoped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "o@example.com", "Omar", "Cairo", model.StatusTravelling)
	intruder := createTestUser(t, db, "i@example.com", "Iris", "Cairo", model.StatusTravelling)
	itin := createTestItinerary(t, db, owner.ID, "Lisbon", "2025-07-01", "2025-07-14")

	// Update through the owner works.
	itin.Accommodation = "apartment in Baixa"
	if err := db.Itineraries().Update(ctx, itin); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := db.Itineraries().GetOwned(ctx, owner.ID, itin.ID)
	if err != nil {
		t.Fatalf("GetOwned() error = %v", err)
	}
	if got.Accommodation != "apartment in Baixa" {
		t.Errorf("Update() not persisted: %q", got.Accommodation)
	}

	// Delete through the wrong owner is the same NotFound as a missing id.
	if err := db.Itineraries().Delete(ctx, intruder.ID, itin.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() wrong owner error = %v, want ErrNotFound", err)
	}
	// The record is still there for its owner.
	if _, err := db.Itineraries().GetOwned(ctx, owner.ID, itin.ID); err != nil {
		t.Errorf("itinerary should survive a non-owner delete: %v", err)
	}

	if err := db.Itineraries().Delete(ctx, owner.ID, itin.ID); err != nil {
		t.Fatalf("Delete() owner error = %v", err)
	}
	if _, err := db.Itineraries().GetOwned(ctx, owner.ID, itin.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("itinerary should be gone after owner delete: %v", err)
	}
}

// =========================================================================
// DISCOVERY QUERY TESTS
// =========================================================================

func TestFindMatches_OverlapBoundaries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	requester := createTestUser(t, db, "r@example.com", "Rey", "Berlin", model.StatusTravelling)
	owner := createTestUser(t, db, "o@example.com", "Omar", "Cairo", model.StatusTravelling)

	// Closed-interval overlap against query window 2025-06-05..2025-06-20:
	// itinerary matches iff start <= 2025-06-20 AND end >= 2025-06-05.
	tests := []struct {
		name      string
		start     string
		end       string
		wantMatch bool
	}{
		{"fully inside window", "2025-06-08", "2025-06-12", true},
		{"straddles window start", "2025-06-01", "2025-06-10", true},
		{"straddles window end", "2025-06-15", "2025-06-30", true},
		{"contains whole window", "2025-06-01", "2025-06-30", true},
		{"touches window start exactly", "2025-06-01", "2025-06-05", true},
		{"touches window end exactly", "2025-06-20", "2025-06-25", true},
		{"ends before window", "2025-05-01", "2025-06-04", false},
		{"starts after window", "2025-06-21", "2025-07-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			itin := createTestItinerary(t, db, owner.ID, "Paris", tt.start, tt.end)

			matches, err := db.Itineraries().FindMatches(ctx, requester.ID, "Paris",
				date(t, "2025-06-05"), date(t, "2025-06-20"))
			if err != nil {
				t.Fatalf("FindMatches() error = %v", err)
			}

			found := false
			for _, m := range matches {
				if m.StartDate.Equal(itin.StartDate) && m.EndDate.Equal(itin.EndDate) {
					found = true
				}
			}
			if found != tt.wantMatch {
				t.Errorf("itinerary %s..%s match = %v, want %v", tt.start, tt.end, found, tt.wantMatch)
			}

			// Clean up so the next case sees only its own itinerary.
			if err := db.Itineraries().Delete(ctx, owner.ID, itin.ID); err != nil {
				t.Fatalf("cleanup delete failed: %v", err)
			}
		})
	}
}

func TestFindMatches_ExcludesRequesterAndOtherDestinations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	requester := createTestUser(t, db, "r@example.com", "Rey", "Berlin", model.StatusTravelling)
	owner := createTestUser(t, db, "o@example.com", "Omar", "Cairo", model.StatusTravelling)

	createTestItinerary(t, db, requester.ID, "Paris", "2025-06-01", "2025-06-10") // own trip
	createTestItinerary(t, db, owner.ID, "Rome", "2025-06-01", "2025-06-10")      // wrong city
	want := createTestItinerary(t, db, owner.ID, "paris", "2025-06-01", "2025-06-10")

	matches, err := db.Itineraries().FindMatches(ctx, requester.ID, "Paris",
		date(t, "2025-06-05"), date(t, "2025-06-20"))
	if err != nil {
		t.Fatalf("FindMatches() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("FindMatches() returned %d, want 1 (requester excluded, destination case-insensitive)", len(matches))
	}
	m := matches[0]
	if m.UserID != owner.ID || m.Destination != want.Destination {
		t.Errorf("FindMatches()[0] = %+v, want owner %s at %s", m, owner.ID, want.Destination)
	}
	if m.UserName != "Omar" || m.UserStatus != model.StatusTravelling {
		t.Errorf("FindMatches()[0] owner fields = %q/%q, want joined from users", m.UserName, m.UserStatus)
	}
	if m.HasConnected {
		t.Error("FindMatches() must leave HasConnected false for the service to fill")
	}
}

func TestFindMatches_DeterministicOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	requester := createTestUser(t, db, "r@example.com", "Rey", "Berlin", model.StatusTravelling)
	owner := createTestUser(t, db, "o@example.com", "Omar", "Cairo", model.StatusTravelling)

	createTestItinerary(t, db, owner.ID, "Paris", "2025-06-10", "2025-06-12")
	createTestItinerary(t, db, owner.ID, "Paris", "2025-06-01", "2025-06-12")
	createTestItinerary(t, db, owner.ID, "Paris", "2025-06-05", "2025-06-12")

	matches, err := db.Itineraries().FindMatches(ctx, requester.ID, "Paris",
		date(t, "2025-06-01"), date(t, "2025-06-30"))
	if err != nil {
		t.Fatalf("FindMatches() error = %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("FindMatches() returned %d, want 3", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].StartDate.Before(matches[i-1].StartDate) {
			t.Errorf("FindMatches() not ordered by start date: %v before %v",
				matches[i].StartDate, matches[i-1].StartDate)
		}
	}
}

// Ownership interface sanity: the update path used by the service is
// GetOwned + merge + Update, so partial updates can't cross owners either.
func TestUpdateViaPartialMerge(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "o@example.com", "Omar", "Cairo", model.StatusTravelling)
	itin := createTestItinerary(t, db, owner.ID, "Lisbon", "2025-07-01", "2025-07-14")

	upd := repository.ItineraryUpdate{}
	newEnd := date(t, "2025-07-20")
	upd.EndDate = &newEnd

	got, err := db.Itineraries().GetOwned(ctx, owner.ID, itin.ID)
	if err != nil {
		t.Fatalf("GetOwned() error = %v", err)
	}
	if upd.Destination != nil {
		got.Destination = *upd.Destination
	}
	if upd.EndDate != nil {
		got.EndDate = *upd.EndDate
	}
	if err := db.Itineraries().Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reread, err := db.Itineraries().GetOwned(ctx, owner.ID, itin.ID)
	if err != nil {
		t.Fatalf("GetOwned() error = %v", err)
	}
	if !reread.EndDate.Equal(newEnd) || reread.Destination != "Lisbon" {
		t.Errorf("partial merge result = %+v, want only EndDate changed", reread)
	}
}
