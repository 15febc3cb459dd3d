package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/model"
	"github.com/tasnim/travelmate/internal/repository"
)

// newTestDB returns a *DB backed by a fresh in-memory database. t.Cleanup
// closes it when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user with sensible defaults and fails the test
// on error.
func createTestUser(t *testing.T, db *DB, email, name, location, status string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$04$fakehashfortestingonly",
		Name:         name,
		Location:     location,
		Status:       status,
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Email:        "amira@example.com",
		PasswordHash: "$2a$04$fakehashfortestingonly",
		Name:         "Amira",
		Location:     "Paris",
		Status:       model.StatusLocal,
		TravelPrefs:  []string{"hiking", "museums"},
	}

	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}

	got, err := db.Users().GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "amira@example.com" || got.Name != "Amira" {
		t.Errorf("GetByID() = %+v, want email/name round-tripped", got)
	}
	if len(got.TravelPrefs) != 2 || got.TravelPrefs[0] != "hiking" {
		t.Errorf("TravelPrefs = %v, want [hiking museums]", got.TravelPrefs)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "dup@example.com", "First", "Lisbon", model.StatusTravelling)

	duplicate := &model.User{
		Email:        "dup@example.com",
		PasswordHash: "$2a$04$fakehashfortestingonly",
		Name:         "Second",
		Location:     "Porto",
		Status:       model.StatusTravelling,
	}
	err := db.Users().Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have failed for a duplicate email")
	}
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() duplicate email error = %v, want ErrValidation", err)
	}

	// Exactly one row must exist for the email — never a second record.
	users, err := db.Users().List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 1 {
		t.Errorf("List() returned %d users, want 1", len(users))
	}
}

func TestUserCreate_InvalidStatusRejectedBySchema(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Email:        "bad@example.com",
		PasswordHash: "x",
		Name:         "Bad",
		Location:     "Nowhere",
		Status:       "Wandering", // not in the CHECK constraint
	}
	if err := db.Users().Create(context.Background(), user); err == nil {
		t.Error("Create() should reject a status outside the enum")
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "finn@example.com", "Finn", "Oslo", model.StatusPrivate)

	got, err := db.Users().GetByEmail(context.Background(), "finn@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() id = %s, want %s", got.ID, created.ID)
	}

	if _, err := db.Users().GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() unknown email error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LOCALS QUERY TESTS
// =========================================================================

func TestListLocals(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	local := createTestUser(t, db, "a@example.com", "Aicha", "Paris", model.StatusLocal)
	createTestUser(t, db, "b@example.com", "Bruno", "Paris", model.StatusTravelling) // wrong status
	createTestUser(t, db, "c@example.com", "Chloe", "Lyon", model.StatusLocal)       // wrong city
	requester := createTestUser(t, db, "d@example.com", "Dana", "Paris", model.StatusLocal)

	locals, err := db.Users().ListLocals(ctx, requester.ID, "Paris")
	if err != nil {
		t.Fatalf("ListLocals() error = %v", err)
	}
	if len(locals) != 1 || locals[0].ID != local.ID {
		t.Fatalf("ListLocals() = %+v, want just %s", locals, local.ID)
	}
}

func TestListLocals_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestUser(t, db, "a@example.com", "Aicha", "Paris", model.StatusLocal)
	requester := createTestUser(t, db, "r@example.com", "Rey", "Berlin", model.StatusTravelling)

	locals, err := db.Users().ListLocals(ctx, requester.ID, "pArIs")
	if err != nil {
		t.Fatalf("ListLocals() error = %v", err)
	}
	if len(locals) != 1 {
		t.Errorf("ListLocals() with mixed-case destination returned %d, want 1", len(locals))
	}
}

// =========================================================================
// UPDATE / DELETE TESTS
// =========================================================================

func TestUpdateProfile_PartialFields(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "p@example.com", "Pat", "Rome", model.StatusTravelling)

	newLocation := "Florence"
	newStatus := model.StatusLocal
	got, err := db.Users().UpdateProfile(context.Background(), user.ID, repository.ProfileUpdate{
		Location: &newLocation,
		Status:   &newStatus,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	if got.Location != "Florence" || got.Status != model.StatusLocal {
		t.Errorf("UpdateProfile() = %+v, want location/status changed", got)
	}
	// Untouched fields survive.
	if got.Name != "Pat" {
		t.Errorf("UpdateProfile() name = %q, want unchanged %q", got.Name, "Pat")
	}
}

func TestUpdatePassword_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Users().UpdatePassword(context.Background(), "missing", "hash")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdatePassword() error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete_CascadesToItinerariesAndMessages(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "o@example.com", "Omar", "Kyoto", model.StatusTravelling)
	other := createTestUser(t, db, "x@example.com", "Xena", "Kyoto", model.StatusLocal)
	itin := createTestItinerary(t, db, owner.ID, "Kyoto", "2025-06-01", "2025-06-10")
	createTestMessage(t, db, owner.ID, other.ID, "hello")

	if err := db.Users().Delete(ctx, owner.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.Itineraries().GetOwned(ctx, owner.ID, itin.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("itinerary survived its owner's deletion: %v", err)
	}
	has, err := db.Messages().HasConnection(ctx, owner.ID, other.ID)
	if err != nil {
		t.Fatalf("HasConnection() error = %v", err)
	}
	if has {
		t.Error("messages survived their sender's deletion")
	}
}

// =========================================================================
// UPSERT (GITHUB SIGN-IN) TESTS
// =========================================================================

func TestUpsert_NewThenExisting(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.User{
		Email:        "gh@example.com",
		PasswordHash: "!",
		Name:         "ghuser",
		Location:     "",
		Status:       model.StatusPrivate,
		GitHubID:     4242,
	}
	if err := db.Users().Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert() first error = %v", err)
	}
	firstID := first.ID

	// Second sign-in with a changed name keeps the internal id.
	second := &model.User{
		Email:        "gh@example.com",
		PasswordHash: "!",
		Name:         "renamed",
		Location:     "",
		Status:       model.StatusPrivate,
		GitHubID:     4242,
	}
	if err := db.Users().Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert() second error = %v", err)
	}
	if second.ID != firstID {
		t.Errorf("Upsert() changed the internal id: %s != %s", second.ID, firstID)
	}

	got, err := db.Users().GetByID(ctx, firstID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "renamed" {
		t.Errorf("Upsert() did not refresh name: %q", got.Name)
	}
}

func TestUpsert_RequiresGitHubID(t *testing.T) {
	db := newTestDB(t)
	err := db.Users().Upsert(context.Background(), &model.User{Email: "x@example.com"})
	if err == nil {
		t.Error("Upsert() should reject GitHubID == 0")
	}
}
