// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage is the production implementation; tests
// inject in-memory mocks.
package repository

import (
	"context"
	"time"

	"github.com/tasnim/travelmate/internal/model"
)

// ProfileUpdate carries a partial profile update. Nil fields are left
// unchanged; this is the explicit alternative to a generic merge-any-object
// operation, so exactly the provided fields are applied and nothing else.
type ProfileUpdate struct {
	Name            *string
	Location        *string
	Status          *string
	ProfilePicURL   *string
	TravelPrefs     *[]string
	SocialMediaLink *string
}

// ItineraryUpdate carries a partial itinerary update, nil meaning "keep".
type ItineraryUpdate struct {
	Destination   *string
	StartDate     *time.Time
	EndDate       *time.Time
	Accommodation *string
	Activities    *[]string
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// Upsert inserts or updates by GitHubID, keeping the existing internal
	// id on update. Used only by the optional GitHub sign-in flow.
	Upsert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// ListLocals returns users with status Local whose location equals
	// destination case-insensitively, excluding requesterID.
	ListLocals(ctx context.Context, requesterID, destination string) ([]model.User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type ItineraryRepository interface {
	Create(ctx context.Context, itin *model.Itinerary) error
	// GetOwned returns the itinerary only if it exists AND belongs to
	// ownerID; a missing record and someone else's record produce the same
	// NotFound, so existence is never leaked to non-owners.
	GetOwned(ctx context.Context, ownerID, id string) (*model.Itinerary, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Itinerary, error)
	Update(ctx context.Context, itin *model.Itinerary) error
	Delete(ctx context.Context, ownerID, id string) error
	// FindMatches returns other users' itineraries at destination
	// (case-insensitive equality) whose closed date interval intersects
	// [start, end], joined with the owner's public fields, ordered by start
	// date then id. HasConnected is left false for the caller to fill.
	FindMatches(ctx context.Context, requesterID, destination string, start, end time.Time) ([]model.TravelMatch, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	// HasConnection reports whether any message joins a and b in either
	// direction.
	HasConnection(ctx context.Context, a, b string) (bool, error)
	// ConnectedPartners returns, for the given candidate ids, the subset
	// that userID has exchanged at least one message with — one query for
	// the whole batch, never one per candidate.
	ConnectedPartners(ctx context.Context, userID string, candidateIDs []string) (map[string]bool, error)
	// ListConnections returns one entry per distinct other party across all
	// messages touching userID, most recent activity first.
	ListConnections(ctx context.Context, userID string) ([]model.Connection, error)
}
