package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/model"
	"github.com/tasnim/travelmate/internal/repository"
)

// ProfileService composes the public profile view and applies profile
// edits. Visibility rule: a Private profile is visible only to its owner;
// everyone else gets a Forbidden regardless of connection state.
type ProfileService struct {
	users       repository.UserRepository
	itineraries repository.ItineraryRepository
	messages    repository.MessageRepository
	logger      *slog.Logger
}

func NewProfileService(
	users repository.UserRepository,
	itineraries repository.ItineraryRepository,
	messages repository.MessageRepository,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		users:       users,
		itineraries: itineraries,
		messages:    messages,
		logger:      logger,
	}
}

// ProfileTrip is the trimmed itinerary shape shown on a profile.
type ProfileTrip struct {
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

// ProfileView is the composed profile page: the target's public fields,
// their upcoming trips, and whether the viewer has already connected.
type ProfileView struct {
	UserID          string        `json:"userId"`
	Name            string        `json:"name"`
	Location        string        `json:"location"`
	Status          string        `json:"status"`
	ProfilePicURL   string        `json:"profilePic"`
	TravelPrefs     []string      `json:"travelPreferencesAndGoals"`
	SocialMediaLink string        `json:"socialMediaLink"`
	Itineraries     []ProfileTrip `json:"itineraries"`
	HasConnected    bool          `json:"hasConnected"`
}

// GetProfile returns the profile view of targetID as seen by viewerID.
func (s *ProfileService) GetProfile(ctx context.Context, viewerID, targetID string) (*ProfileView, error) {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Status == model.StatusPrivate && viewerID != targetID {
		return nil, apperror.Forbidden("this profile is private")
	}

	trips, err := s.itineraries.ListByOwner(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: listing itineraries for %s: %w", targetID, err)
	}

	hasConnected := false
	if viewerID != targetID {
		hasConnected, err = s.messages.HasConnection(ctx, viewerID, targetID)
		if err != nil {
			return nil, fmt.Errorf("service/profile: checking connection: %w", err)
		}
	}

	view := &ProfileView{
		UserID:          target.ID,
		Name:            target.Name,
		Location:        target.Location,
		Status:          target.Status,
		ProfilePicURL:   target.ProfilePicURL,
		TravelPrefs:     target.TravelPrefs,
		SocialMediaLink: target.SocialMediaLink,
		Itineraries:     make([]ProfileTrip, 0, len(trips)),
		HasConnected:    hasConnected,
	}
	for _, t := range trips {
		view.Itineraries = append(view.Itineraries, ProfileTrip{
			Destination: t.Destination,
			StartDate:   t.StartDate,
			EndDate:     t.EndDate,
		})
	}
	return view, nil
}

// UpdateProfile applies a partial update to the caller's own profile.
// Editing anyone else's profile is Forbidden even for admins.
func (s *ProfileService) UpdateProfile(ctx context.Context, callerID, targetID string, upd repository.ProfileUpdate) (*model.User, error) {
	if callerID != targetID {
		return nil, apperror.Forbidden("you can only update your own profile")
	}
	if upd.Status != nil && !model.ValidStatus(*upd.Status) {
		return nil, apperror.ValidationFailed("status", "status must be Private, Travelling or Local")
	}
	if upd.Name != nil && *upd.Name == "" {
		return nil, apperror.ValidationFailed("name", "name must not be empty")
	}

	user, err := s.users.UpdateProfile(ctx, targetID, upd)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "profile updated", slog.String("userID", targetID))
	return user, nil
}
