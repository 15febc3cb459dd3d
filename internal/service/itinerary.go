package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/model"
	"github.com/tasnim/travelmate/internal/repository"
)

// ItineraryService handles trip CRUD. Every operation is scoped to the
// authenticated owner: the repository treats "missing" and "owned by
// someone else" identically, so a caller can never probe another user's
// itinerary ids.
type ItineraryService struct {
	itineraries repository.ItineraryRepository
	logger      *slog.Logger
}

func NewItineraryService(itineraries repository.ItineraryRepository, logger *slog.Logger) *ItineraryService {
	return &ItineraryService{itineraries: itineraries, logger: logger}
}

// ItineraryInput carries the create form. The owner comes from the
// authenticated identity, never from the request body.
type ItineraryInput struct {
	Destination   string
	StartDate     time.Time
	EndDate       time.Time
	Accommodation string
	Activities    []string
}

func (s *ItineraryService) Create(ctx context.Context, ownerID string, in ItineraryInput) (*model.Itinerary, error) {
	in.Destination = strings.TrimSpace(in.Destination)
	if in.Destination == "" {
		return nil, apperror.ValidationFailed("destination", "destination is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, apperror.ValidationFailed("", "startDate and endDate are required")
	}
	if in.StartDate.After(in.EndDate) {
		return nil, apperror.ValidationFailed("", "startDate must not be after endDate")
	}

	itin := &model.Itinerary{
		UserID:        ownerID,
		Destination:   in.Destination,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Accommodation: in.Accommodation,
		Activities:    in.Activities,
	}
	if err := s.itineraries.Create(ctx, itin); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "itinerary created",
		slog.String("itineraryID", itin.ID),
		slog.String("userID", ownerID),
		slog.String("destination", itin.Destination),
	)
	return itin, nil
}

// List returns the owner's itineraries, newest start date first.
func (s *ItineraryService) List(ctx context.Context, ownerID string) ([]model.Itinerary, error) {
	return s.itineraries.ListByOwner(ctx, ownerID)
}

// Update applies a partial update to an owned itinerary. The date invariant
// is re-checked against the merged record, so an update can't sneak a
// start date past an existing end date.
func (s *ItineraryService) Update(ctx context.Context, ownerID, id string, upd repository.ItineraryUpdate) (*model.Itinerary, error) {
	itin, err := s.itineraries.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if upd.Destination != nil {
		dest := strings.TrimSpace(*upd.Destination)
		if dest == "" {
			return nil, apperror.ValidationFailed("destination", "destination must not be empty")
		}
		itin.Destination = dest
	}
	if upd.StartDate != nil {
		itin.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		itin.EndDate = *upd.EndDate
	}
	if upd.Accommodation != nil {
		itin.Accommodation = *upd.Accommodation
	}
	if upd.Activities != nil {
		itin.Activities = *upd.Activities
	}

	if itin.StartDate.After(itin.EndDate) {
		return nil, apperror.ValidationFailed("", "startDate must not be after endDate")
	}

	if err := s.itineraries.Update(ctx, itin); err != nil {
		return nil, err
	}
	return itin, nil
}

func (s *ItineraryService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.itineraries.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "itinerary deleted",
		slog.String("itineraryID", id),
		slog.String("userID", ownerID),
	)
	return nil
}
