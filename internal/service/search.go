package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/cache"
	"github.com/tasnim/travelmate/internal/model"
	"github.com/tasnim/travelmate/internal/repository"
)

// dateLayout is the wire format for all itinerary and search dates.
const dateLayout = "2006-01-02"

// searchCacheTTL keeps discovery results hot for repeated identical
// queries without letting them go stale for long.
const searchCacheTTL = 60 * time.Second

// SearchService is the discovery engine: given a destination and a date
// window it finds travellers with overlapping itineraries and locals who
// live there.
type SearchService struct {
	itineraries repository.ItineraryRepository
	users       repository.UserRepository
	messages    repository.MessageRepository
	cache       cache.Cache
	logger      *slog.Logger
}

func NewSearchService(
	itineraries repository.ItineraryRepository,
	users repository.UserRepository,
	messages repository.MessageRepository,
	c cache.Cache,
	logger *slog.Logger,
) *SearchService {
	return &SearchService{
		itineraries: itineraries,
		users:       users,
		messages:    messages,
		cache:       c,
		logger:      logger,
	}
}

// SearchResult holds both halves of a discovery query.
type SearchResult struct {
	TravelMatches []model.TravelMatch `json:"travelMatches"`
	LocalMatches  []model.LocalMatch  `json:"localMatches"`
}

// ParseDate parses a YYYY-MM-DD wire date into a UTC day-granularity time.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed(field, fmt.Sprintf("%s must be a valid YYYY-MM-DD date", field))
	}
	return t, nil
}

// Search finds travel companions for the requester.
//
// Travellers match when their itinerary is at the destination
// (case-insensitive) and its closed date interval intersects [start, end].
// Locals match on location alone. The requester never matches themselves.
// Each result carries hasConnected, resolved for the whole candidate set
// with a single batched query.
//
// An empty result on both sides is a NotFound, distinct from an internal
// failure, so the client can show "no matches" instead of an error page.
func (s *SearchService) Search(ctx context.Context, requesterID, destination string, start, end time.Time) (*SearchResult, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, apperror.ValidationFailed("destination", "destination is required")
	}
	if start.IsZero() || end.IsZero() {
		return nil, apperror.ValidationFailed("", "startDate and endDate are required")
	}
	if start.After(end) {
		return nil, apperror.ValidationFailed("", "startDate must not be after endDate")
	}

	key := searchCacheKey(requesterID, destination, start, end)
	var cached SearchResult
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		// A broken cache must never fail a search.
		s.logger.WarnContext(ctx, "search cache read failed", "error", err)
	} else if found {
		return &cached, nil
	}

	travel, err := s.itineraries.FindMatches(ctx, requesterID, destination, start, end)
	if err != nil {
		return nil, fmt.Errorf("service/search: finding travel matches: %w", err)
	}
	locals, err := s.users.ListLocals(ctx, requesterID, destination)
	if err != nil {
		return nil, fmt.Errorf("service/search: finding locals: %w", err)
	}

	if len(travel) == 0 && len(locals) == 0 {
		return nil, apperror.NotFoundMsg("no matches found for this destination and dates")
	}

	// Resolve hasConnected for every candidate in one query.
	candidateIDs := make([]string, 0, len(travel)+len(locals))
	for _, m := range travel {
		candidateIDs = append(candidateIDs, m.UserID)
	}
	for _, l := range locals {
		candidateIDs = append(candidateIDs, l.ID)
	}
	connected, err := s.messages.ConnectedPartners(ctx, requesterID, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("service/search: resolving connections: %w", err)
	}

	localMatches := make([]model.LocalMatch, 0, len(locals))
	for _, u := range locals {
		localMatches = append(localMatches, model.LocalMatch{
			UserID:        u.ID,
			UserName:      u.Name,
			Location:      u.Location,
			UserStatus:    u.Status,
			ProfilePicURL: u.ProfilePicURL,
			HasConnected:  connected[u.ID],
		})
	}
	for i := range travel {
		travel[i].HasConnected = connected[travel[i].UserID]
	}

	result := &SearchResult{TravelMatches: travel, LocalMatches: localMatches}
	if err := s.cache.Set(ctx, key, result, searchCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "search cache write failed", "error", err)
	}
	return result, nil
}

func searchCacheKey(requesterID, destination string, start, end time.Time) string {
	return fmt.Sprintf("search:%s:%s:%s:%s",
		requesterID,
		strings.ToLower(destination),
		start.Format(dateLayout),
		end.Format(dateLayout),
	)
}
