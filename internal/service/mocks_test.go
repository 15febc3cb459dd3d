package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/model"
	"github.com/tasnim/travelmate/internal/repository"
)

// =========================================================================
// SHARED TEST FIXTURES
// =========================================================================
//
// The mocks below are hand-written in-memory implementations of the
// repository interfaces. They store copies, not pointers, so a test can't
// accidentally mutate the "database" through a returned value, and they
// return the same apperror values the sqlite implementation does.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------- users --

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) addUser(u model.User) *model.User {
	if u.ID == "" {
		m.nextID++
		u.ID = fmt.Sprintf("user-%d", m.nextID)
	}
	stored := u
	m.users[u.ID] = &stored
	return &u
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.ValidationFailed("email", "user already exists with this email")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Upsert(_ context.Context, user *model.User) error {
	if user.GitHubID == 0 {
		return fmt.Errorf("upsert requires a GitHub ID")
	}
	for _, u := range m.users {
		if u.GitHubID == user.GitHubID {
			user.ID = u.ID
			stored := *user
			m.users[u.ID] = &stored
			return nil
		}
	}
	// New account: the email column is unique in the real schema.
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.ValidationFailed("email", "user already exists with this email")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFoundMsg("no user found with this email")
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockUserRepo) ListLocals(_ context.Context, requesterID, destination string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.ID == requesterID || u.Status != model.StatusLocal {
			continue
		}
		if strings.EqualFold(u.Location, destination) {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id string, upd repository.ProfileUpdate) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Location != nil {
		u.Location = *upd.Location
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	if upd.ProfilePicURL != nil {
		u.ProfilePicURL = *upd.ProfilePicURL
	}
	if upd.TravelPrefs != nil {
		u.TravelPrefs = *upd.TravelPrefs
	}
	if upd.SocialMediaLink != nil {
		u.SocialMediaLink = *upd.SocialMediaLink
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

// ----------------------------------------------------------- itineraries --

type mockItineraryRepo struct {
	itineraries map[string]*model.Itinerary
	nextID      int
}

func newMockItineraryRepo() *mockItineraryRepo {
	return &mockItineraryRepo{itineraries: make(map[string]*model.Itinerary)}
}

func (m *mockItineraryRepo) addItinerary(i model.Itinerary) *model.Itinerary {
	if i.ID == "" {
		m.nextID++
		i.ID = fmt.Sprintf("itin-%d", m.nextID)
	}
	stored := i
	m.itineraries[i.ID] = &stored
	return &i
}

func (m *mockItineraryRepo) Create(_ context.Context, itin *model.Itinerary) error {
	m.nextID++
	itin.ID = fmt.Sprintf("itin-%d", m.nextID)
	stored := *itin
	m.itineraries[itin.ID] = &stored
	return nil
}

func (m *mockItineraryRepo) GetOwned(_ context.Context, ownerID, id string) (*model.Itinerary, error) {
	i, ok := m.itineraries[id]
	if !ok || i.UserID != ownerID {
		return nil, apperror.NotFound("itinerary", id)
	}
	result := *i
	return &result, nil
}

func (m *mockItineraryRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Itinerary, error) {
	result := make([]model.Itinerary, 0)
	for _, i := range m.itineraries {
		if i.UserID == ownerID {
			result = append(result, *i)
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].StartDate.After(result[b].StartDate) })
	return result, nil
}

func (m *mockItineraryRepo) Update(_ context.Context, itin *model.Itinerary) error {
	existing, ok := m.itineraries[itin.ID]
	if !ok || existing.UserID != itin.UserID {
		return apperror.NotFound("itinerary", itin.ID)
	}
	stored := *itin
	m.itineraries[itin.ID] = &stored
	return nil
}

func (m *mockItineraryRepo) Delete(_ context.Context, ownerID, id string) error {
	i, ok := m.itineraries[id]
	if !ok || i.UserID != ownerID {
		return apperror.NotFound("itinerary", id)
	}
	delete(m.itineraries, id)
	return nil
}

func (m *mockItineraryRepo) FindMatches(_ context.Context, requesterID, destination string, start, end time.Time) ([]model.TravelMatch, error) {
	var result []model.TravelMatch
	for _, i := range m.itineraries {
		if i.UserID == requesterID {
			continue
		}
		if !strings.EqualFold(i.Destination, destination) {
			continue
		}
		if !i.Overlaps(start, end) {
			continue
		}
		result = append(result, model.TravelMatch{
			UserID:      i.UserID,
			Destination: i.Destination,
			StartDate:   i.StartDate,
			EndDate:     i.EndDate,
		})
	}
	sort.Slice(result, func(a, b int) bool { return result[a].StartDate.Before(result[b].StartDate) })
	return result, nil
}

// -------------------------------------------------------------- messages --

type mockMessageRepo struct {
	messages []model.Message
	nextID   int
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	m.nextID++
	msg.ID = fmt.Sprintf("msg-%d", m.nextID)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockMessageRepo) HasConnection(_ context.Context, a, b string) (bool, error) {
	for _, msg := range m.messages {
		if (msg.SenderID == a && msg.RecipientID == b) || (msg.SenderID == b && msg.RecipientID == a) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMessageRepo) ConnectedPartners(ctx context.Context, userID string, candidateIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	for _, id := range candidateIDs {
		ok, _ := m.HasConnection(ctx, userID, id)
		if ok {
			result[id] = true
		}
	}
	return result, nil
}

func (m *mockMessageRepo) ListConnections(_ context.Context, userID string) ([]model.Connection, error) {
	latest := make(map[string]time.Time)
	for _, msg := range m.messages {
		var other string
		switch userID {
		case msg.SenderID:
			other = msg.RecipientID
		case msg.RecipientID:
			other = msg.SenderID
		default:
			continue
		}
		if msg.Timestamp.After(latest[other]) {
			latest[other] = msg.Timestamp
		}
	}
	result := make([]model.Connection, 0, len(latest))
	for id, at := range latest {
		result = append(result, model.Connection{OtherUserID: id, LastMessageAt: at})
	}
	sort.Slice(result, func(a, b int) bool { return result[a].LastMessageAt.After(result[b].LastMessageAt) })
	return result, nil
}
