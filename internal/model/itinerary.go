package model

import "time"

// Itinerary is a user's planned trip: a destination plus a closed date
// range, with optional accommodation notes and activity tags.
//
// Invariant: StartDate <= EndDate, enforced at write time by the service
// layer. Dates are compared at day granularity (parsed from YYYY-MM-DD).
type Itinerary struct {
	ID            string    `json:"id"            db:"id"`
	UserID        string    `json:"userId"        db:"user_id"`
	Destination   string    `json:"destination"   db:"destination"`
	StartDate     time.Time `json:"startDate"     db:"start_date"`
	EndDate       time.Time `json:"endDate"       db:"end_date"`
	Accommodation string    `json:"accommodation" db:"accommodation"`
	Activities    []string  `json:"activities"    db:"activities"`
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt"     db:"updated_at"`
}

// Overlaps reports whether the itinerary's [StartDate, EndDate] interval
// intersects the closed query window [start, end]:
//
//	i.StartDate <= end AND i.EndDate >= start
//
// Adjacent-equal boundaries count as overlap (closed intervals).
// The SQL in repository/sqlite expresses the same predicate; this method
// exists so the property is testable without a database.
func (i Itinerary) Overlaps(start, end time.Time) bool {
	return !i.StartDate.After(end) && !i.EndDate.Before(start)
}

// TravelMatch is a discovery result: another user's overlapping itinerary,
// annotated with the owner's public fields and whether the requester has
// already exchanged a message with them.
type TravelMatch struct {
	UserID        string    `json:"userId"`
	UserName      string    `json:"user"`
	UserStatus    string    `json:"status"`
	ProfilePicURL string    `json:"profilePic"`
	Destination   string    `json:"destination"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	HasConnected  bool      `json:"hasConnected"`
}

// LocalMatch is a discovery result: a user whose declared status is Local
// at the searched destination.
type LocalMatch struct {
	UserID        string `json:"userId"`
	UserName      string `json:"user"`
	Location      string `json:"location"`
	UserStatus    string `json:"status"`
	ProfilePicURL string `json:"profilePic"`
	HasConnected  bool   `json:"hasConnected"`
}
