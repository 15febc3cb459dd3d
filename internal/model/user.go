// Package model defines the data structures used throughout the application.
package model

import "time"

// User status values. The status drives discoverability: Local users surface
// in destination searches, Private users hide their profile from everyone
// but themselves, Travelling is the default public state.
const (
	StatusPrivate    = "Private"
	StatusTravelling = "Travelling"
	StatusLocal      = "Local"
)

// ValidStatus reports whether s is one of the three enumerated status values.
func ValidStatus(s string) bool {
	return s == StatusPrivate || s == StatusTravelling || s == StatusLocal
}

// User represents a registered account.
//
// PasswordHash is a bcrypt hash, never the plaintext, and is excluded from
// JSON with `json:"-"` so no handler can accidentally serialize it.
//
// GitHubID is 0 for accounts created with email/password. Accounts
// provisioned through the optional GitHub sign-in carry GitHub's numeric
// user ID here (UNIQUE in the DB, so one GitHub account maps to one row).
//
// ProfilePicURL is a plain URL string. Earlier revisions of this product
// stored the picture as a binary blob plus content type; the URL
// representation won and binary storage was retired.
type User struct {
	ID              string    `json:"id"              db:"id"`
	Email           string    `json:"email"           db:"email"`
	PasswordHash    string    `json:"-"               db:"password_hash"`
	Name            string    `json:"name"            db:"name"`
	Location        string    `json:"location"        db:"location"`
	Status          string    `json:"status"          db:"status"`
	ProfilePicURL   string    `json:"profilePicUrl"   db:"profile_pic_url"`
	TravelPrefs     []string  `json:"travelPreferencesAndGoals" db:"travel_preferences"`
	SocialMediaLink string    `json:"socialMediaLink" db:"social_media_link"`
	IsAdmin         bool      `json:"isAdmin"         db:"is_admin"`
	GitHubID        int64     `json:"-"               db:"github_id"`
	CreatedAt       time.Time `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt"       db:"updated_at"`
}
