package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/model"
	"github.com/tasnim/travelmate/internal/repository"
)

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, email, password_hash, name, location, status,
	profile_pic_url, travel_preferences, social_media_link, is_admin,
	github_id, created_at, updated_at`

// Create inserts a new user, generating the id and timestamps.
//
// The email UNIQUE constraint is the last line of defence against duplicate
// registration; the service pre-checks, but a race between two registrations
// lands here and is surfaced as the same validation error.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	prefs, err := encodeTags(user.TravelPrefs)
	if err != nil {
		return err
	}

	_, err = r.db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Location,
		user.Status,
		user.ProfilePicURL,
		prefs,
		user.SocialMediaLink,
		user.IsAdmin,
		user.GitHubID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return apperror.ValidationFailed("email", "user already exists with this email")
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// Upsert inserts or updates a user keyed on GitHubID, keeping the existing
// internal id (and password hash) on update. Only the GitHub sign-in flow
// calls this; it must never run with GitHubID == 0.
func (r *UserRepo) Upsert(ctx context.Context, user *model.User) error {
	if user.GitHubID == 0 {
		return fmt.Errorf("sqlite: upsert requires a GitHub id")
	}

	var existingID string
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		// Known GitHub account — refresh the mutable profile fields.
		user.ID = existingID
		user.UpdatedAt = time.Now().UTC()
		_, err = r.db.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, email = ?, profile_pic_url = ?, updated_at = ?
			 WHERE id = ?`,
			user.Name,
			user.Email,
			user.ProfilePicURL,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	return r.Create(ctx, user)
}

// GetByID retrieves a user by their internal id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (exact match — emails are stored as
// registered). Returns apperror.ErrNotFound if no user has that email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundMsg("no user found with this email")
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return user, nil
}

// List returns all users ordered by creation time. Admin-only at the HTTP
// boundary; password hashes never leave the model's json:"-" field anyway.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListLocals returns users discoverable as locals for the destination:
// status Local, location equal case-insensitively, requester excluded.
// Ordered by name then id so results are deterministic.
func (r *UserRepo) ListLocals(ctx context.Context, requesterID, destination string) ([]model.User, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id != ? AND status = ? AND LOWER(location) = LOWER(?)
		 ORDER BY name, id`,
		requesterID, model.StatusLocal, destination)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing locals for %q: %w", destination, err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// UpdateProfile applies a partial update field-by-field and returns the
// updated record. Nil fields are untouched.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, upd repository.ProfileUpdate) (*model.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Location != nil {
		user.Location = *upd.Location
	}
	if upd.Status != nil {
		user.Status = *upd.Status
	}
	if upd.ProfilePicURL != nil {
		user.ProfilePicURL = *upd.ProfilePicURL
	}
	if upd.TravelPrefs != nil {
		user.TravelPrefs = *upd.TravelPrefs
	}
	if upd.SocialMediaLink != nil {
		user.SocialMediaLink = *upd.SocialMediaLink
	}
	user.UpdatedAt = time.Now().UTC()

	prefs, err := encodeTags(user.TravelPrefs)
	if err != nil {
		return nil, err
	}

	_, err = r.db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, location = ?, status = ?, profile_pic_url = ?,
		 travel_preferences = ?, social_media_link = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.Location,
		user.Status,
		user.ProfilePicURL,
		prefs,
		user.SocialMediaLink,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	return user, nil
}

// UpdatePassword replaces the stored bcrypt hash (password reset flow).
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// Delete removes a user. The itineraries and messages referencing the user
// go with it via ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// scanner is the common subset of *sql.Row and *sql.Rows we scan from.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		u     model.User
		prefs string
	)
	err := s.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Location,
		&u.Status,
		&u.ProfilePicURL,
		&prefs,
		&u.SocialMediaLink,
		&u.IsAdmin,
		&u.GitHubID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.TravelPrefs, err = decodeTags(prefs)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func collectUsers(rows *sql.Rows) ([]model.User, error) {
	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}
