package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/tasnim/travelmate/internal/model"
	"github.com/tasnim/travelmate/internal/repository"
)

// compile-time check that *MessageRepo implements repository.MessageRepository
var _ repository.MessageRepository = (*MessageRepo)(nil)

// Create inserts a message. Messages are immutable — there is no update or
// delete statement anywhere in this file. Timestamp defaults to now when
// the caller left it zero.
func (r *MessageRepo) Create(ctx context.Context, msg *model.Message) error {
	msg.ID = xid.New().String()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, sender_id, recipient_id, message, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID,
		msg.SenderID,
		msg.RecipientID,
		msg.Message,
		msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting message %s -> %s: %w", msg.SenderID, msg.RecipientID, err)
	}

	return nil
}

// HasConnection reports whether a and b have ever exchanged a message, in
// either direction. Symmetric by construction: the OR covers both orderings
// of the pair.
func (r *MessageRepo) HasConnection(ctx context.Context, a, b string) (bool, error) {
	var exists bool
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM messages
			WHERE (sender_id = ? AND recipient_id = ?)
			   OR (sender_id = ? AND recipient_id = ?)
		 )`,
		a, b, b, a).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking connection %s <-> %s: %w", a, b, err)
	}
	return exists, nil
}

// ConnectedPartners answers "which of these candidates has userID exchanged
// a message with?" in a single query over the whole batch. The result map
// contains only the connected ids, so a missing key means not connected.
func (r *MessageRepo) ConnectedPartners(ctx context.Context, userID string, candidateIDs []string) (map[string]bool, error) {
	connected := make(map[string]bool)
	if len(candidateIDs) == 0 {
		return connected, nil
	}

	// Build the IN (?, ?, ...) placeholder list. Args: userID twice (once
	// per direction), then the candidate set twice.
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(candidateIDs)), ", ")
	args := make([]any, 0, 2*len(candidateIDs)+2)
	args = append(args, userID)
	for _, id := range candidateIDs {
		args = append(args, id)
	}
	args = append(args, userID)
	for _, id := range candidateIDs {
		args = append(args, id)
	}

	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT DISTINCT recipient_id FROM messages
		 WHERE sender_id = ? AND recipient_id IN (`+placeholders+`)
		 UNION
		 SELECT DISTINCT sender_id FROM messages
		 WHERE recipient_id = ? AND sender_id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: batching connections for user %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning connected partner: %w", err)
		}
		connected[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating connected partners: %w", err)
	}
	return connected, nil
}

// ListConnections collapses the message log into one entry per distinct
// other party, most recent exchange first. The CASE picks "the other end"
// of each message relative to userID. An aggregate like MAX(timestamp)
// loses the column's DATETIME affinity and scans back as TEXT, so the
// rows arrive newest-first and the collapse to one entry per party
// happens here.
func (r *MessageRepo) ListConnections(ctx context.Context, userID string) ([]model.Connection, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END AS other_id,
		        u.name, u.profile_pic_url, u.social_media_link, m.timestamp
		 FROM messages m
		 JOIN users u ON u.id = CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END
		 WHERE m.sender_id = ? OR m.recipient_id = ?
		 ORDER BY m.timestamp DESC, m.id`,
		userID, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing connections for user %s: %w", userID, err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var conns []model.Connection
	for rows.Next() {
		var c model.Connection
		err := rows.Scan(
			&c.OtherUserID,
			&c.Name,
			&c.ProfilePicURL,
			&c.SocialMediaLink,
			&c.LastMessageAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning connection: %w", err)
		}
		if seen[c.OtherUserID] {
			continue
		}
		seen[c.OtherUserID] = true
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating connections: %w", err)
	}
	return conns, nil
}
