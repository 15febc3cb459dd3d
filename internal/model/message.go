package model

import "time"

// Message is a directed introduction message between two users. Messages are
// immutable once created — there is no update or delete path.
//
// A "connection" between two users is a derived fact, not a stored one: it
// exists iff at least one Message row joins the unordered pair {sender,
// recipient} in either direction.
type Message struct {
	ID          string    `json:"id"          db:"id"`
	SenderID    string    `json:"senderId"    db:"sender_id"`
	RecipientID string    `json:"recipientId" db:"recipient_id"`
	Message     string    `json:"message"     db:"message"`
	Timestamp   time.Time `json:"timestamp"   db:"timestamp"`
}

// Connection is one entry in a user's deduplicated connection list: the
// other party's public contact fields plus the time of the most recent
// message between the pair. Deduplication key is OtherUserID.
type Connection struct {
	OtherUserID     string    `json:"userId"`
	Name            string    `json:"name"`
	ProfilePicURL   string    `json:"profilePic"`
	SocialMediaLink string    `json:"socialMediaLink"`
	LastMessageAt   time.Time `json:"lastMessageAt"`
}
