package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tasnim/travelmate/internal/apperror"
	"github.com/tasnim/travelmate/internal/model"
	"github.com/tasnim/travelmate/internal/repository"
)

// ConnectService handles introduction messages and the derived connection
// list. Messages are append-only; a "connection" is simply the existence of
// at least one message between a pair, in either direction.
type ConnectService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewConnectService(messages repository.MessageRepository, users repository.UserRepository, logger *slog.Logger) *ConnectService {
	return &ConnectService{messages: messages, users: users, logger: logger}
}

// SendMessage records an introduction from the sender to another user. The
// sender cannot message themselves, and the recipient must exist.
func (s *ConnectService) SendMessage(ctx context.Context, senderID, recipientID, text string) (*model.Message, error) {
	recipientID = strings.TrimSpace(recipientID)
	text = strings.TrimSpace(text)

	if recipientID == "" {
		return nil, apperror.ValidationFailed("userId", "recipient is required")
	}
	if recipientID == senderID {
		return nil, apperror.ValidationFailed("userId", "cannot send a message to yourself")
	}
	if text == "" {
		return nil, apperror.ValidationFailed("message", "message is required")
	}

	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Message:     text,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "message sent",
		slog.String("messageID", msg.ID),
		slog.String("senderID", senderID),
		slog.String("recipientID", recipientID),
	)
	return msg, nil
}

// ListConnections returns the caller's deduplicated connection list, most
// recent activity first. An empty list is a NotFound, matching the API's
// "no connect messages" contract.
func (s *ConnectService) ListConnections(ctx context.Context, userID string) ([]model.Connection, error) {
	conns, err := s.messages.ListConnections(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(conns) == 0 {
		return nil, apperror.NotFoundMsg("no connections yet")
	}
	return conns, nil
}
