package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/vedran77/syncspace/internal/domain"
	"github.com/vedran77/syncspace/internal/repository"
	"github.com/vedran77/syncspace/pkg/validator"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// DeletePolicy decides what a non-owner sees when deleting someone else's
// message. The message is never deleted either way.
type DeletePolicy string

const (
	// DeleteSilent reports success without changing anything.
	DeleteSilent DeletePolicy = "silent"
	// DeleteStrict reports ErrUnauthorized.
	DeleteStrict DeletePolicy = "strict"
)

// AccessChecker answers room and project authorization questions. Every
// call goes to the membership store.
type AccessChecker interface {
	CanJoinRoom(ctx context.Context, userID, roomID int64) (bool, error)
	CanPost(ctx context.Context, userID, roomID int64) (bool, error)
	CanCreateRoom(ctx context.Context, userID, projectID int64) (bool, error)
	Projects(ctx context.Context, userID int64) ([]int64, error)
}

type ChatConfig struct {
	HistoryLimit int
	DeletePolicy DeletePolicy
}

type ChatService struct {
	rooms    repository.RoomRepository
	messages repository.MessageRepository
	access   AccessChecker
	notifier Notifier
	cfg      ChatConfig
	logger   *slog.Logger
}

func NewChatService(
	rooms repository.RoomRepository,
	messages repository.MessageRepository,
	access AccessChecker,
	cfg ChatConfig,
	logger *slog.Logger,
) *ChatService {
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > MaxHistoryLimit {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.DeletePolicy == "" {
		cfg.DeletePolicy = DeleteSilent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		rooms:    rooms,
		messages: messages,
		access:   access,
		cfg:      cfg,
		logger:   logger.With("component", "chat"),
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

type CreateRoomInput struct {
	ProjectID int64  `json:"projectGroupId"`
	Name      string `json:"name"`
}

// Send validates, authorizes, persists and then broadcasts a message. Nothing
// is broadcast unless the message was stored.
func (s *ChatService) Send(ctx context.Context, sender domain.Identity, roomID int64, content string) (*domain.ChatMessage, error) {
	if errs := validator.ValidateMessage(content); errs.HasErrors() {
		return nil, errs
	}

	ok, err := s.access.CanPost(ctx, sender.UserID, roomID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("post to room %d: %w", roomID, domain.ErrUnauthorized)
	}

	msg := &domain.ChatMessage{
		RoomID:     roomID,
		SenderID:   sender.UserID,
		SenderName: sender.DisplayName,
		Content:    content,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("storing message: %w: %w", domain.ErrPersistence, err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
	}
	return msg, nil
}

// History returns the newest messages of a room, oldest first. A limit
// outside 1..MaxHistoryLimit falls back to the configured default.
func (s *ChatService) History(ctx context.Context, requesterID, roomID int64, limit int) ([]domain.ChatMessage, error) {
	ok, err := s.access.CanJoinRoom(ctx, requesterID, roomID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("history of room %d: %w", roomID, domain.ErrUnauthorized)
	}

	if limit <= 0 || limit > MaxHistoryLimit {
		limit = s.cfg.HistoryLimit
	}

	messages, err := s.messages.History(ctx, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w: %w", domain.ErrPersistence, err)
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	return messages, nil
}

// UserRooms lists the rooms of every project the user belongs to,
// optionally narrowed to one project.
func (s *ChatService) UserRooms(ctx context.Context, userID int64, projectID *int64) ([]domain.ChatRoom, error) {
	projects, err := s.access.Projects(ctx, userID)
	if err != nil {
		return nil, err
	}
	if projectID != nil {
		projects = lo.Filter(projects, func(id int64, _ int) bool { return id == *projectID })
	}
	if len(projects) == 0 {
		return []domain.ChatRoom{}, nil
	}

	rooms, err := s.rooms.ListByProjects(ctx, projects)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w: %w", domain.ErrPersistence, err)
	}
	if rooms == nil {
		rooms = []domain.ChatRoom{}
	}
	return rooms, nil
}

// CreateRoom creates a room in a project. Only project admins and managers
// may do this.
func (s *ChatService) CreateRoom(ctx context.Context, requesterID int64, input CreateRoomInput) (*domain.ChatRoom, error) {
	if errs := validator.ValidateRoom(input.Name); errs.HasErrors() {
		return nil, errs
	}

	ok, err := s.access.CanCreateRoom(ctx, requesterID, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("create room in project %d: %w", input.ProjectID, domain.ErrUnauthorized)
	}

	room := &domain.ChatRoom{ProjectID: input.ProjectID, Name: input.Name}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("creating room: %w: %w", domain.ErrPersistence, err)
	}

	s.logger.Info("room created", "room", room.ID, "project", room.ProjectID, "by", requesterID)
	return room, nil
}

// DeleteMessage soft-deletes a message owned by the requester and tells the
// room. Deleting an already deleted message of one's own is a no-op.
func (s *ChatService) DeleteMessage(ctx context.Context, requesterID, messageID int64) error {
	changed, err := s.messages.SoftDelete(ctx, messageID, requesterID)
	if err != nil {
		return fmt.Errorf("deleting message: %w: %w", domain.ErrPersistence, err)
	}

	if !changed {
		msg, err := s.messages.GetByID(ctx, messageID)
		if err != nil {
			return fmt.Errorf("loading message: %w: %w", domain.ErrPersistence, err)
		}
		if msg == nil {
			return domain.ErrMessageNotFound
		}
		if msg.SenderID != requesterID {
			// Non-owner deletes are refused; DeletePolicy only picks whether
			// the caller is told.
			s.logger.Warn("delete refused", "message", messageID, "requester", requesterID, "policy", s.cfg.DeletePolicy)
			if s.cfg.DeletePolicy == DeleteStrict {
				return fmt.Errorf("delete message %d: %w", messageID, domain.ErrUnauthorized)
			}
		}
		return nil
	}

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil || msg == nil {
		s.logger.Error("reload deleted message", "message", messageID, "error", err)
		return nil
	}
	if s.notifier != nil {
		s.notifier.NotifyDeletedMessage(msg.RoomID, msg.ID)
	}
	return nil
}
