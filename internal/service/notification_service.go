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

type NotificationService struct {
	repo     repository.NotificationRepository
	notifier Notifier
	logger   *slog.Logger
}

func NewNotificationService(repo repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		repo:   repo,
		logger: logger.With("component", "notifications"),
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *NotificationService) SetNotifier(n Notifier) {
	s.notifier = n
}

type DeliverInput struct {
	Message     string                  `json:"message"`
	Type        domain.NotificationType `json:"type"`
	ReferenceID *string                 `json:"referenceId,omitempty"`
}

// Deliver persists a notification for a user and pushes it to the user's
// live connections. The push is best effort: an offline user still gets the
// stored notification. When storing fails nothing is pushed.
func (s *NotificationService) Deliver(ctx context.Context, userID int64, input DeliverInput) (*domain.Notification, error) {
	n, err := s.build(userID, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("store notification", "user", userID, "error", err)
		return nil, fmt.Errorf("storing notification: %w: %w", domain.ErrPersistence, err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNotification(n)
	}
	return n, nil
}

// DeliverMany stores the same notification for several users in one
// transaction, then pushes each copy.
func (s *NotificationService) DeliverMany(ctx context.Context, userIDs []int64, input DeliverInput) ([]*domain.Notification, error) {
	userIDs = lo.Uniq(userIDs)

	ns := make([]*domain.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		n, err := s.build(id, input)
		if err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	if len(ns) == 0 {
		return ns, nil
	}

	if err := s.repo.CreateMany(ctx, ns); err != nil {
		s.logger.Error("store notifications", "users", len(ns), "error", err)
		return nil, fmt.Errorf("storing notifications: %w: %w", domain.ErrPersistence, err)
	}

	if s.notifier != nil {
		for _, n := range ns {
			s.notifier.NotifyNotification(n)
		}
	}
	return ns, nil
}

func (s *NotificationService) build(userID int64, input DeliverInput) (*domain.Notification, error) {
	if input.Type == "" {
		input.Type = domain.NotificationSystem
	}
	errs := validator.ValidateNotification(input.Message, input.Type)
	if userID <= 0 {
		errs.Add("userId", "User id must be positive")
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return &domain.Notification{
		UserID:      userID,
		Message:     input.Message,
		Type:        input.Type,
		ReferenceID: input.ReferenceID,
	}, nil
}

func (s *NotificationService) List(ctx context.Context, userID int64, page, pageSize int) ([]domain.Notification, error) {
	ns, err := s.repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w: %w", domain.ErrPersistence, err)
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	return ns, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("counting notifications: %w: %w", domain.ErrPersistence, err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read. Other users'
// notifications are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	ok, err := s.repo.MarkRead(ctx, id, userID)
	return s.affected(ok, err, "marking notification read")
}

func (s *NotificationService) MarkUnread(ctx context.Context, userID, id int64) error {
	ok, err := s.repo.MarkUnread(ctx, id, userID)
	return s.affected(ok, err, "marking notification unread")
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w: %w", domain.ErrPersistence, err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.repo.Delete(ctx, id, userID)
	return s.affected(ok, err, "deleting notification")
}

func (s *NotificationService) affected(ok bool, err error, action string) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %w", action, domain.ErrPersistence, err)
	}
	if !ok {
		return domain.ErrNotificationNotFound
	}
	return nil
}
