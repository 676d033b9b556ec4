package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
	"github.com/LessonsQueue/QueueManager/internal/core/ports"
)

// QueueService implements the queue admission state machine. Privileged
// operations consult the permission oracle (UserService.IsAdmin).
type QueueService struct {
	queues ports.QueueRepository
	perms  ports.UserService
	log    zerolog.Logger

	now func() time.Time
}

func NewQueueService(queues ports.QueueRepository, perms ports.UserService, log zerolog.Logger) *QueueService {
	return &QueueService{queues: queues, perms: perms, log: log, now: time.Now}
}

// CreateQueue creates a queue for a lab. Admin-only; status defaults to
// PENDING when unspecified.
func (s *QueueService) CreateQueue(ctx context.Context, labID, creatorID string, status domain.QueueStatus) (*domain.Queue, error) {
	if err := s.requireAdmin(ctx, creatorID); err != nil {
		return nil, err
	}

	if status == "" {
		status = domain.StatusPending
	}

	now := s.now().UTC()
	queue := &domain.Queue{
		LabID:     labID,
		CreatorID: creatorID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.queues.Create(ctx, queue)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("queue_id", created.ID).Str("lab_id", labID).Msg("queue created")
	return created, nil
}

// FindQueueByID retrieves a queue or fails with ErrQueueNotFound.
func (s *QueueService) FindQueueByID(ctx context.Context, id string) (*domain.Queue, error) {
	return s.queues.FindByID(ctx, id)
}

// FindQueueByLabID retrieves the queue attached to a lab. A miss is a plain
// not-found; lookup never creates.
func (s *QueueService) FindQueueByLabID(ctx context.Context, labID string) (*domain.Queue, error) {
	return s.queues.FindByLabID(ctx, labID)
}

// DeleteQueueByID removes a queue and its membership rows. Allowed for
// admins and for the queue's creator.
func (s *QueueService) DeleteQueueByID(ctx context.Context, id, requesterID string) (*domain.Queue, error) {
	isAdmin, err := s.perms.IsAdmin(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	queue, err := s.queues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && queue.CreatorID != requesterID {
		return nil, domain.ErrForbidden
	}

	deleted, err := s.queues.Delete(ctx, queue.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("queue_id", id).Str("deleted_by", requesterID).Msg("queue deleted")
	return deleted, nil
}

// JoinQueue adds the requester to a PENDING queue. The membership pre-check
// is advisory only; the store's unique constraint on (queue, user) is what
// rejects concurrent duplicate joins, and both paths surface ErrAlreadyInQueue.
func (s *QueueService) JoinQueue(ctx context.Context, queueID, requesterID string) (*domain.UserQueue, error) {
	queue, err := s.queues.FindByID(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if !queue.Status.AcceptsMembers() {
		return nil, domain.ErrQueueClosed
	}

	if _, err := s.queues.FindMember(ctx, queue.ID, requesterID); err == nil {
		return nil, domain.ErrAlreadyInQueue
	} else if !errors.Is(err, domain.ErrNotInQueue) {
		return nil, err
	}

	member, err := s.queues.AddMember(ctx, queue.ID, requesterID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("queue_id", queueID).Str("user_id", requesterID).Msg("user joined queue")
	return member, nil
}

// LeaveQueue removes the requester's own membership. There is no status
// gate: a member may always leave.
func (s *QueueService) LeaveQueue(ctx context.Context, queueID, requesterID string) (*domain.UserQueue, error) {
	queue, err := s.queues.FindByID(ctx, queueID)
	if err != nil {
		return nil, err
	}

	if _, err := s.queues.FindMember(ctx, queue.ID, requesterID); err != nil {
		return nil, err
	}

	member, err := s.queues.RemoveMember(ctx, queue.ID, requesterID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("queue_id", queueID).Str("user_id", requesterID).Msg("user left queue")
	return member, nil
}

// RemoveUserFromQueue forcibly removes a member. Admin-only.
func (s *QueueService) RemoveUserFromQueue(ctx context.Context, queueID, requesterID, targetUserID string) (*domain.UserQueue, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}

	queue, err := s.queues.FindByID(ctx, queueID)
	if err != nil {
		return nil, err
	}

	if _, err := s.queues.FindMember(ctx, queue.ID, targetUserID); err != nil {
		return nil, err
	}

	member, err := s.queues.RemoveMember(ctx, queue.ID, targetUserID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("queue_id", queueID).Str("user_id", targetUserID).Str("removed_by", requesterID).Msg("user removed from queue")
	return member, nil
}

// ResumeQueueStatus force-resets the queue to PENDING. Admin-only; fails
// with a conflict when the queue is already PENDING.
func (s *QueueService) ResumeQueueStatus(ctx context.Context, queueID, requesterID string) (*domain.Queue, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}

	queue, err := s.queues.FindByID(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if queue.Status == domain.StatusPending {
		return nil, domain.ErrQueueAlreadyPending
	}

	updated, err := s.queues.UpdateStatus(ctx, queue.ID, domain.StatusPending)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("queue_id", queueID).Str("resumed_by", requesterID).Msg("queue status resumed")
	return updated, nil
}

func (s *QueueService) requireAdmin(ctx context.Context, userID string) error {
	isAdmin, err := s.perms.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return domain.ErrForbidden
	}
	return nil
}
