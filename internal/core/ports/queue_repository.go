package ports

import (
	"context"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
)

// QueueRepository defines persistence for queues and their membership rows.
//
// AddMember is the authoritative guard against duplicate membership: the
// store must hold a unique constraint on (queue_id, user_id) and return
// ErrAlreadyInQueue on violation, closing the race between the service's
// pre-check and concurrent joiners.
type QueueRepository interface {
	Create(ctx context.Context, queue *domain.Queue) (*domain.Queue, error)
	FindByID(ctx context.Context, id string) (*domain.Queue, error)
	FindByLabID(ctx context.Context, labID string) (*domain.Queue, error)
	// Delete removes the queue and cascades to its membership rows.
	Delete(ctx context.Context, id string) (*domain.Queue, error)
	UpdateStatus(ctx context.Context, id string, status domain.QueueStatus) (*domain.Queue, error)
	AddMember(ctx context.Context, queueID, userID string) (*domain.UserQueue, error)
	RemoveMember(ctx context.Context, queueID, userID string) (*domain.UserQueue, error)
	// FindMember returns ErrNotInQueue when the user holds no membership row.
	FindMember(ctx context.Context, queueID, userID string) (*domain.UserQueue, error)
}
