package ports

import (
	"context"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
)

// QueueService covers queue admission and lifecycle.
type QueueService interface {
	// CreateQueue is admin-only. An empty status defaults to PENDING.
	CreateQueue(ctx context.Context, labID, creatorID string, status domain.QueueStatus) (*domain.Queue, error)
	FindQueueByID(ctx context.Context, id string) (*domain.Queue, error)
	FindQueueByLabID(ctx context.Context, labID string) (*domain.Queue, error)
	DeleteQueueByID(ctx context.Context, id, requesterID string) (*domain.Queue, error)
	JoinQueue(ctx context.Context, queueID, requesterID string) (*domain.UserQueue, error)
	LeaveQueue(ctx context.Context, queueID, requesterID string) (*domain.UserQueue, error)
	RemoveUserFromQueue(ctx context.Context, queueID, requesterID, targetUserID string) (*domain.UserQueue, error)
	ResumeQueueStatus(ctx context.Context, queueID, requesterID string) (*domain.Queue, error)
}
