package domain

import "time"

// QueueStatus represents the lifecycle state of a queue.
type QueueStatus string

const (
	StatusPending   QueueStatus = "PENDING"
	StatusSkipped   QueueStatus = "SKIPPED"
	StatusCompleted QueueStatus = "COMPLETED"
)

// Valid reports whether s is one of the known queue states.
func (s QueueStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSkipped, StatusCompleted:
		return true
	}
	return false
}

// AcceptsMembers reports whether a queue in state s may be joined.
// PENDING is the only joinable state.
func (s QueueStatus) AcceptsMembers() bool {
	return s == StatusPending
}

// Queue is a limited-capacity waiting list attached to a lab.
type Queue struct {
	ID        string      `json:"id"`
	LabID     string      `json:"lab_id"`
	CreatorID string      `json:"creator_id"`
	Status    QueueStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UserQueue is a membership row. Its existence is the sole signal that the
// user is currently queued; (QueueID, UserID) is unique in the store.
type UserQueue struct {
	QueueID   string    `json:"queue_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
