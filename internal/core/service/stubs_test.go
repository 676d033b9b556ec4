package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
	"github.com/LessonsQueue/QueueManager/internal/core/token"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories and mailer
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User // by id
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("user_%d", r.seq)
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByRefreshToken(_ context.Context, refreshToken string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if refreshToken != "" {
		for _, u := range r.users {
			if u.RefreshToken == refreshToken {
				return cloneUser(u), nil
			}
		}
	}
	return nil, domain.ErrUserNotFound
}

// FindByVerificationNonce mirrors the anchored prefix match the Mongo
// repository performs on the stored token.
func (r *stubUserRepo) FindByVerificationNonce(_ context.Context, nonce string, purpose token.Purpose) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if nonce != "" {
		prefix := nonce + "::" + string(purpose) + "::"
		for _, u := range r.users {
			if strings.HasPrefix(u.VerifiedToken, prefix) {
				return cloneUser(u), nil
			}
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.RefreshToken != nil {
		u.RefreshToken = *upd.RefreshToken
	}
	if upd.VerifiedToken != nil {
		u.VerifiedToken = *upd.VerifiedToken
	}
	if upd.Approved != nil {
		u.Approved = *upd.Approved
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) ListNotApproved(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []*domain.User
	for _, u := range r.users {
		if !u.Approved {
			users = append(users, cloneUser(u))
		}
	}
	return users, nil
}

type sentMail struct {
	kind  string
	email string
	url   string
}

type stubMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *stubMailer) SendVerifyEmail(_ context.Context, email, url string) {
	m.record("verify", email, url)
}

func (m *stubMailer) SendResetPassword(_ context.Context, email, url string) {
	m.record("reset", email, url)
}

func (m *stubMailer) SendApproved(_ context.Context, email, url, _, _ string) {
	m.record("approved", email, url)
}

func (m *stubMailer) record(kind, email, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: kind, email: email, url: url})
}

func (m *stubMailer) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

type stubQueueRepo struct {
	mu      sync.Mutex
	seq     int
	queues  map[string]*domain.Queue
	members map[string]map[string]*domain.UserQueue // queueID -> userID -> row
}

func newStubQueueRepo() *stubQueueRepo {
	return &stubQueueRepo{
		queues:  make(map[string]*domain.Queue),
		members: make(map[string]map[string]*domain.UserQueue),
	}
}

func cloneQueue(q *domain.Queue) *domain.Queue {
	if q == nil {
		return nil
	}
	clone := *q
	return &clone
}

func (r *stubQueueRepo) Create(_ context.Context, queue *domain.Queue) (*domain.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := cloneQueue(queue)
	clone.ID = fmt.Sprintf("queue_%d", r.seq)
	r.queues[clone.ID] = clone
	r.members[clone.ID] = make(map[string]*domain.UserQueue)
	return cloneQueue(clone), nil
}

func (r *stubQueueRepo) FindByID(_ context.Context, id string) (*domain.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.queues[id]; ok {
		return cloneQueue(q), nil
	}
	return nil, domain.ErrQueueNotFound
}

func (r *stubQueueRepo) FindByLabID(_ context.Context, labID string) (*domain.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.queues {
		if q.LabID == labID {
			return cloneQueue(q), nil
		}
	}
	return nil, domain.ErrQueueNotFound
}

func (r *stubQueueRepo) Delete(_ context.Context, id string) (*domain.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[id]
	if !ok {
		return nil, domain.ErrQueueNotFound
	}
	delete(r.queues, id)
	delete(r.members, id)
	return cloneQueue(q), nil
}

func (r *stubQueueRepo) UpdateStatus(_ context.Context, id string, status domain.QueueStatus) (*domain.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[id]
	if !ok {
		return nil, domain.ErrQueueNotFound
	}
	q.Status = status
	return cloneQueue(q), nil
}

// AddMember enforces the (queue, user) uniqueness the way the real store's
// unique index does: atomically, under the repo lock.
func (r *stubQueueRepo) AddMember(_ context.Context, queueID, userID string) (*domain.UserQueue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows, ok := r.members[queueID]
	if !ok {
		return nil, domain.ErrQueueNotFound
	}
	if _, exists := rows[userID]; exists {
		return nil, domain.ErrAlreadyInQueue
	}
	row := &domain.UserQueue{QueueID: queueID, UserID: userID}
	rows[userID] = row
	clone := *row
	return &clone, nil
}

func (r *stubQueueRepo) RemoveMember(_ context.Context, queueID, userID string) (*domain.UserQueue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows, ok := r.members[queueID]
	if !ok {
		return nil, domain.ErrNotInQueue
	}
	row, exists := rows[userID]
	if !exists {
		return nil, domain.ErrNotInQueue
	}
	delete(rows, userID)
	clone := *row
	return &clone, nil
}

func (r *stubQueueRepo) FindMember(_ context.Context, queueID, userID string) (*domain.UserQueue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows, ok := r.members[queueID]
	if !ok {
		return nil, domain.ErrNotInQueue
	}
	row, exists := rows[userID]
	if !exists {
		return nil, domain.ErrNotInQueue
	}
	clone := *row
	return &clone, nil
}
