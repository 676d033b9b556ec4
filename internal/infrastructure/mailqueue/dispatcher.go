// Package mailqueue delivers transactional mail asynchronously. Messages
// are sharded across a fixed set of workers by recipient, so mails to the
// same address keep their order while the HTTP path never blocks on SMTP.
package mailqueue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/LessonsQueue/QueueManager/internal/api/metrics"
	"github.com/LessonsQueue/QueueManager/internal/infrastructure/mail"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dedup is the optional duplicate-suppression store (Redis). A nil Dedup
// disables suppression.
type Dedup interface {
	IsDuplicate(ctx context.Context, kind, recipient string) (bool, error)
	Mark(ctx context.Context, kind, recipient string) error
}

// Dispatcher implements ports.Mailer on top of a sharded worker pool.
// Send failures are logged and counted, never propagated: the auth flows
// treat mail as fire-and-forget.
type Dispatcher struct {
	workers []chan mail.Message
	sender  mail.Sender
	dedup   Dedup
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender mail.Sender, dedup Dedup, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan mail.Message, numWorkers),
		sender:  sender,
		dedup:   dedup,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan mail.Message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// SendVerifyEmail enqueues the email verification link.
func (d *Dispatcher) SendVerifyEmail(_ context.Context, email, url string) {
	d.enqueue(mail.Message{
		Kind:    "verify",
		To:      email,
		Subject: "Confirm your email",
		Body:    "Welcome! Confirm your email by following this link: " + url,
	})
}

// SendResetPassword enqueues the password reset link.
func (d *Dispatcher) SendResetPassword(_ context.Context, email, url string) {
	d.enqueue(mail.Message{
		Kind:    "reset",
		To:      email,
		Subject: "Reset password",
		Body:    "Reset your password by following this link: " + url,
	})
}

// SendApproved enqueues the account approval notice.
func (d *Dispatcher) SendApproved(_ context.Context, email, url, firstName, lastName string) {
	d.enqueue(mail.Message{
		Kind:    "approved",
		To:      email,
		Subject: "You are approved",
		Body:    "Hello " + firstName + " " + lastName + ", your account is approved. Sign in: " + url,
	})
}

// enqueue routes the message to the worker owning its recipient. When the
// worker channel is full the message is dropped with a warning; delivery is
// best-effort by contract.
func (d *Dispatcher) enqueue(msg mail.Message) {
	select {
	case d.workers[d.shardIndex(msg.To)] <- msg:
	default:
		metrics.MailTotal.WithLabelValues(msg.Kind, "dropped").Inc()
		d.log.Warn().Str("kind", msg.Kind).Str("to", msg.To).Msg("mail queue full, message dropped")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan mail.Message) {
	depth := metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			depth.Set(float64(len(ch)))
			d.deliver(ctx, msg)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg mail.Message) {
	if d.dedup != nil {
		isDup, err := d.dedup.IsDuplicate(ctx, msg.Kind, msg.To)
		if err != nil {
			d.log.Warn().Err(err).Str("to", msg.To).Msg("mail dedup check failed, sending anyway")
		} else if isDup {
			metrics.MailTotal.WithLabelValues(msg.Kind, "deduped").Inc()
			d.log.Debug().Str("kind", msg.Kind).Str("to", msg.To).Msg("duplicate mail suppressed")
			return
		}
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		metrics.MailTotal.WithLabelValues(msg.Kind, "error").Inc()
		d.log.Error().Err(err).Str("kind", msg.Kind).Str("to", msg.To).Msg("mail delivery failed")
		return
	}

	if d.dedup != nil {
		if err := d.dedup.Mark(ctx, msg.Kind, msg.To); err != nil {
			d.log.Warn().Err(err).Str("to", msg.To).Msg("failed to set mail dedup key")
		}
	}

	metrics.MailTotal.WithLabelValues(msg.Kind, "sent").Inc()
	d.log.Info().Str("kind", msg.Kind).Str("to", msg.To).Msg("mail sent")
}
